package app

import "errors"

// Фатальные ошибки прогона. Ошибки строк и дубли живут в scraper.ErrExtraction и storage.ErrDuplicateRecord
var (
	ErrDriverStartup     = errors.New("driver startup failure")
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrDisallowed        = errors.New("disallowed by robots.txt")
	ErrStorage           = errors.New("storage failure")
)

const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)
