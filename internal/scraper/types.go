package scraper

import (
	"errors"
	"fmt"
)

// ErrExtraction: в строке нет ожидаемой ячейки или атрибута
var ErrExtraction = errors.New("extraction failed")

// RawQuest содержит сырые тексты одной строки таблицы до нормализации
type RawQuest struct {
	Position    int // индекс строки в tbody, порядок документа
	Number      string
	Name        string
	Link        string
	Difficulty  string
	Length      string
	QuestPoints string
	Series      string
	ReleaseDate string
}

// RowError описывает ошибку разбора конкретной строки
type RowError struct {
	Position int
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Position, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Table хранит результат разбора таблицы
type Table struct {
	Headers        []string
	HeaderChecksum string
	Rows           []RawQuest
	Errors         []*RowError
	SkippedHeaders int // строки без td (заголовки внутри tbody)
}
