package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"osrs-quests-scraper/internal/scraper"
	"osrs-quests-scraper/internal/storage"
)

var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrInvalidDate   = errors.New("invalid date")
)

var (
	footnoteRe = regexp.MustCompile(`\[[^\]]*\]`)
	ordinalRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Quest превращает сырую строку таблицы в запись для БД.
// Ошибки оборачиваются в scraper.ErrExtraction: для пайплайна это одна категория
func (n *Normalizer) Quest(raw scraper.RawQuest) (*storage.Quest, error) {
	number, err := ParseInt(raw.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: number: %w", scraper.ErrExtraction, err)
	}

	points, err := ParseInt(raw.QuestPoints)
	if err != nil {
		return nil, fmt.Errorf("%w: quest points: %w", scraper.ErrExtraction, err)
	}

	releaseDate, err := ParseReleaseDate(raw.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: release date: %w", scraper.ErrExtraction, err)
	}

	// members, requirements, rewards, guide на странице списка отсутствуют, пишутся значения по умолчанию
	return &storage.Quest{
		Number:      number,
		Name:        strings.TrimSpace(raw.Name),
		Difficulty:  raw.Difficulty,
		Length:      raw.Length,
		QuestPoints: points,
		Series:      Series(raw.Series),
		ReleaseDate: releaseDate,
		Members:     false,
		Link:        raw.Link,
	}, nil
}

// ParseInt понимает "1", " 12 ", "1,000"
func ParseInt(s string) (int, error) {
	cleaned := strings.NewReplacer(",", "", "\u00A0", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}

	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

// ParseReleaseDate разбирает дату в свободной форме ("5 February 2001", "2001-02-05", "Feb 5, 2001")
// и возвращает календарную дату (UTC, время 00:00:00)
func ParseReleaseDate(s string) (time.Time, error) {
	cleaned := footnoteRe.ReplaceAllString(s, "")
	cleaned = ordinalRe.ReplaceAllString(cleaned, "$1")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("%w: empty date string", ErrInvalidDate)
	}

	t, err := dateparse.ParseIn(cleaned, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Series возвращает "N/A" для пустой ячейки и для явного "N/A"
func Series(s string) string {
	s = strings.TrimSpace(s) // TrimSpace убирает и NBSP
	if s == "" || strings.EqualFold(s, storage.SeriesNone) {
		return storage.SeriesNone
	}
	return s
}
