package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateRecord: нарушение уникальности (number, name)
var ErrDuplicateRecord = errors.New("duplicate record")

// SeriesNone пишется в series, если квест не входит в серию
const SeriesNone = "N/A"

// Quest описывает нормализованную строку таблицы квестов для сохранения в БД
type Quest struct {
	ID           int64
	Number       int
	Name         string
	Difficulty   string
	Length       string
	QuestPoints  int
	Series       string
	ReleaseDate  time.Time // только дата, UTC
	Members      bool
	Requirements string
	Rewards      string
	Guide        string
	Link         string
}

// Repository интерфейс для работы с хранилищем квестов
type Repository interface {
	// EnsureSchema создаёт таблицу quests, если её нет
	EnsureSchema(ctx context.Context) error

	// InsertQuest вставляет одну запись и сразу фиксирует её.
	// При нарушении UNIQUE(number, name) возвращает ошибку, для которой errors.Is(err, ErrDuplicateRecord)
	InsertQuest(ctx context.Context, q *Quest) (int64, error)

	// CountQuests возвращает количество сохранённых квестов
	CountQuests(ctx context.Context) (int, error)

	Close() error
}
