package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/storage"
)

const dateLayout = "2006-01-02"

const createQuestsTable = `
CREATE TABLE IF NOT EXISTS quests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	number INTEGER,
	name TEXT,
	difficulty TEXT,
	length TEXT,
	quest_points INTEGER,
	series TEXT,
	release_date DATE,
	members BOOLEAN,
	requirements TEXT DEFAULT '',
	rewards TEXT DEFAULT '',
	guide TEXT DEFAULT '',
	link TEXT,
	UNIQUE(number, name)
)`

const insertQuest = `
INSERT INTO quests (number, name, difficulty, length, quest_points, series, release_date, members, link)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository открывает (или создаёт) файл БД. Соединение одно: писатель у SQLite один, а ":memory:" живёт в рамках соединения
func NewRepository(path string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, createQuestsTable); err != nil {
		return fmt.Errorf("create quests table: %w", err)
	}
	return nil
}

// InsertQuest выполняется вне транзакции: каждая вставка фиксируется автокоммитом сразу
func (r *Repository) InsertQuest(ctx context.Context, q *storage.Quest) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, insertQuest,
		q.Number,
		q.Name,
		q.Difficulty,
		q.Length,
		q.QuestPoints,
		q.Series,
		q.ReleaseDate.UTC().Format(dateLayout),
		q.Members,
		q.Link,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("quest %d %q: %w", q.Number, q.Name, storage.ErrDuplicateRecord)
		}
		return 0, fmt.Errorf("failed to insert quest %d %q: %w", q.Number, q.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	q.ID = id

	return id, nil
}

func (r *Repository) CountQuests(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
