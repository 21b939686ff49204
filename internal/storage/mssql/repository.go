package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/storage"
)

// Номера ошибок SQL Server: нарушение UNIQUE constraint и уникального индекса
const (
	errUniqueConstraint = 2627
	errUniqueIndex      = 2601
)

const createQuestsTable = `
IF OBJECT_ID(N'dbo.quests', N'U') IS NULL
BEGIN
	CREATE TABLE dbo.quests (
		[id] INT IDENTITY(1,1) PRIMARY KEY,
		[number] INT,
		[name] NVARCHAR(255),
		[difficulty] NVARCHAR(64),
		[length] NVARCHAR(64),
		[quest_points] INT,
		[series] NVARCHAR(255),
		[release_date] DATE,
		[members] BIT,
		[requirements] NVARCHAR(MAX) DEFAULT N'',
		[rewards] NVARCHAR(MAX) DEFAULT N'',
		[guide] NVARCHAR(MAX) DEFAULT N'',
		[link] NVARCHAR(1024),
		CONSTRAINT UQ_quests_number_name UNIQUE ([number], [name])
	)
END`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
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

// InsertQuest вставляет квест; без явной транзакции каждая команда фиксируется сразу
func (r *Repository) InsertQuest(ctx context.Context, q *storage.Quest) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `
		INSERT INTO dbo.quests ([number], [name], [difficulty], [length], [quest_points], [series], [release_date], [members], [link])
		OUTPUT INSERTED.[id]
		VALUES (@Number, @Name, @Difficulty, @Length, @QuestPoints, @Series, @ReleaseDate, @Members, @Link);
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var id int64
	err = stmt.QueryRowContext(ctx,
		sql.Named("Number", q.Number),
		sql.Named("Name", q.Name),
		sql.Named("Difficulty", q.Difficulty),
		sql.Named("Length", q.Length),
		sql.Named("QuestPoints", q.QuestPoints),
		sql.Named("Series", q.Series),
		sql.Named("ReleaseDate", q.ReleaseDate.UTC()),
		sql.Named("Members", q.Members),
		sql.Named("Link", q.Link),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("quest %d %q: %w", q.Number, q.Name, storage.ErrDuplicateRecord)
		}
		return 0, fmt.Errorf("failed to execute insert: %w", err)
	}

	q.ID = id
	return id, nil
}

func (r *Repository) CountQuests(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dbo.quests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var mErr mssql.Error
	if errors.As(err, &mErr) {
		return mErr.Number == errUniqueConstraint || mErr.Number == errUniqueIndex
	}
	var mErrPtr *mssql.Error
	if errors.As(err, &mErrPtr) {
		return mErrPtr.Number == errUniqueConstraint || mErrPtr.Number == errUniqueIndex
	}
	return false
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
