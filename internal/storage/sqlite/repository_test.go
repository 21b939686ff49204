package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrs-quests-scraper/internal/observability"
	"osrs-quests-scraper/internal/storage"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quests.db")

	repo, err := NewRepository(path, 5*time.Second, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo, path
}

func cooksAssistant() *storage.Quest {
	return &storage.Quest{
		Number:      1,
		Name:        "Cook's Assistant",
		Difficulty:  "Novice",
		Length:      "Very Short",
		QuestPoints: 1,
		Series:      storage.SeriesNone,
		ReleaseDate: time.Date(2001, 1, 4, 0, 0, 0, 0, time.UTC),
		Link:        "https://oldschool.runescape.wiki/w/Cook%27s_Assistant",
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	repo, _ := newTestRepository(t)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	var columns int
	err := repo.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('quests')`).Scan(&columns)
	require.NoError(t, err)
	assert.Equal(t, 13, columns)
}

func TestInsertQuest(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	q := cooksAssistant()
	id, err := repo.InsertQuest(ctx, q)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, q.ID)

	var (
		number       int
		name         string
		points       int
		series       string
		releaseDate  string
		members      bool
		requirements string
		rewards      string
		guide        string
	)
	err = repo.db.QueryRow(`SELECT number, name, quest_points, series, date(release_date), members, requirements, rewards, guide
		FROM quests WHERE id = ?`, id).
		Scan(&number, &name, &points, &series, &releaseDate, &members, &requirements, &rewards, &guide)
	require.NoError(t, err)

	assert.Equal(t, 1, number)
	assert.Equal(t, "Cook's Assistant", name)
	assert.Equal(t, 1, points)
	assert.Equal(t, "N/A", series)
	assert.Equal(t, "2001-01-04", releaseDate)
	assert.False(t, members)
	assert.Empty(t, requirements)
	assert.Empty(t, rewards)
	assert.Empty(t, guide)
}

func TestInsertQuestDuplicate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.InsertQuest(ctx, cooksAssistant())
	require.NoError(t, err)

	_, err = repo.InsertQuest(ctx, cooksAssistant())
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrDuplicateRecord), "got %v", err)

	// тот же номер с другим названием: не дубликат
	other := cooksAssistant()
	other.Name = "Demon Slayer"
	_, err = repo.InsertQuest(ctx, other)
	require.NoError(t, err)

	count, err := repo.CountQuests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDataSurvivesReopen(t *testing.T) {
	repo, path := newTestRepository(t)
	_, err := repo.InsertQuest(context.Background(), cooksAssistant())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM quests`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestInsertWithoutSchemaIsNotDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	repo, err := NewRepository(path, time.Second, observability.Discard())
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.InsertQuest(context.Background(), cooksAssistant())
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrDuplicateRecord))
}
