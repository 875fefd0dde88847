package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricavi/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "ricavi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteSaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 3)

	m := core.RawMonth{}
	m.Set(1, "", "50 200")
	m.Set(2, "101", `note "a" 30`)
	m.Set(2, "102", "1.000")
	m.Set(40, "", "99") // not a day of March
	require.NoError(t, repo.Save(ctx, p, m))

	got, err := repo.Load(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count())
	assert.Equal(t, "50 200", got.Get(1, ""))
	assert.Equal(t, `note "a" 30`, got.Get(2, "101"))
	assert.Equal(t, "1.000", got.Get(2, "102"))
}

func TestSQLiteSaveReplacesMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := core.NewPeriod(2025, 3)

	first := core.RawMonth{}
	first.Set(1, "", "50")
	first.Set(2, "", "60")
	require.NoError(t, repo.Save(ctx, p, first))

	second := core.RawMonth{}
	second.Set(2, "", "70")
	require.NoError(t, repo.Save(ctx, p, second))

	got, err := repo.Load(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())
	assert.Equal(t, "70", got.Get(2, ""))
}

func TestSQLitePeriodsAreIndependent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := core.RawMonth{}
	a.Set(5, "", "10")
	require.NoError(t, repo.Save(ctx, core.NewPeriod(2025, 2), a))
	require.NoError(t, repo.Save(ctx, core.NewPeriod(2024, 11), a))

	empty, err := repo.Load(ctx, core.NewPeriod(2025, 1))
	require.NoError(t, err)
	assert.Empty(t, empty)

	periods, err := repo.Periods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Period{core.NewPeriod(2024, 11), core.NewPeriod(2025, 2)}, periods)
}

func TestSQLiteRejectsInvalidPeriod(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Load(context.Background(), core.NewPeriod(2025, 13))
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ricavi.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(path))
}
