package rankings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE rank_entries (
  category_id TEXT NOT NULL,
  user_id     TEXT NOT NULL,
  nick        TEXT NOT NULL,
  points      INTEGER NOT NULL,
  ord         INTEGER NOT NULL,
  PRIMARY KEY (category_id, user_id)
);`)
	require.NoError(t, err)
	return db
}

func sampleRankings() []models.Ranking {
	return []models.Ranking{
		{
			CategoryID: "sport",
			Entries: []models.RankEntry{
				{UserID: "u1", Nick: "alice", Points: 300, Order: 1},
				{UserID: "u2", Nick: "bob", Points: 250, Order: 2},
			},
		},
		{
			CategoryID: "tourism",
			Entries: []models.RankEntry{
				{UserID: "u2", Nick: "bob", Points: 120, Order: 1},
			},
		},
	}
}

func TestReplaceAllAndGetAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := sampleRankings()
	require.NoError(t, r.ReplaceAll(ctx, want))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetByCategory_OrderedEntries(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, sampleRankings()))

	got, err := r.GetByCategory(ctx, "sport")
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "alice", got.Entries[0].Nick)
	assert.Equal(t, "bob", got.Entries[1].Nick)

	_, err = r.GetByCategory(ctx, "absent")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReplaceAll_Overwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, sampleRankings()))
	require.NoError(t, r.ReplaceAll(ctx, []models.Ranking{{
		CategoryID: "sport",
		Entries:    []models.RankEntry{{UserID: "u9", Nick: "eve", Points: 1, Order: 1}},
	}}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "eve", got[0].Entries[0].Nick)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, sampleRankings()))
	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
