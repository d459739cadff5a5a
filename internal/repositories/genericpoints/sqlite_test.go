package genericpoints

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
CREATE TABLE generic_points (
  id           TEXT PRIMARY KEY,
  name         TEXT NOT NULL,
  value        INTEGER NOT NULL,
  point_type   INTEGER NOT NULL,
  lat          REAL NOT NULL DEFAULT 0,
  lon          REAL NOT NULL DEFAULT 0,
  acc          REAL NOT NULL DEFAULT 0,
  alt          REAL NOT NULL DEFAULT 0,
  category_ids TEXT NOT NULL DEFAULT '',
  active       INTEGER NOT NULL DEFAULT 1
);`)
	require.NoError(t, err)
	return db
}

func sample(id string) models.GenericPoint {
	return models.GenericPoint{
		ID:          id,
		Name:        "Lookout tower",
		Value:       20,
		PointType:   1,
		Location:    models.Location{Latitude: 49.2, Longitude: 16.61},
		CategoryIDs: []string{"tourism"},
		Active:      true,
	}
}

func TestReplaceAllAndGetAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := []models.GenericPoint{sample("a"), sample("b")}
	require.NoError(t, r.ReplaceAll(ctx, want))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReplaceAll_Overwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, []models.GenericPoint{sample("old")}))
	require.NoError(t, r.ReplaceAll(ctx, []models.GenericPoint{sample("new")}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := sample("a")
	require.NoError(t, r.ReplaceAll(ctx, []models.GenericPoint{want}))

	got, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = r.GetByID(ctx, "absent")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, []models.GenericPoint{sample("a")}))
	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
