package categories

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
CREATE TABLE user_categories (
  id        TEXT PRIMARY KEY,
  name      TEXT NOT NULL,
  detail    TEXT NOT NULL DEFAULT '',
  is_public INTEGER NOT NULL DEFAULT 0,
  is_main   INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func sampleData() *models.UserCategoryData {
	return &models.UserCategoryData{
		MainCategoryID: "sport",
		Data: []models.UserCategory{
			{ID: "sport", Name: "Sport", IsPublic: true},
			{ID: "tourism", Name: "Tourism", Detail: "Regional trips"},
		},
	}
}

func TestReplaceAndGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := sampleData()
	require.NoError(t, r.Replace(ctx, want))

	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGet_EmptyTable(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.Empty(t, got.MainCategoryID)
}

func TestGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Replace(ctx, sampleData()))

	got, err := r.GetByID(ctx, "tourism")
	require.NoError(t, err)
	assert.Equal(t, "Tourism", got.Name)

	_, err = r.GetByID(ctx, "absent")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Replace(ctx, sampleData()))
	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}
