package scans

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeisskill/lisk-go/internal/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE scanned_points (
  id          TEXT PRIMARY KEY,
  code        TEXT NOT NULL,
  source      TEXT NOT NULL,
  lat         REAL,
  lon         REAL,
  acc         REAL,
  alt         REAL,
  captured_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func sampleScan(id string, capturedAt time.Time) *models.ScannedPoint {
	return &models.ScannedPoint{
		ID:         id,
		Code:       "LS1234",
		Source:     models.SourceQR,
		Location:   &models.Location{Latitude: 49.19, Longitude: 16.6, Accuracy: 8},
		CapturedAt: capturedAt,
	}
}

func TestInsertAndGetAllOrdered_FIFO(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	// Inserted out of order on purpose.
	require.NoError(t, r.Insert(ctx, sampleScan("b", base.Add(20*time.Second))))
	require.NoError(t, r.Insert(ctx, sampleScan("a", base)))
	require.NoError(t, r.Insert(ctx, sampleScan("c", base.Add(40*time.Second))))

	got, err := r.GetAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestRoundTrip_PreservesLocation(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := sampleScan("a", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, r.Insert(ctx, want))

	got, err := r.GetAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *want, got[0])
}

func TestRoundTrip_NilLocationStaysNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := sampleScan("a", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	p.Location = nil
	require.NoError(t, r.Insert(ctx, p))

	got, err := r.GetAllOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Location)
}

func TestDeleteByID_RemovesAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleScan("a", time.Now())))
	require.NoError(t, r.DeleteByID(ctx, "a"))
	require.NoError(t, r.DeleteByID(ctx, "a"))

	got, err := r.GetAllOrdered(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleScan("a", time.Now())))
	require.NoError(t, r.Insert(ctx, sampleScan("b", time.Now())))
	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.GetAllOrdered(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
