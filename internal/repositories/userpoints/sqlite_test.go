package userpoints

import (
	"context"
	"database/sql"
	"testing"
	"time"

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
CREATE TABLE user_points (
  record_key   TEXT PRIMARY KEY,
  point_id     TEXT NOT NULL,
  ts           INTEGER NOT NULL,
  name         TEXT NOT NULL,
  value        INTEGER NOT NULL,
  point_type   INTEGER NOT NULL,
  lat          REAL NOT NULL DEFAULT 0,
  lon          REAL NOT NULL DEFAULT 0,
  acc          REAL NOT NULL DEFAULT 0,
  alt          REAL NOT NULL DEFAULT 0,
  source       TEXT NOT NULL,
  category_ids TEXT NOT NULL DEFAULT '',
  duration     INTEGER NOT NULL DEFAULT 0,
  counts       INTEGER NOT NULL DEFAULT 1
);`)
	require.NoError(t, err)
	return db
}

func samplePoint(key string, ts time.Time) models.UserPoint {
	return models.UserPoint{
		ID:             "p1",
		RecordKey:      key,
		Timestamp:      ts,
		Name:           "Town square",
		Value:          50,
		PointType:      3,
		Location:       models.Location{Latitude: 49.19, Longitude: 16.6, Accuracy: 5},
		Source:         models.SourceQR,
		CategoryIDs:    []string{"sport", "tourism"},
		Duration:       90 * time.Second,
		DoesPointCount: true,
	}
}

func TestReplaceAllAndGetAll_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	want := []models.UserPoint{samplePoint("k1", ts), samplePoint("k2", ts.Add(time.Hour))}
	want[1].DoesPointCount = false

	require.NoError(t, r.ReplaceAll(ctx, want))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0], got[0])
	assert.Equal(t, want[1], got[1])
}

func TestGetAll_OrderedByTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	pts := []models.UserPoint{
		samplePoint("late", base.Add(2*time.Hour)),
		samplePoint("early", base),
	}
	require.NoError(t, r.ReplaceAll(ctx, pts))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].RecordKey)
	assert.Equal(t, "late", got[1].RecordKey)
}

func TestReplaceAll_OverwritesPreviousContents(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.ReplaceAll(ctx, []models.UserPoint{samplePoint("old", ts)}))
	require.NoError(t, r.ReplaceAll(ctx, []models.UserPoint{samplePoint("new", ts)}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].RecordKey)
}

func TestGetByKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	want := samplePoint("k1", ts)
	require.NoError(t, r.ReplaceAll(ctx, []models.UserPoint{want}))

	got, err := r.GetByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = r.GetByKey(ctx, "absent")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.ReplaceAll(ctx, []models.UserPoint{samplePoint("k1", ts)}))
	require.NoError(t, r.DeleteAll(ctx))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmptyCategoryIDs_RoundTripAsNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := samplePoint("k1", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	p.CategoryIDs = nil
	require.NoError(t, r.ReplaceAll(ctx, []models.UserPoint{p}))

	got, err := r.GetByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got.CategoryIDs)
}
