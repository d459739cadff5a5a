// Package scans persists the offline scan queue in the local sqlite
// database.
package scans

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lifeisskill/lisk-go/internal/dbx"
	"github.com/lifeisskill/lisk-go/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert appends a scan to the queue.
func (r *SQLiteRepository) Insert(ctx context.Context, p *models.ScannedPoint) error {
	var lat, lon, acc, alt sql.NullFloat64
	if p.Location != nil {
		lat = sql.NullFloat64{Float64: p.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: p.Location.Longitude, Valid: true}
		acc = sql.NullFloat64{Float64: p.Location.Accuracy, Valid: true}
		alt = sql.NullFloat64{Float64: p.Location.Altitude, Valid: true}
	}
	query := `INSERT INTO scanned_points (id, code, source, lat, lon, acc, alt, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Code, string(p.Source), lat, lon, acc, alt, p.CapturedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert scanned point: %w", err)
	}
	return nil
}

// GetAllOrdered lists queued scans FIFO by capture time.
func (r *SQLiteRepository) GetAllOrdered(ctx context.Context) ([]models.ScannedPoint, error) {
	query := `SELECT id, code, source, lat, lon, acc, alt, captured_at
		FROM scanned_points ORDER BY captured_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select scanned points: %w", err)
	}
	defer rows.Close()

	var result []models.ScannedPoint
	for rows.Next() {
		var p models.ScannedPoint
		var source string
		var lat, lon, acc, alt sql.NullFloat64
		var capturedAt int64
		if err := rows.Scan(&p.ID, &p.Code, &source, &lat, &lon, &acc, &alt, &capturedAt); err != nil {
			return nil, err
		}
		p.Source = models.CodeSource(source)
		p.CapturedAt = time.UnixMilli(capturedAt).UTC()
		if lat.Valid {
			p.Location = &models.Location{
				Latitude:  lat.Float64,
				Longitude: lon.Float64,
				Accuracy:  acc.Float64,
				Altitude:  alt.Float64,
			}
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes a single confirmed scan. Deleting an absent row is not
// an error: a crash between send and delete may replay the delete.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scanned_points WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete scanned point: %w", err)
	}
	return nil
}

// DeleteAll wipes the queue (logout).
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scanned_points`); err != nil {
		return fmt.Errorf("failed to delete scanned points: %w", err)
	}
	return nil
}
