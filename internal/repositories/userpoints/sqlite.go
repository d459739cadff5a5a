// Package userpoints persists the user-points category in the local sqlite
// database.
package userpoints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lifeisskill/lisk-go/internal/common"
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

const selectColumns = `record_key, point_id, ts, name, value, point_type,
	lat, lon, acc, alt, source, category_ids, duration, counts`

func scanPoint(scan func(...any) error) (*models.UserPoint, error) {
	var p models.UserPoint
	var ts, duration int64
	var source, categoryIDs string
	err := scan(&p.RecordKey, &p.ID, &ts, &p.Name, &p.Value, &p.PointType,
		&p.Location.Latitude, &p.Location.Longitude, &p.Location.Accuracy, &p.Location.Altitude,
		&source, &categoryIDs, &duration, &p.DoesPointCount)
	if err != nil {
		return nil, err
	}
	p.Timestamp = time.Unix(ts, 0).UTC()
	p.Duration = time.Duration(duration) * time.Second
	p.Source = models.CodeSource(source)
	p.CategoryIDs = splitIDs(categoryIDs)
	return &p, nil
}

// GetAll lists all stored points ordered by timestamp.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.UserPoint, error) {
	query := `SELECT ` + selectColumns + ` FROM user_points ORDER BY ts`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select user points: %w", err)
	}
	defer rows.Close()

	var result []models.UserPoint
	for rows.Next() {
		p, err := scanPoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByKey returns a single point by its scan-instance record key.
func (r *SQLiteRepository) GetByKey(ctx context.Context, recordKey string) (*models.UserPoint, error) {
	query := `SELECT ` + selectColumns + ` FROM user_points WHERE record_key = ?`
	row := r.db.QueryRowContext(ctx, query, recordKey)

	p, err := scanPoint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user point: %w", err)
	}
	return p, nil
}

// ReplaceAll deletes the current table contents and inserts the given
// points. Run it inside dbx.WithTx so readers never observe a half-replaced
// category.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, points []models.UserPoint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_points`); err != nil {
		return fmt.Errorf("failed to clear user points: %w", err)
	}
	query := `INSERT INTO user_points (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range points {
		_, err := r.db.ExecContext(ctx, query,
			p.RecordKey, p.ID, p.Timestamp.Unix(), p.Name, p.Value, p.PointType,
			p.Location.Latitude, p.Location.Longitude, p.Location.Accuracy, p.Location.Altitude,
			string(p.Source), joinIDs(p.CategoryIDs), int64(p.Duration/time.Second), p.DoesPointCount)
		if err != nil {
			return fmt.Errorf("failed to insert user point %s: %w", p.RecordKey, err)
		}
	}
	return nil
}

// DeleteAll wipes the table (logout / account switch).
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_points`); err != nil {
		return fmt.Errorf("failed to delete user points: %w", err)
	}
	return nil
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
