// Package genericpoints persists the generic-points category in the local
// sqlite database.
package genericpoints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

const selectColumns = `id, name, value, point_type, lat, lon, acc, alt, category_ids, active`

func scanPoint(scan func(...any) error) (*models.GenericPoint, error) {
	var p models.GenericPoint
	var categoryIDs string
	err := scan(&p.ID, &p.Name, &p.Value, &p.PointType,
		&p.Location.Latitude, &p.Location.Longitude, &p.Location.Accuracy, &p.Location.Altitude,
		&categoryIDs, &p.Active)
	if err != nil {
		return nil, err
	}
	if categoryIDs != "" {
		p.CategoryIDs = strings.Split(categoryIDs, ",")
	}
	return &p, nil
}

// GetAll lists all stored generic points.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.GenericPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM generic_points ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select generic points: %w", err)
	}
	defer rows.Close()

	var result []models.GenericPoint
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

// GetByID returns a single generic point.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.GenericPoint, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM generic_points WHERE id = ?`, id)

	p, err := scanPoint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select generic point: %w", err)
	}
	return p, nil
}

// ReplaceAll swaps the whole table contents. Run inside dbx.WithTx together
// with the checksum update.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, points []models.GenericPoint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM generic_points`); err != nil {
		return fmt.Errorf("failed to clear generic points: %w", err)
	}
	query := `INSERT INTO generic_points (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range points {
		_, err := r.db.ExecContext(ctx, query,
			p.ID, p.Name, p.Value, p.PointType,
			p.Location.Latitude, p.Location.Longitude, p.Location.Accuracy, p.Location.Altitude,
			strings.Join(p.CategoryIDs, ","), p.Active)
		if err != nil {
			return fmt.Errorf("failed to insert generic point %s: %w", p.ID, err)
		}
	}
	return nil
}

// DeleteAll wipes the table (account switch only; generic points survive an
// ordinary logout).
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM generic_points`); err != nil {
		return fmt.Errorf("failed to delete generic points: %w", err)
	}
	return nil
}
