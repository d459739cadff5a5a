// Package categories persists the user's competition categories in the local
// sqlite database.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Get returns the stored categories. A missing table is not an error; the
// result just carries no data.
func (r *SQLiteRepository) Get(ctx context.Context) (*models.UserCategoryData, error) {
	query := `SELECT id, name, detail, is_public, is_main FROM user_categories ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select user categories: %w", err)
	}
	defer rows.Close()

	data := &models.UserCategoryData{}
	for rows.Next() {
		var c models.UserCategory
		var isMain bool
		if err := rows.Scan(&c.ID, &c.Name, &c.Detail, &c.IsPublic, &isMain); err != nil {
			return nil, err
		}
		if isMain {
			data.MainCategoryID = c.ID
		}
		data.Data = append(data.Data, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// GetByID returns one category.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.UserCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, detail, is_public FROM user_categories WHERE id = ?`, id)

	var c models.UserCategory
	err := row.Scan(&c.ID, &c.Name, &c.Detail, &c.IsPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user category: %w", err)
	}
	return &c, nil
}

// Replace swaps the whole table contents.
func (r *SQLiteRepository) Replace(ctx context.Context, data *models.UserCategoryData) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_categories`); err != nil {
		return fmt.Errorf("failed to clear user categories: %w", err)
	}
	query := `INSERT INTO user_categories (id, name, detail, is_public, is_main)
		VALUES (?, ?, ?, ?, ?)`
	for _, c := range data.Data {
		_, err := r.db.ExecContext(ctx, query,
			c.ID, c.Name, c.Detail, c.IsPublic, c.ID == data.MainCategoryID)
		if err != nil {
			return fmt.Errorf("failed to insert user category %s: %w", c.ID, err)
		}
	}
	return nil
}

// DeleteAll wipes the table (logout / account switch).
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_categories`); err != nil {
		return fmt.Errorf("failed to delete user categories: %w", err)
	}
	return nil
}
