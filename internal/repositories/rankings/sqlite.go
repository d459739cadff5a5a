// Package rankings persists the rank category in the local sqlite database.
// Leaderboards are stored as normalized rows (one per entry) and grouped
// back into models.Ranking on read.
package rankings

import (
	"context"
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

// GetAll returns every stored leaderboard, entries ordered by their rank
// position.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Ranking, error) {
	query := `SELECT category_id, user_id, nick, points, ord
		FROM rank_entries ORDER BY category_id, ord`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select rank entries: %w", err)
	}
	defer rows.Close()

	var result []models.Ranking
	for rows.Next() {
		var categoryID string
		var e models.RankEntry
		if err := rows.Scan(&categoryID, &e.UserID, &e.Nick, &e.Points, &e.Order); err != nil {
			return nil, err
		}
		if n := len(result); n == 0 || result[n-1].CategoryID != categoryID {
			result = append(result, models.Ranking{CategoryID: categoryID})
		}
		last := &result[len(result)-1]
		last.Entries = append(last.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByCategory returns one category's leaderboard.
func (r *SQLiteRepository) GetByCategory(ctx context.Context, categoryID string) (*models.Ranking, error) {
	query := `SELECT user_id, nick, points, ord
		FROM rank_entries WHERE category_id = ? ORDER BY ord`
	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select rank entries: %w", err)
	}
	defer rows.Close()

	ranking := &models.Ranking{CategoryID: categoryID}
	for rows.Next() {
		var e models.RankEntry
		if err := rows.Scan(&e.UserID, &e.Nick, &e.Points, &e.Order); err != nil {
			return nil, err
		}
		ranking.Entries = append(ranking.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ranking.Entries) == 0 {
		return nil, common.ErrorNotFound
	}
	return ranking, nil
}

// ReplaceAll swaps the whole table contents. Run inside dbx.WithTx together
// with the checksum update.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, rankings []models.Ranking) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rank_entries`); err != nil {
		return fmt.Errorf("failed to clear rank entries: %w", err)
	}
	query := `INSERT INTO rank_entries (category_id, user_id, nick, points, ord)
		VALUES (?, ?, ?, ?, ?)`
	for _, ranking := range rankings {
		for _, e := range ranking.Entries {
			_, err := r.db.ExecContext(ctx, query, ranking.CategoryID, e.UserID, e.Nick, e.Points, e.Order)
			if err != nil {
				return fmt.Errorf("failed to insert rank entry %s/%s: %w", ranking.CategoryID, e.UserID, err)
			}
		}
	}
	return nil
}

// DeleteAll wipes the table (logout / account switch).
func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rank_entries`); err != nil {
		return fmt.Errorf("failed to delete rank entries: %w", err)
	}
	return nil
}
