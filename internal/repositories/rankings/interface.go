package rankings

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Repository is the durable store of the per-category leaderboards.
type Repository interface {
	GetAll(ctx context.Context) ([]models.Ranking, error)
	GetByCategory(ctx context.Context, categoryID string) (*models.Ranking, error)
	ReplaceAll(ctx context.Context, rankings []models.Ranking) error
	DeleteAll(ctx context.Context) error
}
