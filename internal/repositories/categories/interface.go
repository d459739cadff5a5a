package categories

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Repository is the durable store of the user's competition categories,
// including which one is primary.
type Repository interface {
	Get(ctx context.Context) (*models.UserCategoryData, error)
	GetByID(ctx context.Context, id string) (*models.UserCategory, error)
	Replace(ctx context.Context, data *models.UserCategoryData) error
	DeleteAll(ctx context.Context) error
}
