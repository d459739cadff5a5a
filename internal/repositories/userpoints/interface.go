package userpoints

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Repository is the durable store of earned points. ReplaceAll swaps the
// whole table contents; it is expected to run inside a transaction together
// with the checksum update.
type Repository interface {
	GetAll(ctx context.Context) ([]models.UserPoint, error)
	GetByKey(ctx context.Context, recordKey string) (*models.UserPoint, error)
	ReplaceAll(ctx context.Context, points []models.UserPoint) error
	DeleteAll(ctx context.Context) error
}
