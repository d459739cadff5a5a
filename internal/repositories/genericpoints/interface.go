package genericpoints

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Repository is the durable store of the generic-points category (the
// physical markers placed in the field, shared by all users).
type Repository interface {
	GetAll(ctx context.Context) ([]models.GenericPoint, error)
	GetByID(ctx context.Context, id string) (*models.GenericPoint, error)
	ReplaceAll(ctx context.Context, points []models.GenericPoint) error
	DeleteAll(ctx context.Context) error
}
