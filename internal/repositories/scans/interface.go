package scans

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Repository is the durable queue of scans captured while offline (or after
// a failed send). GetAllOrdered returns them FIFO by capture time so replay
// preserves the original scan order.
type Repository interface {
	Insert(ctx context.Context, p *models.ScannedPoint) error
	GetAllOrdered(ctx context.Context) ([]models.ScannedPoint, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
