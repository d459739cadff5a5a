// Package api implements the client of the Life is Skill backend REST API.
// It handles request context (bearer token, app identification, location),
// the uniform response envelope, and mapping server errors to the shared
// sentinel errors.
package api

import (
	"context"

	"github.com/lifeisskill/lisk-go/internal/models"
)

// Client is the remote side of the sync subsystem. Checksum hits the
// lightweight per-category endpoint; the payload calls return the complete
// record set together with its current checksum.
type Client interface {
	Login(ctx context.Context, username, password string) (*models.LoggedInUser, error)
	Ping(ctx context.Context) error

	Checksum(ctx context.Context, token string, category models.Category) (string, error)
	UserPoints(ctx context.Context, token string) (*models.UserPointData, error)
	GenericPoints(ctx context.Context, token string, loc *models.Location) (*models.GenericPointData, error)
	Rankings(ctx context.Context, token string) (*models.UserRankData, error)
	UserCategories(ctx context.Context, token string) (*models.UserCategoryData, error)

	SubmitScan(ctx context.Context, token string, p *models.ScannedPoint) error
}
