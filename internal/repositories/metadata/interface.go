package metadata

import (
	"context"
)

// Repository is a small key-value store used for singleton rows addressed
// by a fixed well-known key (the checksum record, the session record, and
// the offline-login credentials).
type Repository interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
