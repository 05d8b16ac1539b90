package storage

import (
	"context"

	"costar-map/models"
)

// ListingSource is the interface any listing backend must satisfy.
// Load returns the rows in source order; sources are read-only.
type ListingSource interface {
	Load(ctx context.Context) ([]*models.RawListing, error)
	Close() error
}
