package dataset

import "context"

// Repository loads the full point collection from a backing source.
type Repository interface {
	// Load returns every point in source order.
	Load(ctx context.Context) ([]Point, error)

	// Name identifies the source for logging.
	Name() string
}
