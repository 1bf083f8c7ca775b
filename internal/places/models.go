// Package places provides search-as-you-type place lookup used to move the
// map camera.
package places

import (
	"context"
	"errors"
	"time"
)

// Places errors.
var (
	ErrNoResults      = errors.New("no results for place")
	ErrInvalidPlaceID = errors.New("invalid place id")
)

// Search policy.
const (
	// MinQueryLength is the number of characters needed to trigger a lookup.
	MinQueryLength = 3

	// DefaultDebounce is the quiet period after the last keystroke.
	DefaultDebounce = 300 * time.Millisecond
)

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// Place is a resolved candidate.
type Place struct {
	PlaceID string  `json:"placeId"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Provider defines the interface for place search providers.
type Provider interface {
	// Autocomplete returns candidates for a partial query.
	Autocomplete(ctx context.Context, input string) ([]Suggestion, error)

	// Resolve returns the coordinate of a candidate.
	Resolve(ctx context.Context, placeID string) (*Place, error)

	// Name returns the provider name for logging.
	Name() string
}
