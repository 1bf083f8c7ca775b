// Package dataset holds the store point collection rendered by the dashboard.
package dataset

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// Dataset errors.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidWeight      = errors.New("weight out of range")
)

// Weight bounds.
const (
	MinWeight = 0
	MaxWeight = 100
)

// Point is a single geocoded store. Points are immutable once loaded.
type Point struct {
	// Key identifies the point within a snapshot. The store assigns it on
	// replace; it is the store id unless that is missing or repeated.
	Key string

	// StoreID may be empty; the detail panel shows a placeholder.
	StoreID  string
	PlazaKey string

	// Location is stored as orb.Point, i.e. [lng, lat].
	Location orb.Point

	LocationType       string
	MasterSegment      string
	Environment        string
	SocioeconomicLevel string

	// Area is the store size in square meters, nil when unknown.
	Area *float64

	// Weight is the goal-compliance score (0-100).
	Weight float64
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 {
	return p.Location.Lat()
}

// Lng returns the longitude in degrees.
func (p Point) Lng() float64 {
	return p.Location.Lon()
}

// Validate checks the point invariants.
func (p Point) Validate() error {
	if !ValidCoordinate(p.Lat(), p.Lng()) {
		return ErrInvalidCoordinates
	}
	if math.IsNaN(p.Weight) || p.Weight < MinWeight || p.Weight > MaxWeight {
		return ErrInvalidWeight
	}
	return nil
}

// ValidCoordinate reports whether lat/lng are within WGS84 degree bounds.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// NewLocation builds an orb.Point from latitude and longitude.
func NewLocation(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}
