// Package viewport tracks the map camera.
package viewport

import (
	"github.com/paulmach/orb"

	"github.com/storeradar/radar/internal/dataset"
)

// Camera defaults.
const (
	DefaultLat  = 25.651449
	DefaultLng  = -100.289411
	DefaultZoom = 15.0

	// PlaceZoom is applied when a searched place is selected.
	PlaceZoom = 17.0
)

// State is the camera position. The last event always wins.
type State struct {
	Center orb.Point
	Zoom   float64

	// Pin marks the last selected search place, nil before the first one.
	Pin *orb.Point
}

// Initial returns the default camera.
func Initial() State {
	return State{
		Center: dataset.NewLocation(DefaultLat, DefaultLng),
		Zoom:   DefaultZoom,
	}
}

// PlaceSelected centers on the place, zooms to PlaceZoom and drops the pin.
func (s State) PlaceSelected(lat, lng float64) State {
	loc := dataset.NewLocation(lat, lng)
	return State{
		Center: loc,
		Zoom:   PlaceZoom,
		Pin:    &loc,
	}
}

// CameraChanged records a camera move reported by the map surface.
func (s State) CameraChanged(lat, lng, zoom float64) State {
	s.Center = dataset.NewLocation(lat, lng)
	s.Zoom = zoom
	return s
}
