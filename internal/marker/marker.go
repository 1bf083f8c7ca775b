// Package marker decides which store markers the map shows.
package marker

import "github.com/storeradar/radar/internal/dataset"

// MinZoom is the zoom level above which markers are shown.
const MinZoom = 13.0

// Marker is one clickable store marker.
type Marker struct {
	// Key addresses the marker in click requests.
	Key     string  `json:"key"`
	StoreID string  `json:"storeId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Visible reports whether markers render at zoom.
func Visible(zoom float64) bool {
	return zoom > MinZoom
}

// Markers returns one marker per point when visible at zoom, otherwise none.
func Markers(points []dataset.Point, zoom float64) []Marker {
	if !Visible(zoom) {
		return []Marker{}
	}
	out := make([]Marker, 0, len(points))
	for _, p := range points {
		out = append(out, Marker{Key: p.Key, StoreID: p.StoreID, Lat: p.Lat(), Lng: p.Lng()})
	}
	return out
}
