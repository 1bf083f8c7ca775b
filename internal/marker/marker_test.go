package marker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/marker"
)

func TestMarkers(t *testing.T) {
	points := []dataset.Point{
		{StoreID: "1", Location: dataset.NewLocation(25.1, -100.1)},
		{StoreID: "2", Location: dataset.NewLocation(25.2, -100.2)},
		{StoreID: "3", Location: dataset.NewLocation(25.3, -100.3)},
	}

	tests := []struct {
		zoom float64
		want int
	}{
		{zoom: 0, want: 0},
		{zoom: 13, want: 0},
		{zoom: 13.01, want: 3},
		{zoom: 14, want: 3},
		{zoom: 21, want: 3},
	}

	for _, tt := range tests {
		got := marker.Markers(points, tt.zoom)
		assert.Len(t, got, tt.want, "zoom %v", tt.zoom)
		assert.Equal(t, tt.zoom > 13, marker.Visible(tt.zoom))
	}
}

func TestMarkers_Coordinates(t *testing.T) {
	points := []dataset.Point{{Key: "9~2", StoreID: "9", Location: dataset.NewLocation(25.5, -100.5)}}

	got := marker.Markers(points, 15)

	assert.Equal(t, []marker.Marker{{Key: "9~2", StoreID: "9", Lat: 25.5, Lng: -100.5}}, got)
}
