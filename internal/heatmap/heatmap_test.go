package heatmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/heatmap"
)

func zoomPtr(z float64) *float64 { return &z }

func TestRadius(t *testing.T) {
	assert.InDelta(t, 0, heatmap.Radius(0), 1e-9)
	assert.InDelta(t, 0, heatmap.Radius(-3), 1e-9)
	assert.InDelta(t, 40*9.0/15, heatmap.Radius(15), 1e-9)
	assert.InDelta(t, 40, heatmap.Radius(25), 1e-9)
	assert.InDelta(t, 40, heatmap.Radius(30), 1e-9)

	prev := heatmap.Radius(0)
	for z := 0.5; z <= 30; z += 0.5 {
		r := heatmap.Radius(z)
		assert.GreaterOrEqual(t, r, prev, "zoom %v", z)
		prev = r
	}
}

func TestBuild(t *testing.T) {
	points := []dataset.Point{
		{StoreID: "1", Location: dataset.NewLocation(25.1, -100.1), Weight: 80},
		{StoreID: "2", Location: dataset.NewLocation(25.2, -100.2), Weight: 0},
		{StoreID: "3", Location: dataset.NewLocation(25.3, -100.3), Weight: 100},
	}

	layer := heatmap.Build(points, 10)

	require.Len(t, layer.Samples, 3)
	assert.Equal(t, heatmap.Sample{Lat: 25.1, Lng: -100.1, Weight: 20}, layer.Samples[0])
	assert.InDelta(t, 100, layer.Samples[1].Weight, 1e-9)
	assert.InDelta(t, 0, layer.Samples[2].Weight, 1e-9)
	assert.InDelta(t, 16, layer.Radius, 1e-9)
	assert.InDelta(t, 0.8, layer.Opacity, 1e-9)
	assert.InDelta(t, 100, layer.MaxIntensity, 1e-9)
	assert.True(t, layer.Dissipating)
	assert.Equal(t, []string{
		"rgba(255,0,0,0)",
		"rgba(255,255,0,1)",
		"rgba(255,165,0,1)",
		"rgba(255,0,0,1)",
	}, layer.Gradient)
}

func TestRenderer_ReplacesLayer(t *testing.T) {
	canvas := heatmap.NewCanvas()
	r := heatmap.NewRenderer(canvas)
	points := []dataset.Point{{StoreID: "1", Location: dataset.NewLocation(1, 1), Weight: 50}}

	r.Render(points, zoomPtr(12))
	r.Render(points[:0], zoomPtr(14))

	layers := canvas.Layers()
	require.Len(t, layers, 1, "old layer must be removed before the new one is drawn")
	assert.Empty(t, layers[0].Samples)
	assert.InDelta(t, heatmap.Radius(14), layers[0].Radius, 1e-9)
	assert.Equal(t, 2, r.Builds())
}

func TestRenderer_NoOpWithoutZoomOrSurface(t *testing.T) {
	points := []dataset.Point{{StoreID: "1", Location: dataset.NewLocation(1, 1), Weight: 50}}

	r := heatmap.NewRenderer(nil)
	r.Render(points, zoomPtr(12))
	assert.Equal(t, 0, r.Builds())

	canvas := heatmap.NewCanvas()
	r.SetSurface(canvas)
	r.Render(points, nil)
	assert.Equal(t, 0, r.Builds())
	assert.Empty(t, canvas.Layers())

	r.Render(points, zoomPtr(12))
	_, ok := canvas.Current()
	assert.True(t, ok)
}

func TestRenderer_SetSurfaceMovesLayer(t *testing.T) {
	first := heatmap.NewCanvas()
	second := heatmap.NewCanvas()
	points := []dataset.Point{{StoreID: "1", Location: dataset.NewLocation(1, 1), Weight: 50}}

	r := heatmap.NewRenderer(first)
	r.Render(points, zoomPtr(12))
	require.Len(t, first.Layers(), 1)

	r.SetSurface(second)
	r.Render(points, zoomPtr(12))

	assert.Empty(t, first.Layers())
	assert.Len(t, second.Layers(), 1)
}
