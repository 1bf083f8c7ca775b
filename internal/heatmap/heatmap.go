// Package heatmap builds the density overlay drawn over the store map.
package heatmap

import (
	"sync"

	"github.com/storeradar/radar/internal/dataset"
)

// Layer styling.
const (
	BaseRadius   = 40.0
	Opacity      = 0.8
	MaxIntensity = 100.0

	zoomFactor = 0.6
	zoomCap    = 15.0
)

// Gradient runs from transparent red through yellow and orange to red.
var Gradient = []string{
	"rgba(255,0,0,0)",
	"rgba(255,255,0,1)",
	"rgba(255,165,0,1)",
	"rgba(255,0,0,1)",
}

// Sample is one weighted heat location.
type Sample struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// Layer is a complete heat overlay description.
type Layer struct {
	Samples      []Sample `json:"samples"`
	Radius       float64  `json:"radius"`
	Opacity      float64  `json:"opacity"`
	MaxIntensity float64  `json:"maxIntensity"`
	Dissipating  bool     `json:"dissipating"`
	Gradient     []string `json:"gradient"`
}

// Radius returns the sample radius for zoom: 40 * clamp(zoom*0.6, 0, 15) / 15.
func Radius(zoom float64) float64 {
	scaled := zoom * zoomFactor
	if scaled < 0 {
		scaled = 0
	}
	if scaled > zoomCap {
		scaled = zoomCap
	}
	return BaseRadius * scaled / zoomCap
}

// Build creates the layer for points at zoom. Low compliance stores glow
// hotter, so each sample carries 100 - weight.
func Build(points []dataset.Point, zoom float64) Layer {
	samples := make([]Sample, 0, len(points))
	for _, p := range points {
		samples = append(samples, Sample{
			Lat:    p.Lat(),
			Lng:    p.Lng(),
			Weight: dataset.MaxWeight - p.Weight,
		})
	}

	gradient := make([]string, len(Gradient))
	copy(gradient, Gradient)

	return Layer{
		Samples:      samples,
		Radius:       Radius(zoom),
		Opacity:      Opacity,
		MaxIntensity: MaxIntensity,
		Dissipating:  true,
		Gradient:     gradient,
	}
}

// Surface is a map that can display heat overlays.
type Surface interface {
	// AddHeatmap draws layer and returns a handle that removes it.
	AddHeatmap(layer Layer) Handle
}

// Handle removes a drawn layer from its surface.
type Handle interface {
	Remove()
}

// Renderer keeps at most one layer attached to a surface.
type Renderer struct {
	surface Surface
	current Handle
	builds  int
}

// NewRenderer creates a renderer drawing on surface, which may be nil until
// the map is ready.
func NewRenderer(surface Surface) *Renderer {
	return &Renderer{surface: surface}
}

// SetSurface moves rendering to a new surface. The layer on the previous
// surface is removed; callers re-render afterwards.
func (r *Renderer) SetSurface(surface Surface) {
	r.clear()
	r.surface = surface
}

// Render removes the current layer and, when both the surface and the zoom
// are known, draws a fresh one for points.
func (r *Renderer) Render(points []dataset.Point, zoom *float64) {
	r.clear()
	if r.surface == nil || zoom == nil {
		return
	}
	r.current = r.surface.AddHeatmap(Build(points, *zoom))
	r.builds++
}

// Builds returns how many layers have been drawn.
func (r *Renderer) Builds() int {
	return r.builds
}

func (r *Renderer) clear() {
	if r.current != nil {
		r.current.Remove()
		r.current = nil
	}
}

// Canvas is an in-memory Surface holding the layers currently drawn.
type Canvas struct {
	mu     sync.Mutex
	nextID int
	layers map[int]Layer
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{layers: make(map[int]Layer)}
}

// AddHeatmap implements Surface.
func (c *Canvas) AddHeatmap(layer Layer) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.layers[c.nextID] = layer
	return canvasHandle{canvas: c, id: c.nextID}
}

// Layers returns the layers currently drawn, oldest first.
func (c *Canvas) Layers() []Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Layer, 0, len(c.layers))
	for id := 1; id <= c.nextID; id++ {
		if l, ok := c.layers[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Current returns the most recent drawn layer.
func (c *Canvas) Current() (Layer, bool) {
	layers := c.Layers()
	if len(layers) == 0 {
		return Layer{}, false
	}
	return layers[len(layers)-1], true
}

type canvasHandle struct {
	canvas *Canvas
	id     int
}

func (h canvasHandle) Remove() {
	h.canvas.mu.Lock()
	defer h.canvas.mu.Unlock()
	delete(h.canvas.layers, h.id)
}
