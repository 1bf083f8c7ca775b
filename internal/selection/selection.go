// Package selection tracks the store detail panel and decides which map
// clicks open a prediction.
package selection

import "github.com/storeradar/radar/internal/dataset"

// Effect is what the caller must do after a transition.
type Effect int

// Transition effects.
const (
	EffectNone Effect = iota
	EffectOpenPrediction
)

// State is the detail selection. A marker click and the map click it
// propagates to arrive as two events; Suppress swallows the second one.
type State struct {
	Active   *dataset.Point
	Suppress bool
}

// MarkerClicked opens the detail panel for p.
func (s State) MarkerClicked(p dataset.Point) (State, Effect) {
	return State{Active: &p, Suppress: true}, EffectNone
}

// MapClicked handles a click on the map background. A pending suppression
// is consumed; otherwise the click opens a prediction. The detail panel is
// left untouched either way.
func (s State) MapClicked() (State, Effect) {
	if s.Suppress {
		s.Suppress = false
		return s, EffectNone
	}
	return s, EffectOpenPrediction
}

// DetailDismissed closes the detail panel.
func (s State) DetailDismissed() (State, Effect) {
	s.Active = nil
	return s, EffectNone
}
