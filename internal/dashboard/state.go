// Package dashboard owns the interactive map state of one user session and
// derives the view the map client renders.
package dashboard

import (
	"errors"

	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/filter"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/prediction"
	"github.com/storeradar/radar/internal/selection"
	"github.com/storeradar/radar/internal/viewport"
)

// Dashboard errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMarkerNotFound  = errors.New("marker not visible")
	ErrUnknownEvent    = errors.New("unknown event")
)

// State is the complete session state. It is only changed through Reduce.
type State struct {
	Filters    filter.Selection
	Viewport   viewport.State
	Selection  selection.State
	Prediction prediction.Workflow
	Search     Search
}

// Search is the place search box.
type Search struct {
	Text        string
	Suggestions []places.Suggestion

	// Gen advances on every keystroke and choice. Lookups and resolutions
	// report back with the generation they were started under.
	Gen uint64
}

// Initial returns the state of a new session.
func Initial() State {
	return State{
		Viewport:   viewport.Initial(),
		Prediction: prediction.Workflow{Phase: prediction.PhaseIdle},
		Search:     Search{Suggestions: []places.Suggestion{}},
	}
}

// Event is a user or system input.
type Event interface {
	event()
}

// FiltersChanged replaces the filter selection.
type FiltersChanged struct {
	Selection filter.Selection
}

// CameraChanged reports a user camera move.
type CameraChanged struct {
	Lat, Lng, Zoom float64
}

// MarkerClicked reports a click on a store marker.
type MarkerClicked struct {
	Point dataset.Point
}

// MapClicked reports a click on the map background.
type MapClicked struct {
	Lat, Lng float64
}

// DetailDismissed closes the store detail panel.
type DetailDismissed struct{}

// SearchTextChanged reports a keystroke in the search box.
type SearchTextChanged struct {
	Text string
}

// SuggestionsLoaded delivers autocomplete results.
type SuggestionsLoaded struct {
	Gen         uint64
	Suggestions []places.Suggestion
}

// SuggestionChosen reports a click on an autocomplete candidate.
type SuggestionChosen struct {
	Suggestion places.Suggestion
}

// PlaceResolved delivers the coordinate of a chosen candidate.
type PlaceResolved struct {
	Gen   uint64
	Place places.Place
}

// FieldChanged edits a prediction form input.
type FieldChanged struct {
	Field prediction.Field
	Value string
}

// FieldsChanged edits several prediction form inputs as one update.
type FieldsChanged struct {
	Values map[prediction.Field]string
}

// PredictionSubmitted presses the submit button.
type PredictionSubmitted struct{}

// PredictionCompleted delivers a scoring outcome.
type PredictionCompleted struct {
	Ticket uint64
	Result *prediction.Result
	Err    error
}

// PredictionDismissed closes the prediction popup.
type PredictionDismissed struct{}

func (FiltersChanged) event()      {}
func (CameraChanged) event()       {}
func (MarkerClicked) event()       {}
func (MapClicked) event()          {}
func (DetailDismissed) event()     {}
func (SearchTextChanged) event()   {}
func (SuggestionsLoaded) event()   {}
func (SuggestionChosen) event()    {}
func (PlaceResolved) event()       {}
func (FieldChanged) event()        {}
func (FieldsChanged) event()       {}
func (PredictionSubmitted) event() {}
func (PredictionCompleted) event() {}
func (PredictionDismissed) event() {}

// Effect is asynchronous work requested by a transition.
type Effect interface {
	effect()
}

// ScheduleLookup debounces an autocomplete lookup. Any pending lookup is
// cancelled.
type ScheduleLookup struct {
	Gen  uint64
	Text string
}

// CancelLookup drops the pending lookup.
type CancelLookup struct{}

// ResolvePlace looks up the coordinate of a chosen candidate.
type ResolvePlace struct {
	Gen     uint64
	PlaceID string
}

// SubmitPrediction sends a request to the scoring service.
type SubmitPrediction struct {
	Ticket  uint64
	Request prediction.Request
}

func (ScheduleLookup) effect()   {}
func (CancelLookup) effect()     {}
func (ResolvePlace) effect()     {}
func (SubmitPrediction) effect() {}

// Reduce applies ev to s. It is pure: the returned effects describe the
// work the caller must start. On error s is returned unchanged.
func Reduce(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case FiltersChanged:
		s.Filters = e.Selection.Normalize()
		return s, nil, nil

	case CameraChanged:
		if !dataset.ValidCoordinate(e.Lat, e.Lng) {
			return s, nil, dataset.ErrInvalidCoordinates
		}
		s.Viewport = s.Viewport.CameraChanged(e.Lat, e.Lng, e.Zoom)
		return s, nil, nil

	case MarkerClicked:
		s.Selection, _ = s.Selection.MarkerClicked(e.Point)
		return s, nil, nil

	case MapClicked:
		if !dataset.ValidCoordinate(e.Lat, e.Lng) {
			return s, nil, dataset.ErrInvalidCoordinates
		}
		var eff selection.Effect
		s.Selection, eff = s.Selection.MapClicked()
		if eff == selection.EffectOpenPrediction {
			s.Prediction = s.Prediction.Open(e.Lat, e.Lng)
		}
		return s, nil, nil

	case DetailDismissed:
		s.Selection, _ = s.Selection.DetailDismissed()
		return s, nil, nil

	case SearchTextChanged:
		s.Search.Text = e.Text
		s.Search.Gen++
		if !places.Qualifies(e.Text) {
			s.Search.Suggestions = []places.Suggestion{}
			return s, []Effect{CancelLookup{}}, nil
		}
		return s, []Effect{ScheduleLookup{Gen: s.Search.Gen, Text: e.Text}}, nil

	case SuggestionsLoaded:
		if e.Gen != s.Search.Gen {
			return s, nil, nil
		}
		s.Search.Suggestions = e.Suggestions
		if s.Search.Suggestions == nil {
			s.Search.Suggestions = []places.Suggestion{}
		}
		return s, nil, nil

	case SuggestionChosen:
		s.Search.Text = e.Suggestion.Description
		s.Search.Suggestions = []places.Suggestion{}
		s.Search.Gen++
		return s, []Effect{
			CancelLookup{},
			ResolvePlace{Gen: s.Search.Gen, PlaceID: e.Suggestion.PlaceID},
		}, nil

	case PlaceResolved:
		if e.Gen != s.Search.Gen {
			return s, nil, nil
		}
		s.Viewport = s.Viewport.PlaceSelected(e.Place.Lat, e.Place.Lng)
		return s, nil, nil

	case FieldChanged:
		next, err := s.Prediction.SetField(e.Field, e.Value)
		if err != nil {
			return s, nil, err
		}
		s.Prediction = next
		return s, nil, nil

	case FieldsChanged:
		next, err := s.Prediction.SetFields(e.Values)
		if err != nil {
			return s, nil, err
		}
		s.Prediction = next
		return s, nil, nil

	case PredictionSubmitted:
		next, req, ticket, err := s.Prediction.Submit()
		if err != nil {
			return s, nil, err
		}
		s.Prediction = next
		return s, []Effect{SubmitPrediction{Ticket: ticket, Request: req}}, nil

	case PredictionCompleted:
		s.Prediction, _ = s.Prediction.Complete(e.Ticket, e.Result, e.Err)
		return s, nil, nil

	case PredictionDismissed:
		s.Prediction = s.Prediction.Dismiss()
		return s, nil, nil
	}

	return s, nil, ErrUnknownEvent
}

var errScorerUnavailable = errors.New("scoring service is not configured")
