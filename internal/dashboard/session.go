package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/filter"
	"github.com/storeradar/radar/internal/heatmap"
	"github.com/storeradar/radar/internal/marker"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/prediction"
	"github.com/storeradar/radar/internal/telemetry"
)

const tracerName = "github.com/storeradar/radar/internal/dashboard"

// Observer receives completed submissions.
type Observer interface {
	RecordPrediction(ctx context.Context, duration time.Duration, err error)
}

// Searcher looks up places for the search box.
type Searcher interface {
	Suggest(ctx context.Context, text string) []places.Suggestion
	Resolve(ctx context.Context, placeID string) (*places.Place, error)
}

// SessionConfig holds the collaborators shared by every session.
type SessionConfig struct {
	// Dataset is the store collection.
	Dataset *dataset.Store

	// Places serves the search box. Optional.
	Places Searcher

	// Scorer scores prediction requests.
	Scorer prediction.Scorer

	// Debounce is the search quiet period (default: 300ms).
	Debounce time.Duration

	// Observer is optional.
	Observer Observer

	// Logger for session operations.
	Logger zerolog.Logger
}

// Session is one user's dashboard. Events are applied one at a time in
// dispatch order. Lookups and submissions run outside the lock and report
// back as events.
type Session struct {
	id     string
	cfg    SessionConfig
	logger zerolog.Logger

	debouncer *places.Debouncer
	canvas    *heatmap.Canvas
	renderer  *heatmap.Renderer

	mu       sync.Mutex
	state    State
	rendered renderKey
	lastSeen time.Time
}

type renderKey struct {
	version uint64
	zoom    float64
	filters filter.Selection
	valid   bool
}

func (k renderKey) equal(o renderKey) bool {
	return k.valid && o.valid &&
		k.version == o.version &&
		k.zoom == o.zoom &&
		slices.Equal(k.filters.LocationTypes, o.filters.LocationTypes) &&
		slices.Equal(k.filters.MasterSegments, o.filters.MasterSegments) &&
		slices.Equal(k.filters.Environments, o.filters.Environments)
}

// NewSession creates a session in the initial state.
func NewSession(id string, cfg SessionConfig) *Session {
	canvas := heatmap.NewCanvas()
	return &Session{
		id:        id,
		cfg:       cfg,
		logger:    cfg.Logger.With().Str("session_id", id).Logger(),
		debouncer: places.NewDebouncer(cfg.Debounce),
		canvas:    canvas,
		renderer:  heatmap.NewRenderer(canvas),
		state:     Initial(),
		lastSeen:  time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// LastSeen returns when the session last received an event.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View derives the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Dispatch applies ev, runs the resulting effects and returns the view.
// Submissions and place resolutions complete before Dispatch returns; search
// lookups are debounced and land later.
func (s *Session) Dispatch(ctx context.Context, ev Event) (View, error) {
	effects, err := s.apply(ev, true)
	if err != nil {
		return s.View(), err
	}
	s.run(ctx, effects)
	return s.View(), nil
}

// ClickMarker selects the store behind the visible marker with key.
func (s *Session) ClickMarker(ctx context.Context, key string) (View, error) {
	s.mu.Lock()
	snap := s.cfg.Dataset.Snapshot()
	var (
		found dataset.Point
		ok    bool
	)
	if marker.Visible(s.state.Viewport.Zoom) {
		for _, p := range filter.Apply(snap.Points, s.state.Filters) {
			if p.Key == key {
				found, ok = p, true
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return s.View(), ErrMarkerNotFound
	}
	return s.Dispatch(ctx, MarkerClicked{Point: found})
}

// Close stops pending lookups.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) apply(ev Event, touch bool) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, effects, err := Reduce(s.state, ev)
	if err != nil {
		s.logger.Debug().Err(err).Str("event", eventName(ev)).Msg("event rejected")
		return nil, err
	}

	s.state = next
	if touch {
		s.lastSeen = time.Now()
	}
	s.renderLocked()

	s.logger.Debug().
		Str("event", eventName(ev)).
		Str("prediction_phase", string(next.Prediction.Phase)).
		Int("effects", len(effects)).
		Msg("event applied")

	return effects, nil
}

func (s *Session) run(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case ScheduleLookup:
			s.scheduleLookup(e)

		case CancelLookup:
			s.debouncer.Cancel()

		case ResolvePlace:
			s.resolvePlace(ctx, e)

		case SubmitPrediction:
			s.submit(ctx, e)
		}
	}
}

func (s *Session) scheduleLookup(e ScheduleLookup) {
	if s.cfg.Places == nil {
		return
	}
	s.debouncer.Schedule(func(uint64) {
		suggestions := s.cfg.Places.Suggest(context.Background(), e.Text)
		_, _ = s.apply(SuggestionsLoaded{Gen: e.Gen, Suggestions: suggestions}, false)
	})
}

func (s *Session) resolvePlace(ctx context.Context, e ResolvePlace) {
	if s.cfg.Places == nil {
		return
	}
	place, err := s.cfg.Places.Resolve(ctx, e.PlaceID)
	if err != nil {
		// Lookup failures leave the camera where it is.
		s.logger.Warn().Err(err).Str("place_id", e.PlaceID).Msg("could not resolve place")
		return
	}
	_, _ = s.apply(PlaceResolved{Gen: e.Gen, Place: *place}, false)
}

func (s *Session) submit(ctx context.Context, e SubmitPrediction) {
	// The submission outlives a cancelled HTTP request; its outcome is
	// still applied to the session.
	ctx = context.WithoutCancel(ctx)

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "dashboard.submit_prediction")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.Int64("prediction.ticket", int64(e.Ticket)), //nolint:gosec // tickets are small counters
	)

	start := time.Now()
	var (
		res *prediction.Result
		err error
	)
	if s.cfg.Scorer == nil {
		err = errScorerUnavailable
	} else {
		res, err = s.cfg.Scorer.Predict(ctx, e.Request)
	}
	if s.cfg.Observer != nil {
		s.cfg.Observer.RecordPrediction(ctx, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn().Err(err).Uint64("ticket", e.Ticket).Msg("prediction failed")
	} else {
		span.SetAttributes(attribute.Bool("prediction.rentable", res.Profitable))
		s.logger.Info().
			Uint64("ticket", e.Ticket).
			Float64("prob_rentable", res.Probability).
			Bool("rentable", res.Profitable).
			Msg("prediction completed")
	}

	_, _ = s.apply(PredictionCompleted{Ticket: e.Ticket, Result: res, Err: err}, false)
}

func (s *Session) renderLocked() (dataset.Snapshot, []dataset.Point) {
	snap := s.cfg.Dataset.Snapshot()
	filtered := filter.Apply(snap.Points, s.state.Filters)

	key := renderKey{
		version: snap.Version,
		zoom:    s.state.Viewport.Zoom,
		filters: s.state.Filters,
		valid:   true,
	}
	if !key.equal(s.rendered) {
		zoom := s.state.Viewport.Zoom
		s.renderer.Render(filtered, &zoom)
		s.rendered = key
	}
	return snap, filtered
}

func (s *Session) viewLocked() View {
	snap, filtered := s.renderLocked()
	var layer *heatmap.Layer
	if l, ok := s.canvas.Current(); ok {
		layer = &l
	}
	return render(s.id, s.state, snap, filtered, layer)
}

func eventName(ev Event) string {
	switch ev.(type) {
	case FiltersChanged:
		return "filters_changed"
	case CameraChanged:
		return "camera_changed"
	case MarkerClicked:
		return "marker_clicked"
	case MapClicked:
		return "map_clicked"
	case DetailDismissed:
		return "detail_dismissed"
	case SearchTextChanged:
		return "search_text_changed"
	case SuggestionsLoaded:
		return "suggestions_loaded"
	case SuggestionChosen:
		return "suggestion_chosen"
	case PlaceResolved:
		return "place_resolved"
	case FieldChanged:
		return "field_changed"
	case FieldsChanged:
		return "fields_changed"
	case PredictionSubmitted:
		return "prediction_submitted"
	case PredictionCompleted:
		return "prediction_completed"
	case PredictionDismissed:
		return "prediction_dismissed"
	}
	return "unknown"
}
