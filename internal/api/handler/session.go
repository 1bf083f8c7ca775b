package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/api/models"
	"github.com/storeradar/radar/internal/api/response"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/filter"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/prediction"
)

// SessionHandler handles dashboard session endpoints.
type SessionHandler struct {
	sessions *dashboard.Manager
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *dashboard.Manager, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// CreateSession handles POST /v1/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	response.Created(w, r, "/v1/sessions/"+s.ID(), s.View())
}

// GetSession handles GET /v1/sessions/{sessionId}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, s.View())
}

// DeleteSession handles DELETE /v1/sessions/{sessionId}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionId")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// UpdateFilters handles PUT /v1/sessions/{sessionId}/filters.
func (h *SessionHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var input models.FiltersRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	h.dispatch(w, r, dashboard.FiltersChanged{Selection: filter.Selection{
		LocationTypes:  input.LocationTypes,
		MasterSegments: input.MasterSegments,
		Environments:   input.Environments,
	}})
}

// UpdateCamera handles PUT /v1/sessions/{sessionId}/camera.
func (h *SessionHandler) UpdateCamera(w http.ResponseWriter, r *http.Request) {
	var input models.CameraRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	h.dispatch(w, r, dashboard.CameraChanged{Lat: *input.Lat, Lng: *input.Lng, Zoom: *input.Zoom})
}

// ClickMarker handles POST /v1/sessions/{sessionId}/markers/{markerKey}/click.
func (h *SessionHandler) ClickMarker(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := s.ClickMarker(r.Context(), chi.URLParam(r, "markerKey"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// ClickMap handles POST /v1/sessions/{sessionId}/map/click.
func (h *SessionHandler) ClickMap(w http.ResponseWriter, r *http.Request) {
	var input models.MapClickRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	h.dispatch(w, r, dashboard.MapClicked{Lat: *input.Lat, Lng: *input.Lng})
}

// DismissDetail handles DELETE /v1/sessions/{sessionId}/detail.
func (h *SessionHandler) DismissDetail(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dashboard.DetailDismissed{})
}

// UpdateSearch handles PUT /v1/sessions/{sessionId}/search.
func (h *SessionHandler) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	var input models.SearchRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	h.dispatch(w, r, dashboard.SearchTextChanged{Text: input.Text})
}

// SelectSuggestion handles POST /v1/sessions/{sessionId}/search/select.
func (h *SessionHandler) SelectSuggestion(w http.ResponseWriter, r *http.Request) {
	var input models.SearchSelectRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	h.dispatch(w, r, dashboard.SuggestionChosen{Suggestion: places.Suggestion{
		PlaceID:     input.PlaceID,
		Description: input.Description,
	}})
}

// UpdateDraft handles PATCH /v1/sessions/{sessionId}/prediction/draft.
// Either every field is applied or none is.
func (h *SessionHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var input models.DraftUpdateRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	var rejected []models.FieldError
	code := models.CodeReadOnlyField
	for name := range input.Fields {
		switch prediction.Editable(prediction.Field(name)) {
		case prediction.ErrUnknownField:
			code = models.CodeUnknownField
			rejected = append(rejected, models.FieldError{Field: name, Message: "unknown field", Code: string(models.CodeUnknownField)})
		case prediction.ErrReadOnlyField:
			rejected = append(rejected, models.FieldError{Field: name, Message: "is read-only", Code: string(models.CodeReadOnlyField)})
		}
	}
	if len(rejected) > 0 {
		response.BadRequest(w, r, code, "the draft update contains fields that cannot be edited", rejected)
		return
	}

	values := make(map[prediction.Field]string, len(input.Fields))
	for name, value := range input.Fields {
		values[prediction.Field(name)] = value
	}
	view, err := s.Dispatch(r.Context(), dashboard.FieldsChanged{Values: values})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// SubmitPrediction handles POST /v1/sessions/{sessionId}/prediction/submit.
// A scoring failure is part of the returned view, not an error response.
func (h *SessionHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dashboard.PredictionSubmitted{})
}

// DismissPrediction handles DELETE /v1/sessions/{sessionId}/prediction.
func (h *SessionHandler) DismissPrediction(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, dashboard.PredictionDismissed{})
}

func (h *SessionHandler) dispatch(w http.ResponseWriter, r *http.Request, ev dashboard.Event) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := s.Dispatch(r.Context(), ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*dashboard.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return s, true
}
