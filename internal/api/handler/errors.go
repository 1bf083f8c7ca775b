package handler

import (
	"errors"
	"net/http"

	"github.com/storeradar/radar/internal/api/models"
	"github.com/storeradar/radar/internal/api/response"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/prediction"
)

// writeError maps a domain error to a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *prediction.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, r, models.CodeInvalidForm, "the prediction form has invalid fields", verr.Errors)
	case errors.Is(err, dashboard.ErrSessionNotFound):
		response.NotFound(w, r, models.CodeSessionNotFound, "session not found")
	case errors.Is(err, dashboard.ErrMarkerNotFound):
		response.NotFound(w, r, models.CodeMarkerNotFound, "no visible marker for this store")
	case errors.Is(err, prediction.ErrSubmitInFlight):
		response.Conflict(w, r, models.CodeSubmitInFlight, err.Error())
	case errors.Is(err, prediction.ErrNoDraft):
		response.Conflict(w, r, models.CodeNoDraft, err.Error())
	case errors.Is(err, prediction.ErrReadOnlyField):
		response.BadRequest(w, r, models.CodeReadOnlyField, err.Error(), nil)
	case errors.Is(err, prediction.ErrUnknownField):
		response.BadRequest(w, r, models.CodeUnknownField, err.Error(), nil)
	case errors.Is(err, dataset.ErrInvalidCoordinates):
		response.BadRequest(w, r, models.CodeInvalidCoordinates, err.Error(), nil)
	default:
		response.InternalError(w, r, "unexpected error")
	}
}
