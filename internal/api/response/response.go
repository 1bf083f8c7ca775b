// Package response writes JSON bodies and problem documents for the RADAR API.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/storeradar/radar/internal/api/middleware"
	"github.com/storeradar/radar/internal/api/models"
)

// JSON writes data as JSON with the given status. A nil data writes no body.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	echoRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 with a Location header pointing at the new resource.
func Created(w http.ResponseWriter, r *http.Request, location string, data interface{}) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	echoRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Error writes problem for the current request, filling in the trace id and
// instance when they are unset.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	if problem.TraceID == "" {
		problem.TraceID = middleware.GetRequestID(r.Context())
	}
	if problem.Instance == "" {
		problem.Instance = r.URL.Path
	}
	problem.Write(w)
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, code models.ProblemCode, detail string, errors []models.FieldError) {
	Error(w, r, models.KindValidation.New("", detail).WithCode(code).WithErrors(errors))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, code models.ProblemCode, detail string) {
	Error(w, r, models.KindNotFound.New("", detail).WithCode(code))
}

// Conflict writes a 409 problem for a request the session state cannot accept.
func Conflict(w http.ResponseWriter, r *http.Request, code models.ProblemCode, detail string) {
	Error(w, r, models.KindConflict.New("", detail).WithCode(code))
}

// InternalError writes a 500 problem.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.KindInternal.New("", detail).WithCode(models.CodeInternal))
}

func echoRequestID(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set(middleware.RequestIDHeader, id)
	}
}
