package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC7807 error body. It is always written with
// Content-Type: application/problem+json.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"traceId"`

	// Code is a stable machine-readable reason. Clients branch on it
	// rather than on Detail, which is for humans.
	Code ProblemCode `json:"code,omitempty"`

	// Errors lists per-field failures of a form or request body.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is a validation failure on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation           = "https://radar.storeradar.mx/problems/validation-error"
	ProblemTypeNotFound             = "https://radar.storeradar.mx/problems/not-found"
	ProblemTypeConflict             = "https://radar.storeradar.mx/problems/conflict"
	ProblemTypeTooManyRequests      = "https://radar.storeradar.mx/problems/too-many-requests"
	ProblemTypeInternal             = "https://radar.storeradar.mx/problems/internal-error"
	ProblemTypeUnavailable          = "https://radar.storeradar.mx/problems/service-unavailable"
	ProblemTypeTLSRequired          = "https://radar.storeradar.mx/problems/tls-required"
	ProblemTypeNotConfigured        = "https://radar.storeradar.mx/problems/not-configured"
	ProblemTypeUnsupportedMediaType = "https://radar.storeradar.mx/problems/unsupported-media-type"
)

// ProblemCode identifies why a dashboard request was rejected.
type ProblemCode string

const (
	CodeInvalidBody        ProblemCode = "INVALID_BODY"
	CodeInvalidForm        ProblemCode = "INVALID_FORM"
	CodeReadOnlyField      ProblemCode = "READ_ONLY_FIELD"
	CodeUnknownField       ProblemCode = "UNKNOWN_FIELD"
	CodeInvalidCoordinates ProblemCode = "INVALID_COORDINATES"
	CodeSessionNotFound    ProblemCode = "SESSION_NOT_FOUND"
	CodeMarkerNotFound     ProblemCode = "MARKER_NOT_FOUND"
	CodeSubmitInFlight     ProblemCode = "SUBMIT_IN_FLIGHT"
	CodeNoDraft            ProblemCode = "NO_DRAFT"
	CodeRateLimited        ProblemCode = "RATE_LIMITED"
	CodeMapsKeyMissing     ProblemCode = "MAPS_KEY_MISSING"
	CodeTLSRequired        ProblemCode = "TLS_REQUIRED"
	CodeUnsupportedMedia   ProblemCode = "UNSUPPORTED_MEDIA_TYPE"
	CodeInternal           ProblemCode = "INTERNAL"
)

// Kind is a problem type together with its title and HTTP status.
type Kind struct {
	Type   string
	Title  string
	Status int
}

var (
	KindValidation           = Kind{ProblemTypeValidation, "Validation error", http.StatusBadRequest}
	KindNotFound             = Kind{ProblemTypeNotFound, "Not found", http.StatusNotFound}
	KindConflict             = Kind{ProblemTypeConflict, "Conflict", http.StatusConflict}
	KindTooManyRequests      = Kind{ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests}
	KindInternal             = Kind{ProblemTypeInternal, "Internal server error", http.StatusInternalServerError}
	KindUnavailable          = Kind{ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable}
	KindNotConfigured        = Kind{ProblemTypeNotConfigured, "Service not configured", http.StatusServiceUnavailable}
	KindTLSRequired          = Kind{ProblemTypeTLSRequired, "TLS required", http.StatusForbidden}
	KindUnsupportedMediaType = Kind{ProblemTypeUnsupportedMediaType, "Unsupported media type", http.StatusUnsupportedMediaType}
)

// New builds a problem of this kind.
func (k Kind) New(traceID, detail string) *Problem {
	return &Problem{
		Type:    k.Type,
		Title:   k.Title,
		Status:  k.Status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// WithCode sets the machine-readable reason.
func (p *Problem) WithCode(code ProblemCode) *Problem {
	p.Code = code
	return p
}

// WithInstance sets the request path the problem refers to.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write sends the problem with its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
