package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests that matched no route, such as 404s.
const unmatchedRoute = "unmatched"

// routePattern returns the chi route pattern of a served request, e.g.
// /v1/sessions/{sessionId}/camera. Session ids never reach metric labels or
// span names this way. Only valid after the router has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// sessionID returns the session path parameter, if any.
func sessionID(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.URLParam("sessionId")
	}
	return ""
}
