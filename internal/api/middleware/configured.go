package middleware

import (
	"net/http"

	"github.com/storeradar/radar/internal/api/models"
)

// MissingConfigDetail is shown to the user when the service started without
// its map credential.
const MissingConfigDetail = "Error: Google Maps API key is not set. Set MAPS_API_KEY and restart the service."

// RequireConfigured returns middleware that answers every request with a
// 503 problem while configErr is non-nil.
func RequireConfigured(configErr error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if configErr == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			models.KindNotConfigured.New(GetRequestID(r.Context()), MissingConfigDetail).
				WithCode(models.CodeMapsKeyMissing).
				WithInstance(r.URL.Path).
				Write(w)
		})
	}
}
