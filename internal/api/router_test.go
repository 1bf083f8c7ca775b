package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar/internal/api"
	"github.com/storeradar/radar/internal/api/middleware"
	"github.com/storeradar/radar/internal/api/models"
	"github.com/storeradar/radar/internal/dashboard"
	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/places/google"
	"github.com/storeradar/radar/internal/prediction"
	"github.com/storeradar/radar/internal/prediction/scoring"
	"github.com/storeradar/radar/internal/provider/resilience"
)

type placeProvider struct{}

func (placeProvider) Autocomplete(context.Context, string) ([]places.Suggestion, error) {
	return []places.Suggestion{{PlaceID: "pl_1", Description: "Parque Fundidora, Monterrey"}}, nil
}

func (placeProvider) Resolve(_ context.Context, placeID string) (*places.Place, error) {
	if placeID != "pl_1" {
		return nil, places.ErrNoResults
	}
	return &places.Place{PlaceID: placeID, Lat: 25.6785, Lng: -100.2843}, nil
}

func (placeProvider) Name() string { return "fake-places" }

type testEnv struct {
	router       http.Handler
	registry     *resilience.Registry
	scoringCalls atomic.Int32
	lastRequest  atomic.Value
}

type envOptions struct {
	scoring     http.HandlerFunc
	configError error
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	env := &testEnv{}
	logger := zerolog.New(io.Discard)

	store := dataset.NewStore(logger)
	store.Replace([]dataset.Point{
		{StoreID: "A", Location: dataset.NewLocation(25.651449, -100.289411), LocationType: "UT_DENSIDAD", Environment: "Hogar", Weight: 82.7},
		{StoreID: "B", Location: dataset.NewLocation(25.652, -100.290), LocationType: "UT_CARRETERA_GAS", Weight: 40},
		{StoreID: "C", Location: dataset.NewLocation(25.650, -100.288), LocationType: "UT_DENSIDAD", MasterSegment: "Oficinistas", Weight: 10},
	})

	handler := opts.scoring
	if handler == nil {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"prob_rentable": 0.82, "rentable": true}`))
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.scoringCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		env.lastRequest.Store(string(body))
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	registry := resilience.NewRegistry()
	env.registry = registry
	clientCfg := resilience.SingleShotClientConfig(scoring.ProviderName, 0)
	clientCfg.Registry = registry
	scorer := scoring.NewClient(scoring.ClientConfig{
		BaseURL:    srv.URL,
		HTTPClient: resilience.NewClient(clientCfg),
		Logger:     logger,
	})

	sessions := dashboard.NewManager(dashboard.ManagerConfig{
		Session: dashboard.SessionConfig{
			Dataset: store,
			Scorer:  scorer,
			Places:  places.NewService(places.ServiceConfig{Provider: placeProvider{}, Logger: logger}),
		},
		Logger: logger,
	})

	env.router = api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2026-01-01T00:00:00Z",
		Logger:      logger,
		Sessions:    sessions,
		Dataset:     store,
		Registry:    registry,
		ConfigError: opts.configError,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.10:4000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createSession(t *testing.T) dashboard.View {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeView(t, w)
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) dashboard.View {
	t.Helper()
	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		w := env.do(t, http.MethodGet, "/v1/ops/ready", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, envOptions{configError: errors.New("MAPS_API_KEY is not set")})
		w := env.do(t, http.MethodGet, "/v1/ops/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var health models.Health
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
		assert.Equal(t, models.HealthStatusFail, health.Status)
		assert.Equal(t, "MAPS_API_KEY is not set", health.Details["config"])
	})
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/v1/ops/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)

	names := make([]string, 0, len(status.Subsystems))
	for _, s := range status.Subsystems {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"dataset", "sessions", "config"}, names)

	assert.True(t, status.Dataset.Loaded)
	assert.Equal(t, uint64(1), status.Dataset.Version)
	assert.Equal(t, 3, status.Dataset.Points)
	assert.NotNil(t, status.Dataset.LoadedAt)
	assert.Equal(t, 0, status.Sessions.Active)

	require.Len(t, status.Providers, 1)
	assert.Equal(t, scoring.ProviderName, status.Providers[0].Provider)
	assert.Equal(t, "closed", status.Providers[0].Circuit)
	assert.Zero(t, status.Providers[0].Trips)
}

func TestRouter_SystemStatusHidesProviderCredentials(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	httpCfg := resilience.DefaultClientConfig(google.ProviderName)
	httpCfg.DisableRetries = true
	httpCfg.Registry = env.registry
	client := google.NewClient(google.ClientConfig{
		APIKey:     "SECRET-KEY-123",
		BaseURL:    closed.URL,
		HTTPClient: resilience.NewClient(httpCfg),
	})
	_, err := client.Autocomplete(context.Background(), "monterrey")
	require.Error(t, err)

	w := env.do(t, http.MethodGet, "/v1/ops/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRET-KEY-123")

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	var found bool
	for _, p := range status.Providers {
		if p.Provider == google.ProviderName {
			found = true
			require.NotNil(t, p.Message)
			assert.Contains(t, *p.Message, "key=xxxxx")
		}
	}
	assert.True(t, found)
}

func TestRouter_MissingMapsKeyBlocksDashboard(t *testing.T) {
	env := newTestEnv(t, envOptions{configError: errors.New("MAPS_API_KEY is not set")})

	w := env.do(t, http.MethodPost, "/v1/sessions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, models.ProblemTypeNotConfigured, p.Type)
	assert.Equal(t, middleware.MissingConfigDetail, p.Detail)
	assert.Equal(t, models.CodeMapsKeyMissing, p.Code)

	w = env.do(t, http.MethodGet, "/v1/ops/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CreateSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	v := decodeView(t, w)

	assert.True(t, strings.HasPrefix(v.SessionID, "ses_"))
	assert.Equal(t, "/v1/sessions/"+v.SessionID, w.Header().Get("Location"))
	assert.InDelta(t, 25.651449, v.Camera.Center.Lat, 1e-9)
	assert.InDelta(t, -100.289411, v.Camera.Center.Lng, 1e-9)
	assert.InDelta(t, 15, v.Camera.Zoom, 1e-9)
	assert.True(t, v.Camera.MarkersVisible)
	assert.Len(t, v.Markers, 3)
	assert.Equal(t, 3, v.Dataset.Total)

	require.NotNil(t, v.Heatmap)
	assert.InDelta(t, 24, v.Heatmap.Radius, 1e-9)
	require.Len(t, v.Heatmap.Samples, 3)
	assert.InDelta(t, 100-82.7, v.Heatmap.Samples[0].Weight, 1e-9)

	assert.Nil(t, v.Detail)
	assert.Nil(t, v.Prediction)
	assert.NotNil(t, v.Search.Suggestions)

	w = env.do(t, http.MethodGet, "/v1/sessions/"+v.SessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_FiltersAndZoom(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	w := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/filters", models.FiltersRequest{
		LocationTypes: []string{"UT_DENSIDAD", "UT_DENSIDAD"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, 2, v.Dataset.Filtered)
	assert.Equal(t, []string{"UT_DENSIDAD"}, v.Filters.LocationTypes)
	assert.Len(t, v.Markers, 2)
	require.NotNil(t, v.Heatmap)
	assert.Len(t, v.Heatmap.Samples, 2)

	lat, lng, zoom := 25.65, -100.29, 12.0
	w = env.do(t, http.MethodPut, "/v1/sessions/"+id+"/camera", models.CameraRequest{Lat: &lat, Lng: &lng, Zoom: &zoom})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.False(t, v.Camera.MarkersVisible)
	assert.Empty(t, v.Markers)
	assert.InDelta(t, 40*12*0.6/15, v.Heatmap.Radius, 1e-9)

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/markers/A/click", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MarkerClickSuppressesPrediction(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	w := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/markers/C/click", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	require.NotNil(t, v.Detail)
	assert.Equal(t, "C", v.Detail.StoreID)
	assert.Equal(t, "Oficinistas", v.Detail.MasterSegment)
	assert.Equal(t, dashboard.Placeholder, v.Detail.Environment)
	assert.Equal(t, "25.65, -100.288", v.Detail.Coordinates)
	assert.Equal(t, 10, v.Detail.Compliance)

	lat, lng := 25.650, -100.288
	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", models.MapClickRequest{Lat: &lat, Lng: &lng})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Nil(t, v.Prediction, "the click propagated from the marker must not open a prediction")
	assert.NotNil(t, v.Detail)

	w = env.do(t, http.MethodDelete, "/v1/sessions/"+id+"/detail", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeView(t, w).Detail)
}

func TestRouter_PredictionSuccess(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	lat, lng := 25.66, -100.31
	w := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", models.MapClickRequest{Lat: &lat, Lng: &lng})
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	require.NotNil(t, v.Prediction)
	assert.Equal(t, prediction.PhaseEditing, v.Prediction.Phase)
	assert.Equal(t, "25.66", v.Prediction.Fields["LATITUD_NUM"])
	assert.Equal(t, "-100.31", v.Prediction.Fields["LONGITUD_NUM"])
	assert.Equal(t, "", v.Prediction.Fields["NIVELSOCIOECONOMICO_DES"])
	assert.Equal(t, "Predecir", v.Prediction.SubmitLabel)

	w = env.do(t, http.MethodPatch, "/v1/sessions/"+id+"/prediction/draft", models.DraftUpdateRequest{Fields: map[string]string{
		"PLAZA_CVE":               "3",
		"NIVELSOCIOECONOMICO_DES": "AB",
		"ENTORNO_DES":             "Hogar",
		"MTS2VENTAS_NUM":          "120.5",
		"SEGMENTO_MAESTRO_DESC":   "Oficinistas",
		"LID_UBICACION_TIENDA":    "UT_DENSIDAD",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/prediction/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v = decodeView(t, w)
	require.NotNil(t, v.Prediction)
	assert.Equal(t, prediction.PhaseSuccess, v.Prediction.Phase)
	require.NotNil(t, v.Prediction.Result)
	assert.Equal(t, "82.00%", v.Prediction.Result.ProbabilityText)
	assert.Equal(t, "Sí", v.Prediction.Result.VerdictText)
	assert.False(t, v.Prediction.Loading)

	assert.Equal(t, int32(1), env.scoringCalls.Load())
	assert.JSONEq(t, `{
		"TIENDA_ID": 12,
		"PLAZA_CVE": 3,
		"NIVELSOCIOECONOMICO_DES": "AB",
		"ENTORNO_DES": "Hogar",
		"MTS2VENTAS_NUM": 120.5,
		"PUERTASREFRIG_NUM": null,
		"CAJONESESTACIONAMIENTO_NUM": null,
		"LATITUD_NUM": 25.66,
		"LONGITUD_NUM": -100.31,
		"SEGMENTO_MAESTRO_DESC": "Oficinistas",
		"LID_UBICACION_TIENDA": "UT_DENSIDAD",
		"DATASET": "LIVE"
	}`, env.lastRequest.Load().(string))

	w = env.do(t, http.MethodDelete, "/v1/sessions/"+id+"/prediction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeView(t, w).Prediction)
}

func TestRouter_PredictionFailureIsViewState(t *testing.T) {
	env := newTestEnv(t, envOptions{scoring: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("bad input"))
	}})
	id := env.createSession(t).SessionID

	lat, lng := 25.66, -100.31
	env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", models.MapClickRequest{Lat: &lat, Lng: &lng})
	env.do(t, http.MethodPatch, "/v1/sessions/"+id+"/prediction/draft", models.DraftUpdateRequest{Fields: map[string]string{
		"PLAZA_CVE":               "1",
		"NIVELSOCIOECONOMICO_DES": "C",
		"ENTORNO_DES":             "Base",
		"SEGMENTO_MAESTRO_DESC":   "NA",
		"LID_UBICACION_TIENDA":    "UT_CARRETERA_GAS",
	}})

	w := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/prediction/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	require.NotNil(t, v.Prediction)
	assert.Equal(t, prediction.PhaseFailed, v.Prediction.Phase)
	assert.Equal(t, "bad input", v.Prediction.Error)
	assert.Equal(t, "C", v.Prediction.Fields["NIVELSOCIOECONOMICO_DES"])
	assert.Equal(t, int32(1), env.scoringCalls.Load(), "a submission is sent exactly once")
}

func TestRouter_RejectedPredictionsCanBeResubmitted(t *testing.T) {
	env := newTestEnv(t, envOptions{scoring: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("bad input"))
	}})
	id := env.createSession(t).SessionID

	lat, lng := 25.66, -100.31
	env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", models.MapClickRequest{Lat: &lat, Lng: &lng})
	env.do(t, http.MethodPatch, "/v1/sessions/"+id+"/prediction/draft", models.DraftUpdateRequest{Fields: map[string]string{
		"PLAZA_CVE":               "1",
		"NIVELSOCIOECONOMICO_DES": "C",
		"ENTORNO_DES":             "Base",
		"SEGMENTO_MAESTRO_DESC":   "NA",
		"LID_UBICACION_TIENDA":    "UT_CARRETERA_GAS",
	}})

	for i := 1; i <= 5; i++ {
		w := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/prediction/submit", nil)
		require.Equal(t, http.StatusOK, w.Code)
		v := decodeView(t, w)
		require.NotNil(t, v.Prediction)
		assert.Equal(t, "bad input", v.Prediction.Error)
		assert.Equal(t, int32(i), env.scoringCalls.Load())
	}

	w := env.do(t, http.MethodGet, "/v1/ops/status", nil)
	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.Providers, 1)
	assert.Equal(t, "closed", status.Providers[0].Circuit)
}

func TestRouter_PredictionErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	w := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/prediction/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	noDraft := decodeProblem(t, w)
	assert.Equal(t, prediction.ErrNoDraft.Error(), noDraft.Detail)
	assert.Equal(t, models.CodeNoDraft, noDraft.Code)

	lat, lng := 25.66, -100.31
	env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", models.MapClickRequest{Lat: &lat, Lng: &lng})

	w = env.do(t, http.MethodPatch, "/v1/sessions/"+id+"/prediction/draft", models.DraftUpdateRequest{Fields: map[string]string{
		"LATITUD_NUM": "1",
		"TIENDA_ID":   "7",
		"ENTORNO_DES": "Hogar",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, models.CodeUnknownField, p.Code)
	codes := map[string]string{}
	for _, fe := range p.Errors {
		codes[fe.Field] = fe.Code
	}
	assert.Equal(t, map[string]string{"LATITUD_NUM": "READ_ONLY_FIELD", "TIENDA_ID": "UNKNOWN_FIELD"}, codes)

	w = env.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	assert.Equal(t, "", decodeView(t, w).Prediction.Fields["ENTORNO_DES"], "a rejected update applies nothing")

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/prediction/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p = decodeProblem(t, w)
	assert.NotEmpty(t, p.Errors)
	assert.Equal(t, int32(0), env.scoringCalls.Load())
}

func TestRouter_SearchSelect(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	w := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/search", models.SearchRequest{Text: "Pa"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeView(t, w).Search.Suggestions)

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/search/select", models.SearchSelectRequest{
		PlaceID:     "pl_1",
		Description: "Parque Fundidora, Monterrey",
	})
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, "Parque Fundidora, Monterrey", v.Search.Text)
	assert.InDelta(t, 25.6785, v.Camera.Center.Lat, 1e-9)
	assert.InDelta(t, 17, v.Camera.Zoom, 1e-9)
	require.NotNil(t, v.Camera.Pin)
	assert.InDelta(t, -100.2843, v.Camera.Pin.Lng, 1e-9)

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/search/select", models.SearchSelectRequest{PlaceID: "unknown"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 25.6785, decodeView(t, w).Camera.Center.Lat, 1e-9, "a failed resolution leaves the camera")
}

func TestRouter_RequestValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	lat, lng, zoom := 100.0, -100.0, 12.0
	w := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/camera", models.CameraRequest{Lat: &lat, Lng: &lng, Zoom: &zoom})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p := decodeProblem(t, w)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
	assert.Equal(t, "LTE", p.Errors[0].Code)

	w = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/map/click", map[string]float64{"lat": 25})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p = decodeProblem(t, w)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lng", p.Errors[0].Field)
	assert.Equal(t, "REQUIRED", p.Errors[0].Code)

	req := httptest.NewRequest(http.MethodPut, "/v1/sessions/"+id+"/search", strings.NewReader("text=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/v1/sessions/"+id+"/search", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	id := env.createSession(t).SessionID

	w := env.do(t, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ProblemTypeNotFound, decodeProblem(t, w).Type)

	w = env.do(t, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Enums(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/v1/metadata/enums", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var enums models.Enums
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enums))
	assert.Len(t, enums.LocationTypes, 5)
	assert.Equal(t, models.Option{Value: "UT_DENSIDAD", Label: "Densidad"}, enums.LocationTypes[1])
	assert.Len(t, enums.Prediction.LocationTypes, 3)
	assert.Len(t, enums.Prediction.PlazaKeys, 6)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
