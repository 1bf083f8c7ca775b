package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.KindValidation.New("req_test123", "the prediction form has invalid fields").
		WithCode(models.CodeInvalidForm).
		WithInstance("/v1/sessions/ses_1/prediction/submit").
		WithErrors([]models.FieldError{
			{Field: "MTS2VENTAS_NUM", Message: "must be a number", Code: "NOT_NUMERIC"},
			{Field: "NSE", Message: "is required", Code: "REQUIRED"},
		})

	assert.Equal(t, "req_test123", p.TraceID)
	assert.Equal(t, models.CodeInvalidForm, p.Code)
	assert.Equal(t, "/v1/sessions/ses_1/prediction/submit", p.Instance)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "NOT_NUMERIC", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.KindConflict.New("req_test123", "a submission is already in flight").
		WithCode(models.CodeSubmitInFlight).
		WithInstance("/v1/sessions/ses_1/prediction/submit")

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.ProblemTypeConflict, result.Type)
	assert.Equal(t, models.CodeSubmitInFlight, result.Code)
	assert.Equal(t, "/v1/sessions/ses_1/prediction/submit", result.Instance)
}

func TestProblem_WriteWithoutTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.KindInternal.New("", "boom").Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("X-Request-Id"))
}

func TestKinds(t *testing.T) {
	tests := []struct {
		kind       models.Kind
		wantType   string
		wantStatus int
	}{
		{models.KindValidation, models.ProblemTypeValidation, http.StatusBadRequest},
		{models.KindNotFound, models.ProblemTypeNotFound, http.StatusNotFound},
		{models.KindConflict, models.ProblemTypeConflict, http.StatusConflict},
		{models.KindTooManyRequests, models.ProblemTypeTooManyRequests, http.StatusTooManyRequests},
		{models.KindInternal, models.ProblemTypeInternal, http.StatusInternalServerError},
		{models.KindUnavailable, models.ProblemTypeUnavailable, http.StatusServiceUnavailable},
		{models.KindNotConfigured, models.ProblemTypeNotConfigured, http.StatusServiceUnavailable},
		{models.KindTLSRequired, models.ProblemTypeTLSRequired, http.StatusForbidden},
		{models.KindUnsupportedMediaType, models.ProblemTypeUnsupportedMediaType, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Title, func(t *testing.T) {
			p := tt.kind.New("req_1", "d")
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, "d", p.Detail)
			assert.NotEmpty(t, p.Title)
		})
	}
}

func TestTimestamp_JSON(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	ts := models.Timestamp(time.Date(2026, 3, 1, 8, 30, 0, 0, loc))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-03-01T14:30:00Z"`, string(data))

	var back models.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Time().Equal(back.Time()))

	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
	assert.Nil(t, models.NewTimestamp(time.Time{}))
}

func TestHealthStatus_Worse(t *testing.T) {
	assert.Equal(t, models.HealthStatusDegraded, models.HealthStatusOK.Worse(models.HealthStatusDegraded))
	assert.Equal(t, models.HealthStatusFail, models.HealthStatusFail.Worse(models.HealthStatusDegraded))
	assert.Equal(t, models.HealthStatusOK, models.HealthStatusOK.Worse(models.HealthStatusOK))
}
