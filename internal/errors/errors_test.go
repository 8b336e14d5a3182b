package errors

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := New(CategoryConfig, SeverityFatal, "bad value")
		assert.Equal(t, "config (fatal): bad value", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := Wrap(cause, CategoryRotation, SeverityError, "rotation pass failed")
		assert.Equal(t, "rotation (error): rotation pass failed: boom", err.Error())
		assert.True(t, stderrors.Is(err, cause))
	})
}

func TestMetricsError_Context(t *testing.T) {
	err := EmptyMetricName("counter")
	require.NotNil(t, err.Context)
	assert.Equal(t, "counter", err.Context["metric_kind"])

	err = DetailLevelConflict("latency", "basic")
	assert.Equal(t, "latency", err.Context["metric"])
	assert.Equal(t, "basic", err.Context["registered_as"])
	assert.True(t, IsCategory(err, CategoryConfig))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryShutdown, GetCategory(ShutdownTimeout("scheduler", nil)))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"config", New(CategoryConfig, SeverityFatal, "x"), http.StatusBadRequest},
		{"validation", ValidationFailed("httpPort", "not a number"), http.StatusBadRequest},
		{"observation", New(CategoryObservation, SeverityWarning, "x"), http.StatusUnprocessableEntity},
		{"lifecycle", StartupFailed("http", nil), http.StatusServiceUnavailable},
		{"publish", PublishFailed("metrics.dump", nil), http.StatusBadGateway},
		{"plain", stderrors.New("x"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, a.StatusCodeFor(tc.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	a.WriteErrorResponse(rec, req, DetailLevelConflict("latency", "basic"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "already registered at the other detail level")
	assert.Contains(t, rec.Body.String(), `"code":"config"`)
}
