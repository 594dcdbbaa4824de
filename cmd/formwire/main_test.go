package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/formwire/di/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "testing",
		LogLevel: "debug",
		Metrics:  true,
		Forms:    config.FormsConfig{Required: []string{"email"}},
	}
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig()

	logger, err := newLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = newLogger(cfg)
	require.Error(t, err)
}

func TestValidateForm(t *testing.T) {
	reg := prometheus.NewRegistry()

	app, err := bootstrap(testConfig(), zaptest.NewLogger(t), reg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Dispose()) })

	router := newRouter(app, reg, true)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/forms/signup/validate", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"name":"Ada","email":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res validateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Equal(t, "signup", res.Form)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "email", res.Errors[0].Field)
	require.Equal(t, []string{"email", "name"}, res.Touched)

	rec = post(`{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res = validateResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.True(t, res.Valid)
	require.Empty(t, res.Errors)
	require.Equal(t, []string{"email"}, res.Touched, "each request gets its own tracker")

	rec = post(`not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "di_resolutions_total")
}

func TestMetricsRouteDisabled(t *testing.T) {
	reg := prometheus.NewRegistry()

	app, err := bootstrap(testConfig(), zaptest.NewLogger(t), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Dispose() })

	rec := httptest.NewRecorder()
	newRouter(app, reg, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBootstrapTwiceOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	app, err := bootstrap(testConfig(), zaptest.NewLogger(t), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Dispose() })

	_, err = bootstrap(testConfig(), zaptest.NewLogger(t), reg)
	require.Error(t, err)
}
