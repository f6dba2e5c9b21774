package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

func TestMetricsRouter_ServesRegistry(t *testing.T) {
	m := pipeline.NewMetrics("blogflow")
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := pipeline.NewClient(pipeline.Options{
		Endpoints: map[pipeline.Stage]string{pipeline.StageTitles: srv.URL},
		Metrics:   m,
	})
	_, err := client.Call(context.Background(), pipeline.StageTitles, map[string]string{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	metricsRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blogflow_stage_calls_total")
	assert.Contains(t, rec.Body.String(), `stage="titles"`)
}

func TestMetricsRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	metricsRouter(pipeline.NewMetrics("blogflow")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeMetrics_Shutdown(t *testing.T) {
	shutdown, err := serveMetrics("127.0.0.1:0", pipeline.NewMetrics("blogflow"), zap.NewNop())
	require.NoError(t, err)
	shutdown()
}
