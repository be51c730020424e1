package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := observability.NewMetrics(reg)

	eng, err := flowstep.New(4, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 3},
		{From: 1, To: 3, Capacity: 2},
		{From: 0, To: 2, Capacity: 1},
		{From: 2, To: 3, Capacity: 4},
	}, flowstep.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.Solve(ctx, 0)
	require.NoError(t, err)
	_, ok := eng.Undo(ctx)
	require.True(t, ok)

	expected := `
# HELP flowstep_steps_total Total number of steps, by kind
# TYPE flowstep_steps_total counter
flowstep_steps_total{kind="augment"} 2
flowstep_steps_total{kind="reset_intermediate"} 2
flowstep_steps_total{kind="scan"} 7
flowstep_steps_total{kind="terminate"} 1
# HELP flowstep_undos_total Total number of undone steps
# TYPE flowstep_undos_total counter
flowstep_undos_total 1
# HELP flowstep_terminations_total Total number of runs that reached a maximum flow
# TYPE flowstep_terminations_total counter
flowstep_terminations_total 1
# HELP flowstep_last_flow_value Flow value after the most recent augmentation
# TYPE flowstep_last_flow_value gauge
flowstep_last_flow_value 3
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"flowstep_steps_total", "flowstep_undos_total", "flowstep_terminations_total", "flowstep_last_flow_value")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "flowstep_augment_amount")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	expected := `
# HELP flowstep_http_requests_total Total number of HTTP requests
# TYPE flowstep_http_requests_total counter
flowstep_http_requests_total{method="GET",route="/sessions/{id}",status="404"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "flowstep_http_requests_total"))
}
