package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	r := New()
	r.RecordRun("hits", 5, 3, time.Unix(1700000000, 0))
	r.RecordRun("no_activity", 2, 0, time.Unix(1700086400, 0))

	assert.Equal(t, float64(1), testutil.ToFloat64(r.runsTotal.WithLabelValues("hits")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.runsTotal.WithLabelValues("no_activity")))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.candidates))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.hits))
	assert.Equal(t, float64(1700086400), testutil.ToFloat64(r.lastRun))
}

func TestRecordFlowFetch(t *testing.T) {
	r := New()
	r.RecordFlowFetch("ok")
	r.RecordFlowFetch("ok")
	r.RecordFlowFetch("transport")

	assert.Equal(t, float64(2), testutil.ToFloat64(r.flowFetches.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.flowFetches.WithLabelValues("transport")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordRun("failed", 0, 0, time.Now())
	r.RecordFlowFetch("ok")
	r.ObserveStage("screen", time.Second)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveStage("market_fetch", 250*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "flipwatch_stage_duration_seconds"))
}
