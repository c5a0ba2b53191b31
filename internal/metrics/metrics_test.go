package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

func finishedRun(found, created, updated, skipped int, err error) *storage.Run {
	start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	run := storage.NewRun(start)
	run.Found = found
	run.Created = created
	run.Updated = updated
	run.Skipped = skipped
	run.Finish(start.Add(3*time.Second), err)
	return run
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(finishedRun(5, 3, 1, 1, nil))
	r.ObserveRun(finishedRun(2, 0, 2, 0, nil))
	r.ObserveRun(finishedRun(0, 0, 0, 0, errors.New("boom")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.fixtures))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.writes.WithLabelValues("created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.writes.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("skipped")))
	assert.Equal(t, float64(time.Date(2026, 1, 5, 12, 0, 3, 0, time.UTC).Unix()), testutil.ToFloat64(r.lastSuccessTS))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_ObserveSource(t *testing.T) {
	r := NewRecorder()

	r.ObserveSource(SourceOK)
	r.ObserveSource(SourceOK)
	r.ObserveSource(SourceNotPublished)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sources.WithLabelValues(SourceOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sources.WithLabelValues(SourceNotPublished)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.sources.WithLabelValues(SourceFailed)))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveSource(SourceOK)
		r.ObserveRun(finishedRun(1, 1, 0, 0, nil))
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(finishedRun(1, 1, 0, 0, nil))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fixture_sync_runs_total{status="success"} 1`)
	assert.Contains(t, rec.Body.String(), "fixture_sync_run_duration_seconds_bucket")
}
