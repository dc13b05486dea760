package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roster-etl/internal/models"
)

func TestRecorderObserveStage(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage(models.StageClasses, 3, 20*time.Millisecond, nil)
	r.ObserveStage(models.StageStudents, 5, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageRows.WithLabelValues("classes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("students")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("classes")))
}

func TestRecorderObserveRun(t *testing.T) {
	r := NewRecorder()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	r.ObserveRun(&models.RunReport{StartedAt: start, FinishedAt: start.Add(2 * time.Second)})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runDuration))
	assert.Equal(t, float64(start.Add(2*time.Second).Unix()), testutil.ToFloat64(r.lastSuccess))

	r.ObserveRun(&models.RunReport{StartedAt: start, FinishedAt: start.Add(time.Hour), Error: "failed"})
	assert.Equal(t, float64(start.Add(2*time.Second).Unix()), testutil.ToFloat64(r.lastSuccess))
}

func TestRecorderCountsCommittedRowsOnly(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(&models.RunReport{
		Stages: []models.StageReport{
			{Stage: models.StageClasses, Rows: 2, Committed: true},
			{Stage: models.StageSubjects, Rows: 4, Committed: true},
			{Stage: models.StageStudents, Rows: 3, Error: "duplicate student"},
		},
		Error: "duplicate student",
	})
	// atomic run whose outer commit failed: stages ran cleanly but nothing was kept
	r.ObserveRun(&models.RunReport{
		Atomic: true,
		Stages: []models.StageReport{{Stage: models.StageClasses, Rows: 7}},
		Error:  "commit load transaction",
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.stageRows.WithLabelValues("classes")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.stageRows.WithLabelValues("subjects")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.stageRows.WithLabelValues("students")))
}

func TestRecorderPush(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder()
	r.ObserveStage(models.StageGrades, 1, time.Millisecond, nil)
	require.NoError(t, r.Push(context.Background(), srv.URL, "roster_etl"))
	assert.Equal(t, "/metrics/job/roster_etl", path)

	assert.NoError(t, r.Push(context.Background(), "", "roster_etl"))
}
