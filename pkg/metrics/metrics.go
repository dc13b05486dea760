package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/noah-isme/roster-etl/internal/models"
)

// Recorder collects per-run loader metrics in its own registry so they can be pushed
// to a Pushgateway once the run ends.
type Recorder struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	stageRows     *prometheus.CounterVec
	stageFailures *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
	runDuration   prometheus.Gauge
}

// NewRecorder registers the loader collectors.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_etl_stage_duration_seconds",
		Help:    "Duration of each load stage in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage", "status"})

	stageRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_etl_rows_inserted_total",
		Help: "Rows inserted per committed load stage",
	}, []string{"stage"})

	stageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_etl_stage_failures_total",
		Help: "Failed load stages",
	}, []string{"stage"})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_etl_last_success_timestamp_seconds",
		Help: "Unix time of the last successful load",
	})

	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_etl_run_duration_seconds",
		Help: "Duration of the last load run",
	})

	registry.MustRegister(stageDuration, stageRows, stageFailures, lastSuccess, runDuration)

	return &Recorder{
		registry:      registry,
		stageDuration: stageDuration,
		stageRows:     stageRows,
		stageFailures: stageFailures,
		lastSuccess:   lastSuccess,
		runDuration:   runDuration,
	}
}

// ObserveStage records the outcome of one load stage.
func (r *Recorder) ObserveStage(stage models.StageName, rows int, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		r.stageFailures.WithLabelValues(string(stage)).Inc()
	}
	r.stageDuration.WithLabelValues(string(stage), status).Observe(elapsed.Seconds())
}

// ObserveRun records the end of a run. Inserted rows are counted only for
// committed stages, so rolled back work never shows up in the counter.
func (r *Recorder) ObserveRun(report *models.RunReport) {
	if report == nil {
		return
	}
	for _, st := range report.Stages {
		if st.Committed {
			r.stageRows.WithLabelValues(string(st.Stage)).Add(float64(st.Rows))
		}
	}
	r.runDuration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	if report.Succeeded() && !report.DryRun {
		r.lastSuccess.Set(float64(report.FinishedAt.Unix()))
	}
}

// Push sends the collected metrics to the Pushgateway at url under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
