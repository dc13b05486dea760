package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roster-etl/internal/models"
	"github.com/noah-isme/roster-etl/pkg/export"
)

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

var runReportHeaders = []string{"stage", "status", "rows", "duration_ms", "committed", "error"}

// ReportService renders run reports and stores them as artifacts.
type ReportService struct {
	storage   reportStorage
	renderer  export.Renderer
	retention time.Duration
	logger    *zap.Logger
}

// NewReportService builds a ReportService. A nil renderer disables Write.
func NewReportService(storage reportStorage, renderer export.Renderer, retention time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{storage: storage, renderer: renderer, retention: retention, logger: logger}
}

// Write renders the report and returns the stored path, or "" when reports are disabled.
func (s *ReportService) Write(report *models.RunReport) (string, error) {
	if s.renderer == nil || report == nil {
		return "", nil
	}

	payload, err := s.renderer.Render(BuildRunDataset(report))
	if err != nil {
		return "", fmt.Errorf("render run report: %w", err)
	}

	path, err := s.storage.Save(reportFilename(report, s.renderer.Extension()), payload)
	if err != nil {
		return "", err
	}

	if deleted, err := s.storage.CleanupOlderThan(s.retention); err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
	} else if len(deleted) > 0 {
		s.logger.Info("old reports removed", zap.Int("count", len(deleted)))
	}

	return path, nil
}

// BuildRunDataset lays out one row per executed stage. A run that failed
// before any stage started gets a single "preflight" row carrying the error.
func BuildRunDataset(report *models.RunReport) export.Dataset {
	status := "ok"
	if !report.Succeeded() {
		status = "failed"
	}
	if report.DryRun {
		status += " (dry run)"
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Roster load %s: %s", report.RunID, status),
		Headers: runReportHeaders,
		Rows:    make([][]string, 0, len(report.Stages)+1),
	}

	for _, st := range report.Stages {
		stageStatus := "ok"
		if st.Error != "" {
			stageStatus = "failed"
		}
		data.Rows = append(data.Rows, []string{
			string(st.Stage),
			stageStatus,
			strconv.Itoa(st.Rows),
			strconv.FormatInt(st.Duration.Milliseconds(), 10),
			strconv.FormatBool(st.Committed),
			st.Error,
		})
	}

	if len(report.Stages) == 0 && report.Error != "" {
		data.Rows = append(data.Rows, []string{"preflight", "failed", "0", "0", "false", report.Error})
	}

	return data
}

func reportFilename(report *models.RunReport, ext string) string {
	ts := report.StartedAt.UTC().Format("20060102_150405")
	id := report.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		id = "na"
	}
	return fmt.Sprintf("run_%s_%s%s", ts, strings.ToLower(id), ext)
}
