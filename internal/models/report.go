package models

import "time"

// StageName identifies one pass of the loader.
type StageName string

const (
	StageReset    StageName = "reset"
	StageClasses  StageName = "classes"
	StageSubjects StageName = "subjects"
	StageStudents StageName = "students"
	StageGrades   StageName = "grades"
)

// SchemaReport summarises the roster column check.
type SchemaReport struct {
	Expected []string `json:"expected"`
	Missing  []string `json:"missing,omitempty"`
	Extra    []string `json:"extra,omitempty"`
}

// StageReport records the outcome of a single stage.
type StageReport struct {
	Stage     StageName     `json:"stage"`
	Rows      int           `json:"rows"`
	Duration  time.Duration `json:"duration"`
	Committed bool          `json:"committed"`
	Error     string        `json:"error,omitempty"`
}

// RunReport describes a loader run, successful or not.
type RunReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	DryRun     bool          `json:"dry_run"`
	Atomic     bool          `json:"atomic"`
	Classes    int           `json:"classes"`
	RosterRows int           `json:"roster_rows"`
	Schema     *SchemaReport `json:"schema,omitempty"`
	Stages     []StageReport `json:"stages"`
	Error      string        `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without error.
func (r *RunReport) Succeeded() bool {
	return r != nil && r.Error == ""
}

// Stage returns the report for name, if the stage ran.
func (r *RunReport) Stage(name StageName) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}
