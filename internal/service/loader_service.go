package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/roster-etl/internal/models"
	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
)

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type classWriter interface {
	CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, class *models.Class) error
}

type subjectWriter interface {
	CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, subject *models.Subject) error
}

type studentWriter interface {
	CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, student *models.Student) error
}

type gradeWriter interface {
	CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, grade *models.Grade) error
}

type tableResetter interface {
	TruncateWithTx(ctx context.Context, tx sqlx.ExecerContext) error
}

// StageObserver receives the outcome of every stage.
type StageObserver interface {
	ObserveStage(stage models.StageName, rows int, elapsed time.Duration, err error)
}

// LoadOptions tunes a single run.
type LoadOptions struct {
	// Atomic wraps every stage in one outer transaction instead of one per stage.
	Atomic bool
	// Reset truncates the target tables before the classes stage.
	Reset bool
	// Strict rejects roster rows referencing unconfigured classes before any write.
	Strict bool
	// DryRun stops after validation and classification.
	DryRun  bool
	Columns models.RosterColumns
}

// LoaderService loads classes, subjects, students and grades in four ordered passes.
type LoaderService struct {
	db        txBeginner
	classes   classWriter
	subjects  subjectWriter
	students  studentWriter
	grades    gradeWriter
	reset     tableResetter
	observer  StageObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// LoaderRepositories groups the writers used by the loader.
type LoaderRepositories struct {
	Classes  classWriter
	Subjects subjectWriter
	Students studentWriter
	Grades   gradeWriter
	Reset    tableResetter
}

// NewLoaderService constructs LoaderService.
func NewLoaderService(db txBeginner, repos LoaderRepositories, observer StageObserver, validate *validator.Validate, logger *zap.Logger) *LoaderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoaderService{
		db:        db,
		classes:   repos.Classes,
		subjects:  repos.Subjects,
		students:  repos.Students,
		grades:    repos.Grades,
		reset:     repos.Reset,
		observer:  observer,
		validator: validate,
		logger:    logger,
	}
}

type stage struct {
	name models.StageName
	run  func(ctx context.Context, tx *sqlx.Tx) (int, error)
}

type plannedClass struct {
	config         models.ClassConfig
	classification models.Classification
}

// Load validates the sources and writes them to the database. The returned report is
// never nil and describes how far the run got, including on failure.
func (s *LoaderService) Load(ctx context.Context, configs []models.ClassConfig, roster *models.Roster, opts LoadOptions) (*models.RunReport, error) {
	report := &models.RunReport{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		DryRun:     opts.DryRun,
		Atomic:     opts.Atomic,
		Classes:    len(configs),
		RosterRows: len(roster.Rows),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID))

	err := s.load(ctx, logger, configs, roster, opts, report)
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		report.Error = err.Error()
		logger.Error("load failed", zap.Error(err))
		return report, err
	}
	logger.Info("load finished",
		zap.Int("classes", report.Classes),
		zap.Int("roster_rows", report.RosterRows),
		zap.Bool("dry_run", report.DryRun),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (s *LoaderService) load(ctx context.Context, logger *zap.Logger, configs []models.ClassConfig, roster *models.Roster, opts LoadOptions, report *models.RunReport) error {
	if err := s.validator.Struct(opts); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrUsage, "invalid load options")
	}

	plan, err := planClasses(configs)
	if err != nil {
		return err
	}

	schema, err := ValidateSchema(configs, opts.Columns.Required(), roster.Columns)
	report.Schema = schema
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrValidation, "roster does not match class configurations")
	}
	if len(schema.Extra) > 0 {
		logger.Info("roster carries extra columns", zap.Strings("columns", schema.Extra))
	}

	if opts.Strict {
		if err := CheckClassCoverage(configs, roster, opts.Columns); err != nil {
			return appErrors.WrapAs(err, appErrors.ErrConsistency, "roster references unconfigured class")
		}
	}

	if opts.DryRun {
		logger.Info("dry run: validation passed, nothing written")
		return nil
	}

	return s.runStages(ctx, logger, s.stages(plan, roster, opts), opts.Atomic, report)
}

// planClasses classifies every configuration before anything is written.
func planClasses(configs []models.ClassConfig) ([]plannedClass, error) {
	seen := make(map[string]struct{}, len(configs))
	plan := make([]plannedClass, 0, len(configs))
	for _, cfg := range configs {
		if _, dup := seen[cfg.Name]; dup {
			return nil, appErrors.WrapAs(&DuplicateClassError{ClassName: cfg.Name}, appErrors.ErrConsistency, "duplicate class configuration")
		}
		seen[cfg.Name] = struct{}{}

		classification, err := Classify(cfg.Name)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrClassification, "cannot classify class")
		}
		plan = append(plan, plannedClass{config: cfg, classification: classification})
	}
	return plan, nil
}

// stages builds the ordered passes. Each pass reads the id maps produced by earlier ones.
func (s *LoaderService) stages(plan []plannedClass, roster *models.Roster, opts LoadOptions) []stage {
	var (
		classIDs   *IDMap[string]
		subjectIDs *IDMap[models.SubjectKey]
		studentIDs *IDMap[string]
	)
	configsByClass := make(map[string]models.ClassConfig, len(plan))
	for _, p := range plan {
		configsByClass[p.config.Name] = p.config
	}

	var stages []stage
	if opts.Reset {
		stages = append(stages, stage{name: models.StageReset, run: func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			if err := s.reset.TruncateWithTx(ctx, tx); err != nil {
				return 0, appErrors.WrapAs(err, appErrors.ErrDatabaseWrite, "reset failed")
			}
			return 0, nil
		}})
	}
	return append(stages,
		stage{name: models.StageClasses, run: func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			var err error
			classIDs, err = s.loadClasses(ctx, tx, plan)
			return classIDs.Len(), err
		}},
		stage{name: models.StageSubjects, run: func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			var err error
			subjectIDs, err = s.loadSubjects(ctx, tx, plan, classIDs)
			return subjectIDs.Len(), err
		}},
		stage{name: models.StageStudents, run: func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			var err error
			studentIDs, err = s.loadStudents(ctx, tx, roster, opts.Columns, classIDs)
			return studentIDs.Len(), err
		}},
		stage{name: models.StageGrades, run: func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			return s.loadGrades(ctx, tx, roster, opts.Columns, configsByClass, studentIDs, subjectIDs)
		}},
	)
}

// runStages commits each stage before starting the next, or commits all of them
// together when atomic is set.
func (s *LoaderService) runStages(ctx context.Context, logger *zap.Logger, stages []stage, atomic bool, report *models.RunReport) error {
	if !atomic {
		for _, st := range stages {
			if err := s.runInTx(ctx, logger, st, report); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrDatabase, "begin load transaction")
	}
	first := len(report.Stages)
	for _, st := range stages {
		if err := s.execute(ctx, logger, tx, st, report); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrDatabaseWrite, "commit load transaction")
	}
	for i := first; i < len(report.Stages); i++ {
		report.Stages[i].Committed = true
	}
	logger.Info("load transaction committed", zap.Int("stages", len(stages)))
	return nil
}

func (s *LoaderService) runInTx(ctx context.Context, logger *zap.Logger, st stage, report *models.RunReport) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrDatabase, fmt.Sprintf("begin %s stage", st.name))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.execute(ctx, logger, tx, st, report); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.WrapAs(err, appErrors.ErrDatabaseWrite, fmt.Sprintf("commit %s stage", st.name))
		last := &report.Stages[len(report.Stages)-1]
		last.Error = err.Error()
		return err
	}
	report.Stages[len(report.Stages)-1].Committed = true
	logger.Info("stage committed", zap.String("stage", string(st.name)))
	return nil
}

func (s *LoaderService) execute(ctx context.Context, logger *zap.Logger, tx *sqlx.Tx, st stage, report *models.RunReport) error {
	logger.Debug("stage started", zap.String("stage", string(st.name)))
	start := time.Now()
	rows, err := st.run(ctx, tx)
	elapsed := time.Since(start)

	result := models.StageReport{Stage: st.name, Rows: rows, Duration: elapsed}
	if err != nil {
		result.Error = err.Error()
	}
	report.Stages = append(report.Stages, result)
	if s.observer != nil {
		s.observer.ObserveStage(st.name, rows, elapsed, err)
	}
	if err != nil {
		logger.Error("stage failed", zap.String("stage", string(st.name)), zap.Int("rows", rows), zap.Error(err))
		return err
	}
	logger.Info("stage finished", zap.String("stage", string(st.name)), zap.Int("rows", rows), zap.Duration("duration", elapsed))
	return nil
}

func (s *LoaderService) loadClasses(ctx context.Context, tx *sqlx.Tx, plan []plannedClass) (*IDMap[string], error) {
	ids := NewIDMap[string]()
	for _, p := range plan {
		class := &models.Class{
			Name:       p.config.Name,
			Shift:      p.classification.Shift,
			GradeLevel: p.classification.GradeLevel.String(),
		}
		if err := s.classes.CreateWithTx(ctx, tx, class); err != nil {
			return ids, appErrors.WrapAs(&InsertError{Stage: models.StageClasses, Key: class.Name, Err: err}, appErrors.ErrDatabaseWrite, "class insert failed")
		}
		ids.Put(class.Name, class.ID)
	}
	return ids, nil
}

func (s *LoaderService) loadSubjects(ctx context.Context, tx *sqlx.Tx, plan []plannedClass, classIDs *IDMap[string]) (*IDMap[models.SubjectKey], error) {
	ids := NewIDMap[models.SubjectKey]()
	for _, p := range plan {
		classID, ok := classIDs.Get(p.config.Name)
		if !ok {
			return ids, appErrors.WrapAs(&UnknownClassError{ClassName: p.config.Name}, appErrors.ErrConsistency, "subject references unloaded class")
		}
		for _, name := range p.config.Subjects {
			key := models.SubjectKey{Class: p.config.Name, Subject: name}
			if _, dup := ids.Get(key); dup {
				return ids, appErrors.WrapAs(&DuplicateSubjectError{Key: key}, appErrors.ErrConsistency, "duplicate subject")
			}
			subject := &models.Subject{Name: name, ClassID: classID}
			if err := s.subjects.CreateWithTx(ctx, tx, subject); err != nil {
				return ids, appErrors.WrapAs(&InsertError{Stage: models.StageSubjects, Key: key.String(), Err: err}, appErrors.ErrDatabaseWrite, "subject insert failed")
			}
			ids.Put(key, subject.ID)
		}
	}
	return ids, nil
}

func (s *LoaderService) loadStudents(ctx context.Context, tx *sqlx.Tx, roster *models.Roster, cols models.RosterColumns, classIDs *IDMap[string]) (*IDMap[string], error) {
	ids := NewIDMap[string]()
	firstLine := make(map[string]int, len(roster.Rows))
	for _, row := range roster.Rows {
		student, className, err := buildStudent(row, cols)
		if err != nil {
			return ids, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid student row")
		}
		classID, ok := classIDs.Get(className)
		if !ok {
			return ids, appErrors.WrapAs(&UnknownClassError{ClassName: className, Line: row.Line, Registration: student.Registration}, appErrors.ErrConsistency, "student references unconfigured class")
		}
		if line, dup := firstLine[student.Registration]; dup {
			return ids, appErrors.WrapAs(&DuplicateStudentError{Registration: student.Registration, Line: row.Line, FirstLine: line}, appErrors.ErrConsistency, "duplicate student")
		}
		firstLine[student.Registration] = row.Line

		student.ClassID = classID
		if err := s.students.CreateWithTx(ctx, tx, student); err != nil {
			return ids, appErrors.WrapAs(&InsertError{Stage: models.StageStudents, Key: "matricula " + student.Registration, Err: err}, appErrors.ErrDatabaseWrite, "student insert failed")
		}
		ids.Put(student.Registration, student.ID)
	}
	return ids, nil
}

func (s *LoaderService) loadGrades(ctx context.Context, tx *sqlx.Tx, roster *models.Roster, cols models.RosterColumns, configs map[string]models.ClassConfig, studentIDs *IDMap[string], subjectIDs *IDMap[models.SubjectKey]) (int, error) {
	inserted := 0
	for _, row := range roster.Rows {
		registration := row.Value(cols.Registration)
		studentID, ok := studentIDs.Get(registration)
		if !ok {
			return inserted, appErrors.WrapAs(&UnknownStudentError{Registration: registration, Line: row.Line}, appErrors.ErrConsistency, "grade references unloaded student")
		}
		className := row.Value(cols.Class)
		cfg, ok := configs[className]
		if !ok {
			return inserted, appErrors.WrapAs(&UnknownClassError{ClassName: className, Line: row.Line, Registration: registration}, appErrors.ErrConsistency, "grade references unconfigured class")
		}
		for _, subject := range cfg.Subjects {
			key := models.SubjectKey{Class: className, Subject: subject}
			subjectID, ok := subjectIDs.Get(key)
			if !ok {
				return inserted, appErrors.WrapAs(&UnknownSubjectError{Key: key}, appErrors.ErrConsistency, "grade references unloaded subject")
			}
			grade, err := buildGrade(row, subject, cfg.Components)
			if err != nil {
				return inserted, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid grade value")
			}
			grade.StudentID = studentID
			grade.SubjectID = subjectID
			if err := s.grades.CreateWithTx(ctx, tx, grade); err != nil {
				return inserted, appErrors.WrapAs(&InsertError{Stage: models.StageGrades, Key: fmt.Sprintf("matricula %s subject %s", registration, key), Err: err}, appErrors.ErrDatabaseWrite, "grade insert failed")
			}
			inserted++
		}
	}
	return inserted, nil
}

func buildStudent(row models.RosterRow, cols models.RosterColumns) (*models.Student, string, error) {
	registration, ok := row.Get(cols.Registration)
	if !ok {
		return nil, "", &InvalidValueError{Line: row.Line, Column: cols.Registration, Reason: "registration number is required"}
	}
	name, ok := row.Get(cols.Name)
	if !ok {
		return nil, "", &InvalidValueError{Line: row.Line, Column: cols.Name, Reason: "name is required"}
	}
	suspended, err := parseFlag(row.Value(cols.Suspended))
	if err != nil {
		return nil, "", &InvalidValueError{Line: row.Line, Column: cols.Suspended, Value: row.Value(cols.Suspended), Reason: err.Error()}
	}
	return &models.Student{
		Name:         name,
		SocialName:   optional(row, cols.SocialName),
		Registration: registration,
		Suspended:    suspended,
		Photo:        optional(row, cols.Photo),
	}, row.Value(cols.Class), nil
}

// buildGrade reads the configured components of subject. Components that are
// not configured for the class, or have no Notas field, stay NULL like absent cells.
func buildGrade(row models.RosterRow, subject string, components []string) (*models.Grade, error) {
	grade := &models.Grade{}
	for _, name := range components {
		component, ok := models.ParseGradeComponent(name)
		if !ok {
			continue
		}
		column := models.GradeColumn(subject, string(component))
		raw, ok := row.Get(column)
		if !ok {
			continue
		}
		value, err := parseGradeValue(raw)
		if err != nil {
			return nil, &InvalidValueError{Line: row.Line, Column: column, Value: raw, Reason: "not a number"}
		}
		grade.Set(component, &value)
	}
	return grade, nil
}

// parseGradeValue accepts both decimal point and decimal comma.
func parseGradeValue(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "f", "n", "nao", "não", "no":
		return false, nil
	case "1", "true", "t", "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func optional(row models.RosterRow, column string) *string {
	v, ok := row.Get(column)
	if !ok {
		return nil
	}
	return &v
}
