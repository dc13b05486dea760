package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/roster-etl/internal/models"
)

// ErrNightGradeUndefined marks night-shift names too short to carry a grade
// character at position 5. The rule for those names is still undefined.
var ErrNightGradeUndefined = errors.New("night class grade rule undefined for this name")

// ClassificationError reports a class name that matches no naming pattern.
type ClassificationError struct {
	ClassName string
	Reason    string
	Err       error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("class %q: %s", e.ClassName, e.Reason)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// MissingColumnsError lists required roster columns that are absent.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("roster is missing %d required column(s): %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

// UnknownClassError reports a class name with no configuration or id.
type UnknownClassError struct {
	ClassName    string
	Line         int
	Registration string
}

func (e *UnknownClassError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d (matricula %q): class %q has no configuration", e.Line, e.Registration, e.ClassName)
	}
	return fmt.Sprintf("class %q has no configuration", e.ClassName)
}

// UnknownStudentError reports a registration number with no inserted student.
type UnknownStudentError struct {
	Registration string
	Line         int
}

func (e *UnknownStudentError) Error() string {
	return fmt.Sprintf("line %d: student with matricula %q was not loaded", e.Line, e.Registration)
}

// UnknownSubjectError reports a (class, subject) pair with no inserted subject.
type UnknownSubjectError struct {
	Key models.SubjectKey
}

func (e *UnknownSubjectError) Error() string {
	return fmt.Sprintf("subject %q of class %q was not loaded", e.Key.Subject, e.Key.Class)
}

// DuplicateStudentError reports a registration number seen twice in the roster.
type DuplicateStudentError struct {
	Registration string
	Line         int
	FirstLine    int
}

func (e *DuplicateStudentError) Error() string {
	return fmt.Sprintf("line %d: matricula %q already used on line %d", e.Line, e.Registration, e.FirstLine)
}

// DuplicateSubjectError reports a subject listed twice for the same class.
type DuplicateSubjectError struct {
	Key models.SubjectKey
}

func (e *DuplicateSubjectError) Error() string {
	return fmt.Sprintf("subject %q listed twice for class %q", e.Key.Subject, e.Key.Class)
}

// DuplicateClassError reports two configurations for the same class name.
type DuplicateClassError struct {
	ClassName string
}

func (e *DuplicateClassError) Error() string {
	return fmt.Sprintf("class %q configured twice", e.ClassName)
}

// InvalidValueError reports a roster cell that cannot be loaded.
type InvalidValueError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d: column %q: %s", e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("line %d: column %q value %q: %s", e.Line, e.Column, e.Value, e.Reason)
}

// InsertError wraps a storage failure with the stage and natural key being written.
// A failure in the classes stage is the class insert error of the run.
type InsertError struct {
	Stage models.StageName
	Key   string
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("%s stage: insert %s: %v", e.Stage, e.Key, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
