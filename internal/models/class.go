package models

import "strconv"

// Shift is the period of the day a class attends.
type Shift string

const (
	ShiftMorning  Shift = "manha"
	ShiftFullTime Shift = "integral"
	ShiftNight    Shift = "noite"
)

// ClassPattern tags the naming convention a class name was recognised by.
type ClassPattern int

const (
	// PatternRegular names start with the grade digit, e.g. "3A".
	PatternRegular ClassPattern = iota + 1
	// PatternFullTime names start with a letter prefix, e.g. "INT2A".
	PatternFullTime
	// PatternNight names carry a digit at index 2 and the grade at index 4,
	// e.g. "EJ1-3".
	PatternNight
)

func (p ClassPattern) String() string {
	switch p {
	case PatternRegular:
		return "regular"
	case PatternFullTime:
		return "full-time"
	case PatternNight:
		return "night"
	default:
		return "unknown"
	}
}

// GradeLevel is the series of a class. Night classes keep the raw character
// taken from the name, which is not guaranteed to be numeric.
type GradeLevel struct {
	Number  int
	Raw     string
	Numeric bool
}

// NumericGrade builds a numeric grade level.
func NumericGrade(n int) GradeLevel {
	return GradeLevel{Number: n, Raw: strconv.Itoa(n), Numeric: true}
}

// RawGrade builds a grade level from an unvalidated character.
func RawGrade(raw string) GradeLevel {
	if n, err := strconv.Atoi(raw); err == nil {
		return GradeLevel{Number: n, Raw: raw, Numeric: true}
	}
	return GradeLevel{Raw: raw}
}

func (g GradeLevel) String() string {
	return g.Raw
}

// Classification is the result of classifying a class name.
type Classification struct {
	Pattern    ClassPattern `json:"pattern"`
	Shift      Shift        `json:"shift"`
	GradeLevel GradeLevel   `json:"grade_level"`
}

// ClassConfig describes one class as read from its configuration document.
type ClassConfig struct {
	Name       string   `json:"-" validate:"required"`
	Subjects   []string `json:"materia" validate:"required,min=1,dive,required"`
	Components []string `json:"notas" validate:"required,min=1,dive,required,oneof=1c 1ca 2c 2ca pfv"`
}

// Class mirrors a row of the Turmas table.
type Class struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"nome" json:"nome"`
	Shift      Shift  `db:"turno" json:"turno"`
	GradeLevel string `db:"serie" json:"serie"`
}
