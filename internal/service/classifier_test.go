package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roster-etl/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		pattern models.ClassPattern
		shift   models.Shift
		grade   models.GradeLevel
	}{
		{"3A", models.PatternRegular, models.ShiftMorning, models.NumericGrade(3)},
		{"7A", models.PatternRegular, models.ShiftMorning, models.NumericGrade(7)},
		{"9", models.PatternRegular, models.ShiftMorning, models.NumericGrade(9)},
		{"12B", models.PatternRegular, models.ShiftMorning, models.NumericGrade(12)},
		{"EJ1-3", models.PatternNight, models.ShiftNight, models.RawGrade("3")},
		{"NT2 B", models.PatternNight, models.ShiftNight, models.RawGrade("B")},
		{"INT2A", models.PatternFullTime, models.ShiftFullTime, models.NumericGrade(2)},
		{"Int 1A", models.PatternFullTime, models.ShiftFullTime, models.NumericGrade(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Equal(t, tt.shift, got.Shift)
			assert.Equal(t, tt.grade, got.GradeLevel)
		})
	}
}

func TestClassifyRejectsMalformedNames(t *testing.T) {
	for _, name := range []string{"", "A", "AB", "INTA", "ABC", "EJ1", "EJ1-"} {
		t.Run(name, func(t *testing.T) {
			_, err := Classify(name)
			var classErr *ClassificationError
			require.ErrorAs(t, err, &classErr)
			assert.Equal(t, name, classErr.ClassName)
		})
	}
}

func TestClassifyNightGradeUndefined(t *testing.T) {
	_, err := Classify("EJ1-")
	assert.True(t, errors.Is(err, ErrNightGradeUndefined))

	_, err = Classify("INTA")
	assert.False(t, errors.Is(err, ErrNightGradeUndefined))
}
