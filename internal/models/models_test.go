package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawGrade(t *testing.T) {
	assert.Equal(t, GradeLevel{Number: 3, Raw: "3", Numeric: true}, RawGrade("3"))
	assert.Equal(t, GradeLevel{Raw: "B"}, RawGrade("B"))
	assert.Equal(t, "7", NumericGrade(7).String())
}

func TestGradeSet(t *testing.T) {
	v := 8.5
	var g Grade
	g.Set(ComponentCert1, &v)
	g.Set(GradeComponent("bonus"), &v)
	assert.Equal(t, &v, g.Cert1)
	assert.Nil(t, g.Support1)
	assert.Nil(t, g.FinalValue)
}

func TestParseGradeComponent(t *testing.T) {
	c, ok := ParseGradeComponent("2ca")
	assert.True(t, ok)
	assert.Equal(t, ComponentSupport2, c)

	_, ok = ParseGradeComponent("3c")
	assert.False(t, ok)
}

func TestRosterRowGet(t *testing.T) {
	row := RosterRow{Values: map[string]string{"nome": "  Ana ", "foto": "   "}}

	v, ok := row.Get("nome")
	assert.True(t, ok)
	assert.Equal(t, "Ana", v)

	_, ok = row.Get("foto")
	assert.False(t, ok)
	_, ok = row.Get("")
	assert.False(t, ok)
	assert.Equal(t, "", row.Value("matricula"))
}

func TestRunReportStage(t *testing.T) {
	report := &RunReport{Stages: []StageReport{{Stage: StageClasses, Rows: 2, Committed: true}}}
	s, ok := report.Stage(StageClasses)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Rows)
	_, ok = report.Stage(StageGrades)
	assert.False(t, ok)
	assert.True(t, report.Succeeded())
}
