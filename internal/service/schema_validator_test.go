package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roster-etl/internal/models"
)

var identityColumns = []string{"name", "registration_number", "class_name"}

func sevenA() []models.ClassConfig {
	return []models.ClassConfig{{Name: "7A", Subjects: []string{"MAT"}, Components: []string{"1c", "pfv"}}}
}

func TestExpectedColumns(t *testing.T) {
	configs := []models.ClassConfig{
		{Name: "7A", Subjects: []string{"MAT", "POR"}, Components: []string{"1c", "pfv"}},
		{Name: "7B", Subjects: []string{"MAT"}, Components: []string{"1c", "2c"}},
	}
	got := ExpectedColumns(configs, identityColumns)
	assert.Equal(t, []string{
		"name", "registration_number", "class_name",
		"MAT_1c", "MAT_pfv", "POR_1c", "POR_pfv", "MAT_2c",
	}, got)
}

func TestValidateSchemaSucceeds(t *testing.T) {
	columns := []string{"name", "registration_number", "class_name", "MAT_1c", "MAT_pfv", "photo_url"}
	report, err := ValidateSchema(sevenA(), identityColumns, columns)
	require.NoError(t, err)
	assert.Empty(t, report.Missing)
	assert.Equal(t, []string{"photo_url"}, report.Extra)
}

func TestValidateSchemaMissingColumn(t *testing.T) {
	columns := []string{"name", "registration_number", "class_name", "MAT_1c"}
	report, err := ValidateSchema(sevenA(), identityColumns, columns)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"MAT_pfv"}, missing.Missing)
	assert.Equal(t, []string{"MAT_pfv"}, report.Missing)
}

func TestValidateSchemaMissingIdentity(t *testing.T) {
	columns := []string{"name", "MAT_1c", "MAT_pfv"}
	_, err := ValidateSchema(sevenA(), identityColumns, columns)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"registration_number", "class_name"}, missing.Missing)
}

func TestValidateSchemaNoConfigs(t *testing.T) {
	_, err := ValidateSchema(nil, identityColumns, identityColumns)
	assert.NoError(t, err)
}

func TestCheckClassCoverage(t *testing.T) {
	cols := models.DefaultRosterColumns()
	roster := &models.Roster{Rows: []models.RosterRow{
		{Line: 2, Values: map[string]string{"turma": "7A", "matricula": "001"}},
		{Line: 3, Values: map[string]string{"turma": "9B", "matricula": "002"}},
	}}

	err := CheckClassCoverage(sevenA(), roster, cols)
	var unknown *UnknownClassError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "9B", unknown.ClassName)
	assert.Equal(t, 3, unknown.Line)

	roster.Rows = roster.Rows[:1]
	assert.NoError(t, CheckClassCoverage(sevenA(), roster, cols))
}
