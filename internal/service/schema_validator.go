package service

import (
	"github.com/noah-isme/roster-etl/internal/models"
)

// ExpectedColumns returns the identity columns followed by one grade column per
// subject and component of every configuration, deduplicated in first-seen order.
func ExpectedColumns(configs []models.ClassConfig, identity []string) []string {
	seen := make(map[string]struct{})
	var expected []string
	add := func(col string) {
		if _, ok := seen[col]; ok {
			return
		}
		seen[col] = struct{}{}
		expected = append(expected, col)
	}
	for _, col := range identity {
		add(col)
	}
	for _, cfg := range configs {
		for _, subject := range cfg.Subjects {
			for _, component := range cfg.Components {
				add(models.GradeColumn(subject, component))
			}
		}
	}
	return expected
}

// ValidateSchema checks the roster columns against what the configurations require.
// Missing columns fail with *MissingColumnsError; extra columns are only reported.
func ValidateSchema(configs []models.ClassConfig, identity []string, rosterColumns []string) (*models.SchemaReport, error) {
	expected := ExpectedColumns(configs, identity)
	report := &models.SchemaReport{
		Expected: expected,
		Missing:  difference(expected, rosterColumns),
		Extra:    difference(rosterColumns, expected),
	}
	if len(report.Missing) > 0 {
		return report, &MissingColumnsError{Missing: report.Missing}
	}
	return report, nil
}

// CheckClassCoverage fails on the first roster row whose class has no configuration.
func CheckClassCoverage(configs []models.ClassConfig, roster *models.Roster, columns models.RosterColumns) error {
	known := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		known[cfg.Name] = struct{}{}
	}
	for _, row := range roster.Rows {
		class := row.Value(columns.Class)
		if _, ok := known[class]; !ok {
			return &UnknownClassError{ClassName: class, Line: row.Line, Registration: row.Value(columns.Registration)}
		}
	}
	return nil
}

// difference returns the members of a absent from b, in a's order.
func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := set[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
