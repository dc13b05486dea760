package models

import "strings"

// RosterColumns names the identity columns of a roster.
type RosterColumns struct {
	Name         string `validate:"required"`
	Registration string `validate:"required"`
	Class        string `validate:"required"`
	SocialName   string
	Suspended    string
	Photo        string
}

// DefaultRosterColumns matches the column names of the school's export.
func DefaultRosterColumns() RosterColumns {
	return RosterColumns{
		Name:         "nome",
		Registration: "matricula",
		Class:        "turma",
		SocialName:   "nomeSocial",
		Suspended:    "suspenso",
		Photo:        "foto",
	}
}

// Required returns the identity columns every roster must carry.
func (c RosterColumns) Required() []string {
	return []string{c.Name, c.Registration, c.Class}
}

// Roster is the tabular source of students, one row per student.
type Roster struct {
	Source  string
	Columns []string
	Rows    []RosterRow
}

// RosterRow is a single roster record keyed by column name.
type RosterRow struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column and whether it is present and non-empty.
func (r RosterRow) Get(column string) (string, bool) {
	if column == "" {
		return "", false
	}
	v, ok := r.Values[column]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Value returns the trimmed value of column or an empty string.
func (r RosterRow) Value(column string) string {
	v, _ := r.Get(column)
	return v
}
