package models

// GradeComponent is the suffix identifying one assessment field in a roster column.
type GradeComponent string

const (
	ComponentCert1    GradeComponent = "1c"
	ComponentSupport1 GradeComponent = "1ca"
	ComponentCert2    GradeComponent = "2c"
	ComponentSupport2 GradeComponent = "2ca"
	ComponentFinal    GradeComponent = "pfv"
)

// GradeComponents lists the components persisted in Notas, in column order.
var GradeComponents = []GradeComponent{
	ComponentCert1,
	ComponentSupport1,
	ComponentCert2,
	ComponentSupport2,
	ComponentFinal,
}

// ParseGradeComponent reports whether name is one of the persisted components.
func ParseGradeComponent(name string) (GradeComponent, bool) {
	for _, c := range GradeComponents {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// GradeColumn returns the roster column holding component for subject.
func GradeColumn(subject string, component string) string {
	return subject + "_" + component
}

// Grade mirrors a row of the Notas table. Nil values are stored as NULL.
type Grade struct {
	ID         int64    `db:"id" json:"id"`
	Cert1      *float64 `db:"cert1" json:"cert1"`
	Support1   *float64 `db:"apoio1" json:"apoio1"`
	Cert2      *float64 `db:"cert2" json:"cert2"`
	Support2   *float64 `db:"apoio2" json:"apoio2"`
	FinalValue *float64 `db:"pfv" json:"pfv"`
	StudentID  int64    `db:"estudante_id" json:"estudante_id"`
	SubjectID  int64    `db:"materia_id" json:"materia_id"`
}

// Set assigns value to the field backing component. Unknown components are ignored.
func (g *Grade) Set(component GradeComponent, value *float64) {
	switch component {
	case ComponentCert1:
		g.Cert1 = value
	case ComponentSupport1:
		g.Support1 = value
	case ComponentCert2:
		g.Cert2 = value
	case ComponentSupport2:
		g.Support2 = value
	case ComponentFinal:
		g.FinalValue = value
	}
}
