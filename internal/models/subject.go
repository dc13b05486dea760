package models

// Subject mirrors a row of the Materia table.
type Subject struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"nome" json:"nome"`
	ClassID int64  `db:"turma_id" json:"turma_id"`
}

// SubjectKey identifies a subject within a run: subjects are scoped by class.
type SubjectKey struct {
	Class   string
	Subject string
}

func (k SubjectKey) String() string {
	return k.Class + "/" + k.Subject
}
