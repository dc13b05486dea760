package models

// Student mirrors a row of the estudante table.
type Student struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"nome" json:"nome"`
	SocialName   *string `db:"nomesocial" json:"nomeSocial,omitempty"`
	Registration string  `db:"matricula" json:"matricula"`
	Suspended    bool    `db:"suspenso" json:"suspenso"`
	Photo        *string `db:"foto" json:"foto,omitempty"`
	ClassID      int64   `db:"turma_id" json:"turma_id"`
}
