package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roster-etl/internal/models"
)

func newLoadRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func idRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

func TestClassRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewClassRepository()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO Turmas (nome, turno, serie) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("7A", "manha", "7").
		WillReturnRows(idRows(11))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	class := &models.Class{Name: "7A", Shift: models.ShiftMorning, GradeLevel: "7"}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, class))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(11), class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateWithTxError(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewClassRepository()

	mock.ExpectQuery("INSERT INTO Turmas").
		WillReturnError(errors.New("duplicate key value"))

	class := &models.Class{Name: "7A", Shift: models.ShiftMorning, GradeLevel: "7"}
	err := repo.CreateWithTx(context.Background(), db, class)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create class "7A"`)
	assert.Zero(t, class.ID)
}

func TestSubjectRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO Materia (nome, turma_id)`)).
		WithArgs("MAT", int64(11)).
		WillReturnRows(idRows(21))

	subject := &models.Subject{Name: "MAT", ClassID: 11}
	require.NoError(t, repo.CreateWithTx(context.Background(), db, subject))
	assert.Equal(t, int64(21), subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository()

	social := "Bia"
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO estudante (nome, nomeSocial, matricula, suspenso, foto, turma_id)`)).
		WithArgs("Ana", &social, "001", true, nil, int64(11)).
		WillReturnRows(idRows(31))

	student := &models.Student{Name: "Ana", SocialName: &social, Registration: "001", Suspended: true, ClassID: 11}
	require.NoError(t, repo.CreateWithTx(context.Background(), db, student))
	assert.Equal(t, int64(31), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository()

	cert1, final := 8.5, 7.0
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO Notas (cert1, apoio1, cert2, apoio2, pfv, estudante_id, materia_id)`)).
		WithArgs(&cert1, nil, nil, nil, &final, int64(31), int64(21)).
		WillReturnRows(idRows(41))

	grade := &models.Grade{Cert1: &cert1, FinalValue: &final, StudentID: 31, SubjectID: 21}
	require.NoError(t, repo.CreateWithTx(context.Background(), db, grade))
	assert.Equal(t, int64(41), grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetRepositoryTruncateWithTx(t *testing.T) {
	db, mock, cleanup := newLoadRepoMock(t)
	defer cleanup()
	repo := NewResetRepository()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE Notas, estudante, Materia, Turmas RESTART IDENTITY CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.TruncateWithTx(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
