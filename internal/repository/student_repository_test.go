package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/models"
)

var studentRowColumns = []string{"id", "student_name", "date_of_birth", "father_name", "mother_name", "guardian_name", "contact_number",
	"academic_year", "is_new_student", "year_level", "school_location", "campus", "created_at", "updated_at"}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students .* RETURNING id").
		WithArgs("Aung Aung", sqlmock.AnyArg(), nil, nil, nil, "0912345678", "2024-2025", true, models.YearLevel3, "mandalay", models.CampusMain, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	student := &models.Student{
		StudentName:    "Aung Aung",
		DateOfBirth:    time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		ContactNumber:  "0912345678",
		AcademicYear:   "2024-2025",
		IsNewStudent:   true,
		YearLevel:      models.YearLevel3,
		SchoolLocation: "mandalay",
		Campus:         models.CampusMain,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(42), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow(int64(7), "Su Su", now, "U Ba", nil, nil, "0911", "2024-2025", true, "year-1", "yangon-north", "north-campus", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Su Su", student.StudentName)
	require.NotNil(t, student.FatherName)
	assert.Equal(t, "U Ba", *student.FatherName)
	assert.Nil(t, student.MotherName)
	assert.Equal(t, models.CampusNorth, student.Campus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByNameAndBirthDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	dob := time.Date(2012, 6, 9, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow(int64(3), "Mya Mya", dob, nil, nil, "Daw Hla", "0922", "2024-2025", true, "igcse", "naypyidaw", "east-campus", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(student_name) = LOWER($1) AND date_of_birth::date = $2::date")).
		WithArgs("mya mya", dob).
		WillReturnRows(rows)

	student, err := repo.FindByNameAndBirthDate(context.Background(), "mya mya", dob)
	require.NoError(t, err)
	assert.Equal(t, int64(3), student.ID)
	assert.Equal(t, models.YearLevelIGCSE, student.YearLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
