package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-fee-api/internal/models"
)

const studentColumns = `id, student_name, date_of_birth, father_name, mother_name, guardian_name, contact_number,
        academic_year, is_new_student, year_level, school_location, campus, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student record and populates its generated ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (student_name, date_of_birth, father_name, mother_name, guardian_name, contact_number,
        academic_year, is_new_student, year_level, school_location, campus, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		student.StudentName, student.DateOfBirth, student.FatherName, student.MotherName, student.GuardianName,
		student.ContactNumber, student.AcademicYear, student.IsNewStudent, student.YearLevel, student.SchoolLocation,
		student.Campus, student.CreatedAt, student.UpdatedAt,
	).Scan(&student.ID)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID fetches a student by ID. sql.ErrNoRows is returned unwrapped when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByNameAndBirthDate returns the most recently registered student matching name and date of birth.
func (r *StudentRepository) FindByNameAndBirthDate(ctx context.Context, name string, birthDate time.Time) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students
        WHERE LOWER(student_name) = LOWER($1) AND date_of_birth::date = $2::date
        ORDER BY created_at DESC LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, name, birthDate); err != nil {
		return nil, err
	}
	return &student, nil
}
