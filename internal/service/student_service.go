package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByNameAndBirthDate(ctx context.Context, name string, birthDate time.Time) (*models.Student, error)
}

type studentInstallmentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Installment, error)
}

// CreateStudentRequest holds the registration payload.
type CreateStudentRequest struct {
	StudentName    string `json:"studentName" validate:"required,max=255"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	FatherName     string `json:"fatherName" validate:"max=255"`
	MotherName     string `json:"motherName" validate:"max=255"`
	GuardianName   string `json:"guardianName" validate:"max=255"`
	ContactNumber  string `json:"contactNumber" validate:"required,max=20"`
	AcademicYear   string `json:"academicYear" validate:"required,academic_year"`
	YearLevel      string `json:"yearLevel" validate:"required,oneof=year-1 year-2 year-3 year-4 year-5 year-6 year-7 year-8 year-9 igcse"`
	SchoolLocation string `json:"schoolLocation" validate:"required,oneof=yangon-downtown yangon-north yangon-south yangon-east yangon-west mandalay naypyidaw"`
	Campus         string `json:"campus" validate:"required,oneof=main-campus north-campus south-campus east-campus"`
}

func (r *CreateStudentRequest) normalize() {
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
}

// StudentService handles student registration and lookup.
type StudentService struct {
	repo         studentRepository
	installments studentInstallmentReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, installments studentInstallmentReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &StudentService{repo: repo, installments: installments, validator: validate, logger: logger}
	if err := svc.validator.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return validAcademicYear(fl.Field().String())
	}); err != nil {
		logger.Error("failed to register academic_year validation", zap.Error(err))
	}
	return svc
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	dob, _ := time.Parse("2006-01-02", req.DateOfBirth)

	student := &models.Student{
		StudentName:    req.StudentName,
		DateOfBirth:    dob,
		FatherName:     optionalString(req.FatherName),
		MotherName:     optionalString(req.MotherName),
		GuardianName:   optionalString(req.GuardianName),
		ContactNumber:  req.ContactNumber,
		AcademicYear:   req.AcademicYear,
		IsNewStudent:   true,
		YearLevel:      models.YearLevel(req.YearLevel),
		SchoolLocation: req.SchoolLocation,
		Campus:         models.Campus(req.Campus),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.Int64("student_id", student.ID))
	return student, nil
}

// Get returns a student together with their installments and paid-only grid.
func (s *StudentService) Get(ctx context.Context, id int64) (*dto.StudentInstallments, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	items, err := s.installments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
	}
	if items == nil {
		items = []models.Installment{}
	}
	return &dto.StudentInstallments{Student: *student, Installments: items, Grid: ProjectGrid(items, 0)}, nil
}

// Lookup finds a student by name and date of birth.
func (s *StudentService) Lookup(ctx context.Context, name, dateOfBirth string) (*models.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentName is required")
	}
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(dateOfBirth))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dateOfBirth must be YYYY-MM-DD")
	}
	student, err := s.repo.FindByNameAndBirthDate(ctx, name, dob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
	}
	return student, nil
}

func validAcademicYear(value string) bool {
	parts := academicYearPattern.FindStringSubmatch(value)
	if parts == nil {
		return false
	}
	start, _ := strconv.Atoi(parts[1])
	end, _ := strconv.Atoi(parts[2])
	return end == start+1
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
