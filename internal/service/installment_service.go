package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/export"
)

// SnapshotCacheKey holds the admin installment snapshot.
const SnapshotCacheKey = "installments:snapshot"

const uniqueViolation = "23505"

type installmentRepository interface {
	Create(ctx context.Context, inst *models.Installment) error
	FindByID(ctx context.Context, id int64) (*models.Installment, error)
	ListWithStudents(ctx context.Context) ([]models.InstallmentRow, error)
	ExistsLiveSlot(ctx context.Context, studentID int64, number int) (bool, error)
	UpdateStatus(ctx context.Context, inst *models.Installment) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CreateInstallmentRequest is the submission payload for a payment proof.
type CreateInstallmentRequest struct {
	StudentID         int64  `json:"studentId" validate:"required,gt=0"`
	Amount            int64  `json:"amount" validate:"required,gt=0"`
	IsOneTimePayment  bool   `json:"isOneTimePayment"`
	InstallmentNumber *int   `json:"installmentNumber" validate:"omitempty,min=1,max=7"`
	PaymentReceiptURL string `json:"paymentReceiptUrl" validate:"required"`
	PaymentMethod     string `json:"paymentMethod" validate:"required,oneof=cash bank"`
	BankName          string `json:"bankName" validate:"omitempty,oneof=AYA KBZ CB UAB AGD MAB"`
}

// UpdateInstallmentStatusRequest changes the status of one installment.
type UpdateInstallmentStatusRequest struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	Status      string `json:"status" validate:"required"`
	Note        string `json:"note" validate:"max=1000"`
	PaymentDate string `json:"paymentDate"`
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InstallmentService handles submission, the admin snapshot and status changes.
type InstallmentService struct {
	repo      installmentRepository
	students  studentFinder
	cache     snapshotCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewInstallmentService constructs the installment service.
func NewInstallmentService(repo installmentRepository, students studentFinder, cache snapshotCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *InstallmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallmentService{
		repo:      repo,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Create records a new pending submission.
func (s *InstallmentService) Create(ctx context.Context, req CreateInstallmentRequest) (*models.Installment, error) {
	req.PaymentReceiptURL = strings.TrimSpace(req.PaymentReceiptURL)
	req.BankName = strings.TrimSpace(req.BankName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid installment payload")
	}
	if err := validateInstallmentShape(req); err != nil {
		return nil, err
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	inst := &models.Installment{
		StudentID:         req.StudentID,
		InstallmentType:   models.InstallmentOneTime,
		Amount:            req.Amount,
		Status:            models.StatusPending,
		PaymentMethod:     models.PaymentMethod(req.PaymentMethod),
		PaymentReceiptURL: req.PaymentReceiptURL,
	}
	if !req.IsOneTimePayment {
		inst.InstallmentType = models.InstallmentMonthly
		number := *req.InstallmentNumber
		inst.InstallmentNumber = &number

		taken, err := s.repo.ExistsLiveSlot(ctx, req.StudentID, number)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check installment slot")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("installment %d already submitted", number))
		}
	}
	if inst.PaymentMethod == models.PaymentBank {
		bank := req.BankName
		inst.BankName = &bank
	}

	if err := s.repo.Create(ctx, inst); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "installment already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create installment")
	}

	s.metrics.RecordInstallmentCreated(string(inst.InstallmentType))
	s.invalidateSnapshot(ctx)
	s.logger.Info("installment submitted",
		zap.Int64("installment_id", inst.ID),
		zap.Int64("student_id", inst.StudentID),
		zap.String("type", string(inst.InstallmentType)),
	)
	return inst, nil
}

// ListAll returns every installment joined with student names, in creation order.
func (s *InstallmentService) ListAll(ctx context.Context) ([]models.InstallmentRow, error) {
	var cached []models.InstallmentRow
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, SnapshotCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.repo.ListWithStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list installments")
	}
	if rows == nil {
		rows = []models.InstallmentRow{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, SnapshotCacheKey, rows, s.cacheTTL)
	}
	return rows, nil
}

// Dashboard filters and paginates the snapshot for the admin table.
func (s *InstallmentService) Dashboard(ctx context.Context, state DashboardState) (*dto.DashboardPage, error) {
	rows, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	page := state.Apply(rows)
	return &page, nil
}

// UpdateStatus applies a lifecycle transition to one installment.
func (s *InstallmentService) UpdateStatus(ctx context.Context, req UpdateInstallmentStatusRequest) (*models.Installment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	paymentDate, err := ParsePaymentDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installment")
	}

	next, err := ApplyTransition(*current, Transition{Status: status, Note: req.Note, PaymentDate: paymentDate}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, &next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update installment")
	}

	s.metrics.RecordTransition(string(current.Status), string(next.Status))
	s.invalidateSnapshot(ctx)
	s.logger.Info("installment status changed",
		zap.Int64("installment_id", next.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
	)
	return &next, nil
}

// Export renders the filtered snapshot as xlsx, csv or pdf.
func (s *InstallmentService) Export(ctx context.Context, state DashboardState, format string) (*ExportFile, error) {
	rows, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dataset := installmentDataset(FilterInstallments(rows, state.Search, state.Status))
	stamp := s.now().UTC().Format("20060102-150405")

	var (
		data        []byte
		contentType string
		ext         string
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "xlsx":
		data, err = export.NewXLSXExporter().Render(dataset)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case "csv":
		data, err = export.NewCSVExporter().Render(dataset)
		contentType, ext = "text/csv", "csv"
	case "pdf":
		data, err = export.NewPDFExporter().Render(dataset, "Installments")
		contentType, ext = "application/pdf", "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be xlsx, csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{Filename: fmt.Sprintf("installments-%s.%s", stamp, ext), ContentType: contentType, Data: data}, nil
}

func (s *InstallmentService) invalidateSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, SnapshotCacheKey); err != nil {
		s.logger.Warn("snapshot invalidation failed", zap.Error(err))
	}
}

func validateInstallmentShape(req CreateInstallmentRequest) error {
	if req.IsOneTimePayment && req.InstallmentNumber != nil {
		return appErrors.Clone(appErrors.ErrValidation, "installmentNumber must be empty for one-time payments")
	}
	if !req.IsOneTimePayment && req.InstallmentNumber == nil {
		return appErrors.Clone(appErrors.ErrValidation, "installmentNumber is required for monthly payments")
	}
	if req.PaymentMethod == string(models.PaymentBank) && req.BankName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "bankName is required for bank payments")
	}
	if req.PaymentMethod != string(models.PaymentBank) && req.BankName != "" {
		return appErrors.Clone(appErrors.ErrValidation, "bankName is only allowed for bank payments")
	}
	return nil
}

var exportHeaders = []string{"ID", "Student", "Student ID", "Type", "Slot", "Amount", "Status", "Method", "Bank", "Payment Date", "Submitted", "Note"}

func installmentDataset(rows []models.InstallmentRow) export.Dataset {
	data := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		record := map[string]string{
			"ID":         strconv.FormatInt(row.ID, 10),
			"Student":    row.StudentName,
			"Student ID": strconv.FormatInt(row.StudentID, 10),
			"Type":       string(row.InstallmentType),
			"Amount":     export.FormatKyat(row.Amount),
			"Status":     string(row.Status),
			"Method":     string(row.PaymentMethod),
			"Submitted":  row.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if row.InstallmentNumber != nil {
			record["Slot"] = strconv.Itoa(*row.InstallmentNumber)
		}
		if row.BankName != nil {
			record["Bank"] = *row.BankName
		}
		if row.PaymentDate != nil {
			record["Payment Date"] = row.PaymentDate.UTC().Format("2006-01-02")
		}
		if row.Note != nil {
			record["Note"] = *row.Note
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}
