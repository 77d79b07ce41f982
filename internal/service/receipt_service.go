package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/export"
	"github.com/noah-isme/sma-fee-api/pkg/storage"
)

const receiptResourcePrefix = "installments/"

type receiptStudentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type receiptInstallmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Installment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Installment, error)
}

type receiptRenderer interface {
	Render(doc export.ReceiptDocument) ([]byte, error)
}

// ReceiptConfig holds the printed footer and share link settings.
type ReceiptConfig struct {
	SchoolName     string
	Address        string
	ContactNumbers []string
	Website        string
	ReceivedBy     string
	SharedLinkBase string
}

// ReceiptService renders receipts for paid installments. Eligibility is read from the store on every call.
type ReceiptService struct {
	students     receiptStudentRepository
	installments receiptInstallmentRepository
	renderer     receiptRenderer
	signer       *storage.SignedURLSigner
	metrics      *MetricsService
	config       ReceiptConfig
	logger       *zap.Logger
}

// NewReceiptService constructs the receipt service.
func NewReceiptService(students receiptStudentRepository, installments receiptInstallmentRepository, renderer receiptRenderer, signer *storage.SignedURLSigner, metrics *MetricsService, config ReceiptConfig, logger *zap.Logger) *ReceiptService {
	if renderer == nil {
		renderer = export.NewReceiptRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		students:     students,
		installments: installments,
		renderer:     renderer,
		signer:       signer,
		metrics:      metrics,
		config:       config,
		logger:       logger,
	}
}

// View returns the receipt for a paid installment owned by studentID.
func (s *ReceiptService) View(ctx context.Context, studentID, installmentID int64) (*dto.ReceiptView, error) {
	view, err := s.load(ctx, studentID, installmentID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordReceipt("json")
	return view, nil
}

// PDF renders the receipt as a printable document.
func (s *ReceiptService) PDF(ctx context.Context, studentID, installmentID int64) ([]byte, string, error) {
	view, err := s.load(ctx, studentID, installmentID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderer.Render(s.document(view))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	s.metrics.RecordReceipt("pdf")
	return data, fmt.Sprintf("receipt-%s.pdf", view.ReceiptNo), nil
}

// ShareLink issues a signed link to the receipt PDF of a paid installment.
func (s *ReceiptService) ShareLink(ctx context.Context, installmentID int64) (*dto.ReceiptLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "receipt links are not configured")
	}
	inst, err := s.installments.FindByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installment")
	}
	if !ReceiptEligible(*inst) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
	}

	token, expiresAt, err := s.signer.Generate(strconv.FormatInt(inst.StudentID, 10), receiptResourcePrefix+strconv.FormatInt(inst.ID, 10))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign receipt link")
	}
	return &dto.ReceiptLink{
		URL:       strings.TrimRight(s.config.SharedLinkBase, "/") + "/" + token,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Shared renders the receipt PDF referenced by a signed token.
func (s *ReceiptService) Shared(ctx context.Context, token string) ([]byte, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid receipt link")
	}
	subject, resource, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid receipt link")
	}
	studentID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || !strings.HasPrefix(resource, receiptResourcePrefix) {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid receipt link")
	}
	installmentID, err := strconv.ParseInt(strings.TrimPrefix(resource, receiptResourcePrefix), 10, 64)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid receipt link")
	}
	return s.PDF(ctx, studentID, installmentID)
}

func (s *ReceiptService) load(ctx context.Context, studentID, installmentID int64) (*dto.ReceiptView, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	inst, err := s.installments.FindByID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installment")
	}
	if inst.StudentID != student.ID || !ReceiptEligible(*inst) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
	}

	all, err := s.installments.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installments")
	}

	method := string(inst.PaymentMethod)
	if method == "" {
		method = string(models.PaymentCash)
	}
	receivedAt := inst.CreatedAt
	if inst.PaymentDate != nil {
		receivedAt = *inst.PaymentDate
	}
	var remarks string
	if inst.Note != nil {
		remarks = *inst.Note
	}

	return &dto.ReceiptView{
		ReceiptNo: fmt.Sprintf("R-%06d", inst.ID),
		Student: dto.ReceiptStudent{
			ID:            student.ID,
			StudentName:   student.StudentName,
			Campus:        string(student.Campus),
			YearLevel:     string(student.YearLevel),
			AcademicYear:  student.AcademicYear,
			ContactNumber: student.ContactNumber,
		},
		Payment: dto.ReceiptPayment{
			InstallmentID:     inst.ID,
			InstallmentType:   string(inst.InstallmentType),
			InstallmentNumber: inst.InstallmentNumber,
			Amount:            inst.Amount,
			PaymentMethod:     method,
			BankName:          inst.BankName,
		},
		Grid:       ProjectGrid(all, inst.ID),
		ReceivedAt: receivedAt,
		IssuedAt:   inst.CreatedAt,
		Remarks:    remarks,
	}, nil
}

func (s *ReceiptService) document(view *dto.ReceiptView) export.ReceiptDocument {
	slots := make([]export.ReceiptSlot, 0, len(view.Grid))
	for _, slot := range view.Grid {
		slots = append(slots, export.ReceiptSlot{Number: slot.Number, Amount: slot.Amount, Current: slot.Current})
	}
	var bank string
	if view.Payment.BankName != nil {
		bank = *view.Payment.BankName
	}
	return export.ReceiptDocument{
		SchoolName:     s.config.SchoolName,
		ReceiptNo:      view.ReceiptNo,
		IssuedAt:       view.IssuedAt,
		StudentName:    view.Student.StudentName,
		Campus:         view.Student.Campus,
		YearLevel:      view.Student.YearLevel,
		AcademicYear:   view.Student.AcademicYear,
		Phone:          view.Student.ContactNumber,
		Amount:         view.Payment.Amount,
		PaymentMethod:  view.Payment.PaymentMethod,
		BankName:       bank,
		Slots:          slots,
		ReceivedBy:     s.config.ReceivedBy,
		ReceivedAt:     view.ReceivedAt,
		Remarks:        view.Remarks,
		Address:        s.config.Address,
		ContactNumbers: s.config.ContactNumbers,
		Website:        s.config.Website,
	}
}
