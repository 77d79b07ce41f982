package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-fee-api/internal/models"
)

const installmentColumns = `i.id, i.student_id, i.installment_type, i.installment_number, i.amount, i.status, i.payment_date,
        i.payment_method, i.bank_name, i.payment_receipt_url, i.note, i.created_at, i.updated_at`

// InstallmentRepository manages persistence for installment records.
type InstallmentRepository struct {
	db *sqlx.DB
}

// NewInstallmentRepository constructs an InstallmentRepository.
func NewInstallmentRepository(db *sqlx.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

// Create inserts a new installment and populates its generated ID.
func (r *InstallmentRepository) Create(ctx context.Context, inst *models.Installment) error {
	now := time.Now().UTC()
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	inst.UpdatedAt = now
	const query = `INSERT INTO installments (student_id, installment_type, installment_number, amount, status, payment_date,
        payment_method, bank_name, payment_receipt_url, note, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		inst.StudentID, inst.InstallmentType, inst.InstallmentNumber, inst.Amount, inst.Status, inst.PaymentDate,
		inst.PaymentMethod, inst.BankName, inst.PaymentReceiptURL, inst.Note, inst.CreatedAt, inst.UpdatedAt,
	).Scan(&inst.ID)
	if err != nil {
		return fmt.Errorf("create installment: %w", err)
	}
	return nil
}

// FindByID fetches an installment by ID. sql.ErrNoRows is returned unwrapped when absent.
func (r *InstallmentRepository) FindByID(ctx context.Context, id int64) (*models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments i WHERE i.id = $1`
	var inst models.Installment
	if err := r.db.GetContext(ctx, &inst, query, id); err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListByStudent returns a student's installments in creation order.
func (r *InstallmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments i WHERE i.student_id = $1 ORDER BY i.created_at ASC, i.id ASC`
	var items []models.Installment
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student installments: %w", err)
	}
	return items, nil
}

// ListWithStudents returns every installment joined with its student's display fields.
func (r *InstallmentRepository) ListWithStudents(ctx context.Context) ([]models.InstallmentRow, error) {
	query := `SELECT ` + installmentColumns + `,
        COALESCE(s.student_name, '') AS student_name, COALESCE(s.campus, '') AS campus, COALESCE(s.year_level, '') AS year_level,
        COALESCE(s.contact_number, '') AS contact_number, COALESCE(s.school_location, '') AS school_location
        FROM installments i LEFT JOIN students s ON s.id = i.student_id
        ORDER BY i.created_at ASC, i.id ASC`
	var rows []models.InstallmentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return rows, nil
}

// ExistsLiveSlot reports whether the student already has a pending or paid submission for the slot.
func (r *InstallmentRepository) ExistsLiveSlot(ctx context.Context, studentID int64, number int) (bool, error) {
	const query = `SELECT 1 FROM installments WHERE student_id = $1 AND installment_number = $2 AND status <> $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, number, models.StatusRejected); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check installment slot: %w", err)
	}
	return true, nil
}

// UpdateStatus persists the lifecycle fields of an installment in a single-row update.
func (r *InstallmentRepository) UpdateStatus(ctx context.Context, inst *models.Installment) error {
	const query = `UPDATE installments SET status = $1, payment_date = $2, note = $3, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, inst.Status, inst.PaymentDate, inst.Note, inst.UpdatedAt, inst.ID)
	if err != nil {
		return fmt.Errorf("update installment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update installment status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
