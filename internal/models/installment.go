package models

import "time"

// MaxInstallmentSlots is the number of positions in a monthly fee schedule.
const MaxInstallmentSlots = 7

// InstallmentType distinguishes a one-time payment from a scheduled slot.
type InstallmentType string

const (
	InstallmentOneTime InstallmentType = "one_time"
	InstallmentMonthly InstallmentType = "monthly"
)

// InstallmentStatus is the lifecycle state of a submission.
type InstallmentStatus string

const (
	StatusPending  InstallmentStatus = "pending"
	StatusPaid     InstallmentStatus = "paid"
	StatusRejected InstallmentStatus = "rejected"
)

// PaymentMethod records how the payer settled the installment.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentBank PaymentMethod = "bank"
)

// Installment is one fee payment record owned by a student.
type Installment struct {
	ID                int64             `db:"id" json:"id"`
	StudentID         int64             `db:"student_id" json:"studentId"`
	InstallmentType   InstallmentType   `db:"installment_type" json:"installmentType"`
	InstallmentNumber *int              `db:"installment_number" json:"installmentNumber"`
	Amount            int64             `db:"amount" json:"amount"`
	Status            InstallmentStatus `db:"status" json:"status"`
	PaymentDate       *time.Time        `db:"payment_date" json:"paymentDate"`
	PaymentMethod     PaymentMethod     `db:"payment_method" json:"paymentMethod"`
	BankName          *string           `db:"bank_name" json:"bankName"`
	PaymentReceiptURL string            `db:"payment_receipt_url" json:"paymentReceiptUrl"`
	Note              *string           `db:"note" json:"note"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}

// InstallmentRow joins an installment with the owning student's display fields.
type InstallmentRow struct {
	Installment
	StudentName    string `db:"student_name" json:"studentName"`
	Campus         string `db:"campus" json:"campus"`
	YearLevel      string `db:"year_level" json:"yearLevel"`
	ContactNumber  string `db:"contact_number" json:"contactNumber"`
	SchoolLocation string `db:"school_location" json:"schoolLocation"`
}
