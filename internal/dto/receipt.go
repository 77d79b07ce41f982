package dto

import "time"

// GridSlot is one position of the seven-slot installment grid. Amount is nil unless that slot is paid.
type GridSlot struct {
	Number  int    `json:"number"`
	Amount  *int64 `json:"amount"`
	Current bool   `json:"current"`
}

// ReceiptStudent carries the student fields printed on a receipt.
type ReceiptStudent struct {
	ID            int64  `json:"id"`
	StudentName   string `json:"studentName"`
	Campus        string `json:"campus"`
	YearLevel     string `json:"yearLevel"`
	AcademicYear  string `json:"academicYear"`
	ContactNumber string `json:"contactNumber"`
}

// ReceiptPayment carries the payment fields printed on a receipt.
type ReceiptPayment struct {
	InstallmentID     int64   `json:"installmentId"`
	InstallmentType   string  `json:"installmentType"`
	InstallmentNumber *int    `json:"installmentNumber"`
	Amount            int64   `json:"amount"`
	PaymentMethod     string  `json:"paymentMethod"`
	BankName          *string `json:"bankName"`
}

// ReceiptView is the renderable receipt for a paid installment.
type ReceiptView struct {
	ReceiptNo  string         `json:"receiptNo"`
	Student    ReceiptStudent `json:"student"`
	Payment    ReceiptPayment `json:"payment"`
	Grid       []GridSlot     `json:"grid"`
	ReceivedAt time.Time      `json:"receivedAt"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Remarks    string         `json:"remarks"`
}

// ReceiptLink is a signed, expiring URL to a receipt PDF.
type ReceiptLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
