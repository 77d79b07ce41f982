package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReceiptSlot is one cell of the printed installment grid. A nil Amount prints as "-".
type ReceiptSlot struct {
	Number  int
	Amount  *int64
	Current bool
}

// ReceiptDocument carries everything printed on a payment receipt.
type ReceiptDocument struct {
	SchoolName     string
	ReceiptNo      string
	IssuedAt       time.Time
	StudentName    string
	Campus         string
	YearLevel      string
	AcademicYear   string
	Phone          string
	Amount         int64
	PaymentMethod  string
	BankName       string
	Slots          []ReceiptSlot
	ReceivedBy     string
	ReceivedAt     time.Time
	Remarks        string
	Address        string
	ContactNumbers []string
	Website        string
}

var amountPrinter = message.NewPrinter(language.English)

// FormatKyat renders a whole-Kyat amount with thousands separators, e.g. "1,250,000".
func FormatKyat(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

// Ordinal renders 1st, 2nd, 3rd, 4th ... for installment slot labels.
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// ReceiptRenderer prints receipts on A5 portrait pages.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render lays out header, student block, payment details, the installment grid and footer.
func (r *ReceiptRenderer) Render(doc ReceiptDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	width, _ := pdf.GetPageSize()
	content := width - 20

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(content, 7, doc.SchoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(content, 6, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(content/2, 5, "Receipt No: "+doc.ReceiptNo, "", 0, "L", false, 0, "")
	pdf.CellFormat(content/2, 5, "Date: "+doc.IssuedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(content, 6, title, "", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 9)
	}
	line := func(label, value string) {
		pdf.CellFormat(35, 5.5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(content-35, 5.5, value, "", 1, "L", false, 0, "")
	}

	section("STUDENT INFORMATION")
	line("Student Name", doc.StudentName)
	line("Campus", doc.Campus)
	line("Year", doc.YearLevel)
	line("Academic Year", doc.AcademicYear)
	line("Phone", doc.Phone)
	pdf.Ln(2)

	section("PAYMENT DETAILS")
	line("Total Amount", FormatKyat(doc.Amount)+" MMK")
	line("Payment Method", strings.ToUpper(doc.PaymentMethod))
	if doc.BankName != "" {
		line("Bank", doc.BankName)
	}
	pdf.Ln(2)

	section("INSTALLMENTS")
	cellWidth := content / 2
	for i, slot := range doc.Slots {
		amount := "-"
		if slot.Amount != nil {
			amount = FormatKyat(*slot.Amount)
		}
		fill := slot.Current
		if fill {
			pdf.SetFillColor(225, 236, 255)
		}
		pdf.CellFormat(cellWidth*0.55, 6, Ordinal(slot.Number)+" Install", "1", 0, "L", fill, 0, "")
		ln := 0
		if i%2 == 1 || i == len(doc.Slots)-1 {
			ln = 1
		}
		pdf.CellFormat(cellWidth*0.45, 6, amount, "1", ln, "R", fill, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 9)
	line("Received By", doc.ReceivedBy)
	line("Received Date", doc.ReceivedAt.Format("02 Jan 2006"))
	if doc.Remarks != "" {
		pdf.CellFormat(35, 5.5, "Remarks", "", 0, "L", false, 0, "")
		pdf.MultiCell(content-35, 5.5, doc.Remarks, "", "L", false)
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 7)
	if doc.Address != "" {
		pdf.MultiCell(content, 4, doc.Address, "", "C", false)
	}
	if len(doc.ContactNumbers) > 0 {
		pdf.MultiCell(content, 4, strings.Join(doc.ContactNumbers, " | "), "", "C", false)
	}
	if doc.Website != "" {
		pdf.CellFormat(content, 4, doc.Website, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
