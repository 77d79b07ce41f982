package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/export"
	"github.com/noah-isme/sma-fee-api/pkg/storage"
)

type stubRenderer struct {
	docs []export.ReceiptDocument
}

func (s *stubRenderer) Render(doc export.ReceiptDocument) ([]byte, error) {
	s.docs = append(s.docs, doc)
	return []byte("%PDF-stub"), nil
}

type receiptFixture struct {
	svc          *ReceiptService
	installments *mockInstallmentRepo
	renderer     *stubRenderer
	created      time.Time
	paidAt       time.Time
}

func newReceiptFixture() *receiptFixture {
	created := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	paidAt := time.Date(2024, 8, 2, 15, 0, 0, 0, time.UTC)

	students := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, StudentName: "Aung Aung", Campus: models.CampusMain, YearLevel: models.YearLevel4, AcademicYear: "2024-2025", ContactNumber: "0911"},
		2: {ID: 2, StudentName: "Mya Mya"},
	}}
	installments := newMockInstallmentRepo()
	installments.nextID = 4
	installments.items[1] = &models.Installment{ID: 1, StudentID: 1, InstallmentType: models.InstallmentMonthly, InstallmentNumber: intPtr(1), Amount: 1000, Status: models.StatusPaid, PaymentDate: &paidAt, PaymentMethod: models.PaymentBank, BankName: strPtr("CB"), Note: strPtr("thanks"), CreatedAt: created}
	installments.items[2] = &models.Installment{ID: 2, StudentID: 1, InstallmentType: models.InstallmentMonthly, InstallmentNumber: intPtr(2), Amount: 2000, Status: models.StatusPending, CreatedAt: created}
	installments.items[3] = &models.Installment{ID: 3, StudentID: 1, InstallmentType: models.InstallmentMonthly, InstallmentNumber: intPtr(3), Amount: 3000, Status: models.StatusRejected, CreatedAt: created}
	installments.items[4] = &models.Installment{ID: 4, StudentID: 2, InstallmentType: models.InstallmentOneTime, Amount: 9000, Status: models.StatusPaid, PaymentDate: &paidAt, CreatedAt: created}

	renderer := &stubRenderer{}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewReceiptService(students, installments, renderer, signer, NewMetricsService(), ReceiptConfig{
		SchoolName:     "International School",
		ReceivedBy:     "Accounts Office",
		SharedLinkBase: "http://localhost:8080/api/v1/receipts/shared",
	}, zap.NewNop())
	return &receiptFixture{svc: svc, installments: installments, renderer: renderer, created: created, paidAt: paidAt}
}

func TestReceiptServiceViewPaid(t *testing.T) {
	f := newReceiptFixture()

	view, err := f.svc.View(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "R-000001", view.ReceiptNo)
	assert.Equal(t, "Aung Aung", view.Student.StudentName)
	assert.Equal(t, "bank", view.Payment.PaymentMethod)
	assert.Equal(t, "CB", *view.Payment.BankName)
	assert.Equal(t, f.paidAt, view.ReceivedAt)
	assert.Equal(t, f.created, view.IssuedAt)
	assert.Equal(t, "thanks", view.Remarks)
	require.NotNil(t, view.Grid[0].Amount)
	assert.True(t, view.Grid[0].Current)
	assert.Nil(t, view.Grid[1].Amount)
	assert.Nil(t, view.Grid[2].Amount)
}

func TestReceiptServiceNotFoundCases(t *testing.T) {
	f := newReceiptFixture()

	cases := map[string][2]int64{
		"pending":          {1, 2},
		"rejected":         {1, 3},
		"unknown student":  {9, 1},
		"unknown receipt":  {1, 99},
		"other's receipt":  {1, 4},
		"mismatched owner": {2, 1},
	}
	for name, ids := range cases {
		_, err := f.svc.View(context.Background(), ids[0], ids[1])
		require.Error(t, err, name)
		assert.True(t, appErrors.IsStatus(err, http.StatusNotFound), name)
	}
}

func TestReceiptServiceViewDefaultsCashAndCreatedDate(t *testing.T) {
	f := newReceiptFixture()
	f.installments.items[4].PaymentMethod = ""

	view, err := f.svc.View(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Equal(t, "cash", view.Payment.PaymentMethod)
	for _, slot := range view.Grid {
		assert.False(t, slot.Current)
	}
}

func TestReceiptServicePDF(t *testing.T) {
	f := newReceiptFixture()

	data, filename, err := f.svc.PDF(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "receipt-R-000001.pdf", filename)
	assert.NotEmpty(t, data)
	require.Len(t, f.renderer.docs, 1)
	doc := f.renderer.docs[0]
	assert.Equal(t, "International School", doc.SchoolName)
	assert.Equal(t, "CB", doc.BankName)
	assert.Len(t, doc.Slots, models.MaxInstallmentSlots)
}

func TestReceiptServiceShareLinkRoundTrip(t *testing.T) {
	f := newReceiptFixture()

	link, err := f.svc.ShareLink(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "http://localhost:8080/api/v1/receipts/shared/"))
	assert.True(t, link.ExpiresAt.After(time.Now()))

	data, _, err := f.svc.Shared(context.Background(), link.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = f.svc.ShareLink(context.Background(), 2)
	assert.True(t, appErrors.IsStatus(err, http.StatusNotFound))
}

func TestReceiptServiceSharedRejectsTamperedToken(t *testing.T) {
	f := newReceiptFixture()
	link, err := f.svc.ShareLink(context.Background(), 1)
	require.NoError(t, err)

	_, _, err = f.svc.Shared(context.Background(), link.Token+"x")
	assert.True(t, appErrors.IsStatus(err, http.StatusUnauthorized))

	_, _, err = f.svc.Shared(context.Background(), "garbage")
	assert.True(t, appErrors.IsStatus(err, http.StatusUnauthorized))
}

func TestReceiptServiceSharedRechecksEligibility(t *testing.T) {
	f := newReceiptFixture()
	link, err := f.svc.ShareLink(context.Background(), 1)
	require.NoError(t, err)

	f.installments.items[1].Status = models.StatusRejected
	f.installments.items[1].PaymentDate = nil

	_, _, err = f.svc.Shared(context.Background(), link.Token)
	assert.True(t, appErrors.IsStatus(err, http.StatusNotFound))
}
