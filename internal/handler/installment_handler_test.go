package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	"github.com/noah-isme/sma-fee-api/internal/service"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

type installmentServiceMock struct {
	createReq service.CreateInstallmentRequest
	createErr error
	rows      []models.InstallmentRow
	state     service.DashboardState
	updateReq service.UpdateInstallmentStatusRequest
	updateErr error
	exportFmt string
	exportErr error
}

func (m *installmentServiceMock) Create(ctx context.Context, req service.CreateInstallmentRequest) (*models.Installment, error) {
	m.createReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Installment{ID: 11, StudentID: req.StudentID, Status: models.StatusPending}, nil
}

func (m *installmentServiceMock) ListAll(ctx context.Context) ([]models.InstallmentRow, error) {
	return m.rows, nil
}

func (m *installmentServiceMock) Dashboard(ctx context.Context, state service.DashboardState) (*dto.DashboardPage, error) {
	m.state = state
	page := state.Apply(m.rows)
	return &page, nil
}

func (m *installmentServiceMock) UpdateStatus(ctx context.Context, req service.UpdateInstallmentStatusRequest) (*models.Installment, error) {
	m.updateReq = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.Installment{ID: req.ID, Status: models.InstallmentStatus(req.Status)}, nil
}

func (m *installmentServiceMock) Export(ctx context.Context, state service.DashboardState, format string) (*service.ExportFile, error) {
	m.exportFmt = format
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return &service.ExportFile{Filename: "installments.csv", ContentType: "text/csv", Data: []byte("ID\n1\n")}, nil
}

type receiptLinkMock struct {
	id  int64
	err error
}

func (m *receiptLinkMock) ShareLink(ctx context.Context, installmentID int64) (*dto.ReceiptLink, error) {
	m.id = installmentID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ReceiptLink{URL: "http://localhost/receipts/shared/tok", Token: "tok"}, nil
}

func dashboardRows(n int) []models.InstallmentRow {
	rows := make([]models.InstallmentRow, n)
	for i := range rows {
		rows[i] = models.InstallmentRow{Installment: models.Installment{ID: int64(i + 1), Status: models.StatusPending}, StudentName: "Pupil"}
	}
	return rows
}

func TestInstallmentHandlerCreate(t *testing.T) {
	svc := &installmentServiceMock{}
	h := NewInstallmentHandler(svc, &receiptLinkMock{})

	body := []byte(`{"studentId":5,"amount":150000,"isOneTimePayment":false,"installmentNumber":2,"paymentReceiptUrl":"http://x/a.jpg","paymentMethod":"cash"}`)
	c, w := newGinContext(http.MethodPost, "/installments", body)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(5), svc.createReq.StudentID)
	require.NotNil(t, svc.createReq.InstallmentNumber)
	assert.Equal(t, 2, *svc.createReq.InstallmentNumber)
}

func TestInstallmentHandlerCreateConflict(t *testing.T) {
	svc := &installmentServiceMock{createErr: appErrors.Clone(appErrors.ErrConflict, "slot already submitted")}
	h := NewInstallmentHandler(svc, &receiptLinkMock{})

	c, w := newGinContext(http.MethodPost, "/installments", []byte(`{"studentId":5}`))
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInstallmentHandlerDashboardPaginates(t *testing.T) {
	svc := &installmentServiceMock{rows: dashboardRows(25)}
	h := NewInstallmentHandler(svc, &receiptLinkMock{})

	c, w := newGinContext(http.MethodGet, "/admin/installments/dashboard?status=pending&page=3", nil)
	h.Dashboard(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.Page)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.Equal(t, 25, env.Pagination.TotalCount)

	var page dto.DashboardPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 5)
	assert.True(t, page.ShowPagination)
	assert.Equal(t, "pending", svc.state.Status)
}

func TestInstallmentHandlerUpdateStatus(t *testing.T) {
	svc := &installmentServiceMock{}
	h := NewInstallmentHandler(svc, &receiptLinkMock{})

	c, w := newGinContext(http.MethodPatch, "/admin/installments", []byte(`{"id":9,"status":"paid","paymentDate":"2024-05-01"}`))
	h.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-05-01", svc.updateReq.PaymentDate)

	svc.updateErr = appErrors.Clone(appErrors.ErrNotFound, "installment not found")
	c, w = newGinContext(http.MethodPatch, "/admin/installments", []byte(`{"id":10,"status":"paid"}`))
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstallmentHandlerExport(t *testing.T) {
	svc := &installmentServiceMock{}
	h := NewInstallmentHandler(svc, &receiptLinkMock{})

	c, w := newGinContext(http.MethodGet, "/admin/installments/export?format=csv", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.exportFmt)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="installments.csv"`)
}

func TestInstallmentHandlerReceiptLink(t *testing.T) {
	links := &receiptLinkMock{}
	h := NewInstallmentHandler(&installmentServiceMock{}, links)

	c, w := newGinContext(http.MethodPost, "/admin/installments/4/receipt-link", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.ReceiptLink(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(4), links.id)

	links.err = appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
	c, w = newGinContext(http.MethodPost, "/admin/installments/4/receipt-link", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.ReceiptLink(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
