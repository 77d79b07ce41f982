package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	"github.com/noah-isme/sma-fee-api/internal/service"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/response"
)

type installmentService interface {
	Create(ctx context.Context, req service.CreateInstallmentRequest) (*models.Installment, error)
	ListAll(ctx context.Context) ([]models.InstallmentRow, error)
	Dashboard(ctx context.Context, state service.DashboardState) (*dto.DashboardPage, error)
	UpdateStatus(ctx context.Context, req service.UpdateInstallmentStatusRequest) (*models.Installment, error)
	Export(ctx context.Context, state service.DashboardState, format string) (*service.ExportFile, error)
}

type receiptLinkIssuer interface {
	ShareLink(ctx context.Context, installmentID int64) (*dto.ReceiptLink, error)
}

// InstallmentHandler exposes submission and the admin installment endpoints.
type InstallmentHandler struct {
	installments installmentService
	receipts     receiptLinkIssuer
}

// NewInstallmentHandler constructs InstallmentHandler.
func NewInstallmentHandler(installments installmentService, receipts receiptLinkIssuer) *InstallmentHandler {
	return &InstallmentHandler{installments: installments, receipts: receipts}
}

// Create godoc
// @Summary Submit installment payment
// @Tags Installments
// @Accept json
// @Produce json
// @Param payload body service.CreateInstallmentRequest true "Installment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /installments [post]
func (h *InstallmentHandler) Create(c *gin.Context) {
	var req service.CreateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid installment payload"))
		return
	}

	inst, err := h.installments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inst)
}

// List godoc
// @Summary List all installments
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/installments [get]
func (h *InstallmentHandler) List(c *gin.Context) {
	rows, err := h.installments.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"count": len(rows)})
}

// Dashboard godoc
// @Summary Filtered, paginated installment table
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Student name or installment id"
// @Param status query string false "pending, paid, rejected or all"
// @Param page query int false "Page (10 rows per page)"
// @Success 200 {object} response.Envelope
// @Router /admin/installments/dashboard [get]
func (h *InstallmentHandler) Dashboard(c *gin.Context) {
	state := service.ParseDashboardState(c.Request.URL.Query())
	page, err := h.installments.Dashboard(c.Request.Context(), state)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
	response.JSON(c, http.StatusOK, page, pagination, map[string]interface{}{"query": state.Values().Encode()})
}

// UpdateStatus godoc
// @Summary Change installment status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateInstallmentStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/installments [patch]
func (h *InstallmentHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateInstallmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	inst, err := h.installments.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inst, nil)
}

// Export godoc
// @Summary Export installments
// @Tags Admin
// @Produce application/octet-stream
// @Security BearerAuth
// @Param format query string false "xlsx (default), csv or pdf"
// @Param search query string false "Student name or installment id"
// @Param status query string false "pending, paid, rejected or all"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/installments/export [get]
func (h *InstallmentHandler) Export(c *gin.Context) {
	state := service.ParseDashboardState(c.Request.URL.Query())
	file, err := h.installments.Export(c.Request.Context(), state, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, false, file.Data)
}

// ReceiptLink godoc
// @Summary Issue a signed receipt link
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Installment ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/installments/{id}/receipt-link [post]
func (h *InstallmentHandler) ReceiptLink(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.receipts.ShareLink(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}
