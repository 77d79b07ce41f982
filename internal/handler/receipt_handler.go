package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/pkg/response"
)

type receiptService interface {
	View(ctx context.Context, studentID, installmentID int64) (*dto.ReceiptView, error)
	PDF(ctx context.Context, studentID, installmentID int64) ([]byte, string, error)
	Shared(ctx context.Context, token string) ([]byte, string, error)
}

// ReceiptHandler serves receipts for paid installments.
type ReceiptHandler struct {
	receipts receiptService
}

// NewReceiptHandler constructs ReceiptHandler.
func NewReceiptHandler(receipts receiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// View godoc
// @Summary Receipt for a paid installment
// @Tags Receipts
// @Produce json
// @Param id path int true "Student ID"
// @Param installmentId path int true "Installment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/installments/{installmentId}/receipt [get]
func (h *ReceiptHandler) View(c *gin.Context) {
	studentID, installmentID, ok := receiptIDs(c)
	if !ok {
		return
	}
	view, err := h.receipts.View(c.Request.Context(), studentID, installmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// PDF godoc
// @Summary Printable receipt
// @Tags Receipts
// @Produce application/pdf
// @Param id path int true "Student ID"
// @Param installmentId path int true "Installment ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/installments/{installmentId}/receipt.pdf [get]
func (h *ReceiptHandler) PDF(c *gin.Context) {
	studentID, installmentID, ok := receiptIDs(c)
	if !ok {
		return
	}
	data, filename, err := h.receipts.PDF(c.Request.Context(), studentID, installmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "application/pdf", filename, true, data)
}

// Shared godoc
// @Summary Receipt behind a signed link
// @Tags Receipts
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /receipts/shared/{token} [get]
func (h *ReceiptHandler) Shared(c *gin.Context) {
	data, filename, err := h.receipts.Shared(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "application/pdf", filename, true, data)
}

func receiptIDs(c *gin.Context) (int64, int64, bool) {
	studentID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	installmentID, err := pathID(c, "installmentId")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	return studentID, installmentID, true
}
