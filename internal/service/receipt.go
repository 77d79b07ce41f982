package service

import (
	"strings"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
)

// ReceiptEligible reports whether a receipt may be rendered for inst.
func ReceiptEligible(inst models.Installment) bool {
	return strings.EqualFold(string(inst.Status), string(models.StatusPaid))
}

// ProjectGrid builds the seven-slot grid from a student's installments.
// A slot reveals an amount only when the installment holding that number is paid.
// currentID flags the slot of the installment being viewed; pass 0 for none.
func ProjectGrid(installments []models.Installment, currentID int64) []dto.GridSlot {
	grid := make([]dto.GridSlot, models.MaxInstallmentSlots)
	for i := range grid {
		grid[i].Number = i + 1
	}
	for _, inst := range installments {
		if inst.InstallmentNumber == nil {
			continue
		}
		n := *inst.InstallmentNumber
		if n < 1 || n > models.MaxInstallmentSlots {
			continue
		}
		slot := &grid[n-1]
		if inst.ID == currentID && currentID != 0 {
			slot.Current = true
		}
		if ReceiptEligible(inst) {
			amount := inst.Amount
			slot.Amount = &amount
		}
	}
	return grid
}
