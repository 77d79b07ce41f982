package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/models"
)

func TestReceiptEligible(t *testing.T) {
	assert.True(t, ReceiptEligible(models.Installment{Status: models.StatusPaid}))
	assert.True(t, ReceiptEligible(models.Installment{Status: "PAID"}))
	assert.False(t, ReceiptEligible(models.Installment{Status: models.StatusPending, Amount: 1000}))
	assert.False(t, ReceiptEligible(models.Installment{Status: models.StatusRejected, PaymentReceiptURL: "x"}))
}

func TestProjectGridRevealsOnlyPaidAmounts(t *testing.T) {
	items := []models.Installment{
		{ID: 1, InstallmentNumber: intPtr(1), Status: models.StatusPaid, Amount: 1000},
		{ID: 2, InstallmentNumber: intPtr(2), Status: models.StatusPending, Amount: 2000},
	}

	grid := ProjectGrid(items, 2)
	require.Len(t, grid, models.MaxInstallmentSlots)
	require.NotNil(t, grid[0].Amount)
	assert.Equal(t, int64(1000), *grid[0].Amount)
	assert.Nil(t, grid[1].Amount)
	assert.True(t, grid[1].Current)
	assert.False(t, grid[0].Current)
	for i := 2; i < models.MaxInstallmentSlots; i++ {
		assert.Equal(t, i+1, grid[i].Number)
		assert.Nil(t, grid[i].Amount)
	}
}

func TestProjectGridIgnoresOneTimeAndRejectedResubmissions(t *testing.T) {
	items := []models.Installment{
		{ID: 1, Status: models.StatusPaid, Amount: 9000},
		{ID: 2, InstallmentNumber: intPtr(3), Status: models.StatusRejected, Amount: 3000},
		{ID: 3, InstallmentNumber: intPtr(3), Status: models.StatusPaid, Amount: 3100},
	}

	grid := ProjectGrid(items, 0)
	require.NotNil(t, grid[2].Amount)
	assert.Equal(t, int64(3100), *grid[2].Amount)
	for _, slot := range grid {
		assert.False(t, slot.Current)
	}
}
