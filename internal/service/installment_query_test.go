package service

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/models"
)

func snapshot(n int) []models.InstallmentRow {
	rows := make([]models.InstallmentRow, 0, n)
	for i := 1; i <= n; i++ {
		status := models.StatusPending
		if i%2 == 0 {
			status = models.StatusPaid
		}
		rows = append(rows, models.InstallmentRow{
			Installment: models.Installment{ID: int64(i), Status: status},
			StudentName: fmt.Sprintf("Student %02d", i),
		})
	}
	return rows
}

func TestFilterInstallmentsByName(t *testing.T) {
	rows := snapshot(15)
	rows[2].StudentName = "Aung Kyaw"
	rows[7].StudentName = "Kyaw Zin"
	rows[12].StudentName = "Min KYAW"

	filtered := FilterInstallments(rows, "kyaw", StatusFilterAll)
	require.Len(t, filtered, 3)
	assert.Equal(t, []int64{3, 8, 13}, []int64{filtered[0].ID, filtered[1].ID, filtered[2].ID})

	page := Paginate(filtered, 1, DashboardPageSize)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.ShowPagination)
}

func TestFilterInstallmentsByIDSubstring(t *testing.T) {
	rows := snapshot(15)
	for i := range rows {
		rows[i].StudentName = "Pupil"
	}
	filtered := FilterInstallments(rows, "1", "")
	ids := make([]int64, 0, len(filtered))
	for _, row := range filtered {
		ids = append(ids, row.ID)
	}
	assert.Equal(t, []int64{1, 10, 11, 12, 13, 14, 15}, ids)
}

func TestFilterInstallmentsByStatus(t *testing.T) {
	rows := snapshot(6)
	paid := FilterInstallments(rows, "", "paid")
	require.Len(t, paid, 3)
	for _, row := range paid {
		assert.Equal(t, models.StatusPaid, row.Status)
	}
	assert.Len(t, FilterInstallments(rows, "", "all"), 6)
	assert.Empty(t, FilterInstallments(rows, "", "rejected"))
}

func TestPaginate(t *testing.T) {
	rows := snapshot(25)

	first := Paginate(rows, 1, DashboardPageSize)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 25, first.TotalCount)
	assert.True(t, first.ShowPagination)

	last := Paginate(rows, 3, DashboardPageSize)
	assert.Len(t, last.Items, 5)
	assert.Equal(t, int64(21), last.Items[0].ID)

	clamped := Paginate(rows, 0, DashboardPageSize)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, int64(1), clamped.Items[0].ID)

	beyond := Paginate(rows, 9, DashboardPageSize)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)

	empty := Paginate(nil, 1, DashboardPageSize)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.ShowPagination)
}

func TestDashboardStateResetsPageOnlyWhenPresent(t *testing.T) {
	withPage := ParseDashboardState(url.Values{"page": {"3"}, "status": {"paid"}})
	assert.True(t, withPage.HasPage)
	assert.Equal(t, 3, withPage.Page)

	assert.Equal(t, 1, withPage.WithSearch("mya").Page)
	assert.Equal(t, 1, withPage.WithStatus("pending").Page)
	assert.Equal(t, 3, withPage.WithStatus("paid").Page)

	withoutPage := ParseDashboardState(url.Values{"search": {"mya"}})
	assert.False(t, withoutPage.HasPage)
	changed := withoutPage.WithSearch("kyaw")
	assert.Equal(t, 1, changed.Page)
	assert.False(t, changed.HasPage)
	assert.Empty(t, changed.Values().Get("page"))
}

func TestDashboardStateValuesRoundTrip(t *testing.T) {
	state := DashboardState{Search: "kyaw", Status: "paid"}.WithPage(2)
	values := state.Values()
	assert.Equal(t, "kyaw", values.Get("search"))
	assert.Equal(t, "paid", values.Get("status"))
	assert.Equal(t, "2", values.Get("page"))

	parsed := ParseDashboardState(values)
	assert.Equal(t, state, parsed)

	assert.Empty(t, DashboardState{Status: StatusFilterAll}.Values().Get("status"))
}

func TestDashboardStateInvalidPage(t *testing.T) {
	state := ParseDashboardState(url.Values{"page": {"abc"}})
	assert.True(t, state.HasPage)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, StatusFilterAll, state.Status)
}
