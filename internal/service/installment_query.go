package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
)

// DashboardPageSize is the fixed number of rows per dashboard page.
const DashboardPageSize = 10

// StatusFilterAll disables status filtering.
const StatusFilterAll = "all"

// FilterInstallments narrows a snapshot by search term and status, preserving input order.
// The term matches the student name case-insensitively or the decimal installment id as a substring.
func FilterInstallments(rows []models.InstallmentRow, search, status string) []models.InstallmentRow {
	term := strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)

	filtered := make([]models.InstallmentRow, 0, len(rows))
	for _, row := range rows {
		if term != "" &&
			!strings.Contains(strings.ToLower(row.StudentName), term) &&
			!strings.Contains(strconv.FormatInt(row.ID, 10), term) {
			continue
		}
		if status != "" && status != StatusFilterAll && string(row.Status) != status {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// Paginate slices rows into the requested page. Pages below 1 clamp to 1; pages past the end are empty.
func Paginate(rows []models.InstallmentRow, page, size int) dto.DashboardPage {
	if size <= 0 {
		size = DashboardPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(rows)
	totalPages := (total + size - 1) / size

	items := []models.InstallmentRow{}
	start := (page - 1) * size
	if start < total {
		end := start + size
		if end > total {
			end = total
		}
		items = rows[start:end]
	}

	return dto.DashboardPage{
		Items:          items,
		Page:           page,
		PageSize:       size,
		TotalCount:     total,
		TotalPages:     totalPages,
		ShowPagination: totalPages > 1,
	}
}

// DashboardState is the dashboard's query state as carried in its URL.
type DashboardState struct {
	Search  string
	Status  string
	Page    int
	HasPage bool
}

// ParseDashboardState reads search, status and page from query values.
func ParseDashboardState(values url.Values) DashboardState {
	state := DashboardState{
		Search: values.Get("search"),
		Status: values.Get("status"),
		Page:   1,
	}
	if state.Status == "" {
		state.Status = StatusFilterAll
	}
	if raw, ok := values["page"]; ok && len(raw) > 0 {
		state.HasPage = true
		if page, err := strconv.Atoi(raw[0]); err == nil && page > 0 {
			state.Page = page
		}
	}
	return state
}

// WithSearch changes the search term. The page resets to 1 only when a page parameter was present.
func (s DashboardState) WithSearch(term string) DashboardState {
	if term != s.Search && s.HasPage {
		s.Page = 1
	}
	s.Search = term
	return s
}

// WithStatus changes the status filter. The page resets to 1 only when a page parameter was present.
func (s DashboardState) WithStatus(status string) DashboardState {
	if status == "" {
		status = StatusFilterAll
	}
	if status != s.Status && s.HasPage {
		s.Page = 1
	}
	s.Status = status
	return s
}

// WithPage moves to page.
func (s DashboardState) WithPage(page int) DashboardState {
	if page < 1 {
		page = 1
	}
	s.Page = page
	s.HasPage = true
	return s
}

// Values encodes the state back into query parameters.
func (s DashboardState) Values() url.Values {
	values := url.Values{}
	if s.Search != "" {
		values.Set("search", s.Search)
	}
	if s.Status != "" && s.Status != StatusFilterAll {
		values.Set("status", s.Status)
	}
	if s.HasPage {
		values.Set("page", strconv.Itoa(s.Page))
	}
	return values
}

// Apply filters and paginates a snapshot according to the state.
func (s DashboardState) Apply(rows []models.InstallmentRow) dto.DashboardPage {
	return Paginate(FilterInstallments(rows, s.Search, s.Status), s.Page, DashboardPageSize)
}
