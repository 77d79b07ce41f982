package dto

import "github.com/noah-isme/sma-fee-api/internal/models"

// DashboardPage is one filtered page of the admin installment table.
type DashboardPage struct {
	Items          []models.InstallmentRow `json:"items"`
	Page           int                     `json:"page"`
	PageSize       int                     `json:"pageSize"`
	TotalCount     int                     `json:"totalCount"`
	TotalPages     int                     `json:"totalPages"`
	ShowPagination bool                    `json:"showPagination"`
}

// StudentInstallments is a student with every submission and the paid-only grid.
type StudentInstallments struct {
	Student      models.Student       `json:"student"`
	Installments []models.Installment `json:"installments"`
	Grid         []GridSlot           `json:"grid"`
}

// UploadedProof describes a stored payment-proof image.
type UploadedProof struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
