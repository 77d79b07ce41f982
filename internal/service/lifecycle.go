package service

import (
	"strings"
	"time"

	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

// Transition describes a requested status change.
type Transition struct {
	Status      models.InstallmentStatus
	Note        string
	PaymentDate *time.Time
}

// ParseStatus normalises a raw status string into a known installment status.
func ParseStatus(raw string) (models.InstallmentStatus, error) {
	status := models.InstallmentStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case models.StatusPending, models.StatusPaid, models.StatusRejected:
		return status, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown installment status")
	}
}

// CanTransition reports whether from -> to is an allowed lifecycle edge.
func CanTransition(from, to models.InstallmentStatus) bool {
	switch to {
	case models.StatusRejected:
		return true
	case models.StatusPaid:
		return from == models.StatusPending || from == models.StatusPaid
	default:
		return false
	}
}

// ApplyTransition returns a copy of inst with the transition's effects applied.
// Only status, payment date, note and updated_at may change.
func ApplyTransition(inst models.Installment, tr Transition, now time.Time) (models.Installment, error) {
	if !CanTransition(inst.Status, tr.Status) {
		return inst, appErrors.Clone(appErrors.ErrValidation, "transition from "+string(inst.Status)+" to "+string(tr.Status)+" is not allowed")
	}
	if tr.PaymentDate != nil && tr.PaymentDate.IsZero() {
		return inst, appErrors.Clone(appErrors.ErrValidation, "payment date is invalid")
	}

	next := inst
	switch tr.Status {
	case models.StatusPaid:
		switch {
		case tr.PaymentDate != nil:
			paidAt := tr.PaymentDate.UTC()
			next.PaymentDate = &paidAt
		case inst.Status == models.StatusPaid && inst.PaymentDate != nil:
			// update payment keeps the recorded date
		default:
			paidAt := now.UTC()
			next.PaymentDate = &paidAt
		}
	case models.StatusRejected:
		next.PaymentDate = nil
	}

	if note := strings.TrimSpace(tr.Note); note != "" {
		next.Note = &note
	}
	next.Status = tr.Status
	next.UpdatedAt = now.UTC()
	return next, nil
}

// ParsePaymentDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func ParsePaymentDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			if ts.IsZero() {
				break
			}
			return &ts, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "payment date is malformed")
}
