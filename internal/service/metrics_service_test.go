package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsServiceRecordsDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordInstallmentCreated("monthly")
	m.RecordTransition("pending", "paid")
	m.RecordTransition("pending", "paid")
	m.RecordReceipt("pdf")
	m.RecordProofUpload()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `installments_created_total{type="monthly"} 1`)
	assert.Contains(t, body, `installment_transitions_total{from="pending",to="paid"} 2`)
	assert.Contains(t, body, `receipts_rendered_total{format="pdf"} 1`)
	assert.Contains(t, body, "payment_proofs_uploaded_total 1")
	assert.Contains(t, body, "cache_hit_ratio 0.5")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
		m.RecordTransition("pending", "rejected")
		m.RecordProofUpload()
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
