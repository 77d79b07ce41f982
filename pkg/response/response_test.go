package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/models"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONEnvelope(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, map[string]int{"id": 1}, &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11, TotalPages: 2})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `{"id":1}`, string(body["data"]))
	assert.JSONEq(t, `{"page":2,"pageSize":10,"totalCount":11,"totalPages":2}`, string(body["pagination"]))
	assert.NotContains(t, body, "error")
}

func TestErrorHidesInternalCause(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Wrap(errors.New("pq: connection refused"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list installments"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Len(t, c.Errors, 1)
}

func TestErrorPlainErrorBecomesInternal(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrInternal.Code)
}

func TestFileDisposition(t *testing.T) {
	c, w := newContext()
	File(c, "text/csv", "installments.csv", false, []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="installments.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestNoContent(t *testing.T) {
	c, w := newContext()
	NoContent(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
