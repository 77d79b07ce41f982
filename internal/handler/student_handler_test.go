package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/models"
	"github.com/noah-isme/sma-fee-api/internal/service"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type studentServiceMock struct {
	created   *models.Student
	createErr error
	got       *dto.StudentInstallments
	getErr    error
	getID     int64
	lookupArg [2]string
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *studentServiceMock) Get(ctx context.Context, id int64) (*dto.StudentInstallments, error) {
	m.getID = id
	return m.got, m.getErr
}

func (m *studentServiceMock) Lookup(ctx context.Context, name, dateOfBirth string) (*models.Student, error) {
	m.lookupArg = [2]string{name, dateOfBirth}
	if m.created == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return m.created, nil
}

func TestStudentHandlerCreate(t *testing.T) {
	svc := &studentServiceMock{created: &models.Student{ID: 7, StudentName: "Aung Aung"}}
	h := NewStudentHandler(svc)

	body, _ := json.Marshal(map[string]interface{}{"studentName": "Aung Aung"})
	c, w := newGinContext(http.MethodPost, "/students", body)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var student models.Student
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &student))
	assert.Equal(t, int64(7), student.ID)
}

func TestStudentHandlerCreateMalformedJSON(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{})
	c, w := newGinContext(http.MethodPost, "/students", []byte("{"))
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestStudentHandlerGet(t *testing.T) {
	svc := &studentServiceMock{got: &dto.StudentInstallments{Student: models.Student{ID: 3}}}
	h := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), svc.getID)

	c, w = newGinContext(http.MethodGet, "/students/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.getErr = appErrors.Clone(appErrors.ErrNotFound, "student not found")
	c, w = newGinContext(http.MethodGet, "/students/4", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerLookup(t *testing.T) {
	svc := &studentServiceMock{}
	h := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students/lookup?studentName=Mya&dateOfBirth=2015-04-01", nil)
	h.Lookup(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, [2]string{"Mya", "2015-04-01"}, svc.lookupArg)
}
