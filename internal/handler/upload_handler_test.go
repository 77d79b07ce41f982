package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/storage"
)

type uploadServiceMock struct {
	limit    int64
	received []byte
	err      error
}

func (m *uploadServiceMock) MaxFileSize() int64 { return m.limit }

func (m *uploadServiceMock) SaveProof(ctx context.Context, data []byte) (*dto.UploadedProof, error) {
	m.received = data
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UploadedProof{URL: "http://localhost/api/v1/uploads/payment-proofs/a.jpg", Name: "a.jpg"}, nil
}

func multipartContext(t *testing.T, field string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "proof.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	c, w := newGinContext(http.MethodPost, "/uploads/payment-proof", body.Bytes())
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func TestUploadHandlerUploadProof(t *testing.T) {
	svc := &uploadServiceMock{limit: 1024}
	h := NewUploadHandler(svc, nil)

	c, w := multipartContext(t, "file", []byte("image-bytes"))
	h.UploadProof(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []byte("image-bytes"), svc.received)
}

func TestUploadHandlerMissingFile(t *testing.T) {
	h := NewUploadHandler(&uploadServiceMock{limit: 1024}, nil)

	c, w := multipartContext(t, "other", []byte("image-bytes"))
	h.UploadProof(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandlerTooLarge(t *testing.T) {
	h := NewUploadHandler(&uploadServiceMock{limit: 16}, nil)

	c, w := multipartContext(t, "file", bytes.Repeat([]byte("x"), 64))
	h.UploadProof(c)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadHandlerServiceRejection(t *testing.T) {
	svc := &uploadServiceMock{limit: 1024, err: appErrors.Clone(appErrors.ErrValidation, "unsupported image format")}
	h := NewUploadHandler(svc, nil)

	c, w := multipartContext(t, "file", []byte("plain text"))
	h.UploadProof(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandlerServeProof(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("payment-proofs/abc.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	h := NewUploadHandler(&uploadServiceMock{}, store)

	c, w := newGinContext(http.MethodGet, "/uploads/payment-proofs/abc.jpg", nil)
	c.Params = gin.Params{{Key: "name", Value: "abc.jpg"}}
	h.ServeProof(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	for _, name := range []string{"missing.jpg", "..", ".hidden"} {
		c, w = newGinContext(http.MethodGet, "/uploads/payment-proofs/x", nil)
		c.Params = gin.Params{{Key: "name", Value: name}}
		h.ServeProof(c)
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}
