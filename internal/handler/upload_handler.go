package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-fee-api/internal/dto"
	"github.com/noah-isme/sma-fee-api/internal/service"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
	"github.com/noah-isme/sma-fee-api/pkg/response"
)

// multipartOverhead covers form boundaries and headers around the file part.
const multipartOverhead = 64 * 1024

type uploadService interface {
	MaxFileSize() int64
	SaveProof(ctx context.Context, data []byte) (*dto.UploadedProof, error)
}

type proofOpener interface {
	Open(name string) (*os.File, error)
}

// UploadHandler accepts payment-proof images and serves them back.
type UploadHandler struct {
	uploads uploadService
	files   proofOpener
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads uploadService, files proofOpener) *UploadHandler {
	return &UploadHandler{uploads: uploads, files: files}
}

// UploadProof godoc
// @Summary Upload payment proof
// @Description Accepts a jpg, png or webp image in the "file" field and returns its stable URL
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Payment proof image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /uploads/payment-proof [post]
func (h *UploadHandler) UploadProof(c *gin.Context) {
	limit := h.uploads.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", limit)))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if header.Size > limit {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", limit)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file could not be read"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file could not be read"))
		return
	}

	proof, err := h.uploads.SaveProof(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, proof)
}

// ServeProof godoc
// @Summary Serve payment proof
// @Tags Uploads
// @Produce image/jpeg
// @Param name path string true "File name"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /uploads/payment-proofs/{name} [get]
func (h *UploadHandler) ServeProof(c *gin.Context) {
	name := c.Param("name")
	path, err := service.ProofPath(name)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.files.Open(path)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}

	// names are random and never rewritten
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("Content-Type", "image/jpeg")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
