package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode

	"github.com/noah-isme/sma-fee-api/internal/dto"
	appErrors "github.com/noah-isme/sma-fee-api/pkg/errors"
)

// ProofFolder is the storage prefix for payment-proof images.
const ProofFolder = "payment-proofs"

var allowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
}

// UploadConfig controls proof normalisation and the public URL base.
type UploadConfig struct {
	MaxFileSizeBytes int64
	MaxImageWidth    int
	MaxImageHeight   int
	MaxSourcePixels  int64
	JPEGQuality      int
	PublicURLBase    string
}

// UploadService stores payment-proof images and returns a stable URL for them.
type UploadService struct {
	storage fileStorage
	metrics *MetricsService
	config  UploadConfig
	logger  *zap.Logger
}

// NewUploadService constructs the upload service.
func NewUploadService(storage fileStorage, metrics *MetricsService, config UploadConfig, logger *zap.Logger) *UploadService {
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 4 * 1024 * 1024
	}
	if config.MaxImageWidth <= 0 {
		config.MaxImageWidth = 1600
	}
	if config.MaxImageHeight <= 0 {
		config.MaxImageHeight = 1600
	}
	if config.MaxSourcePixels <= 0 {
		config.MaxSourcePixels = 40_000_000
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = 85
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{storage: storage, metrics: metrics, config: config, logger: logger}
}

// MaxFileSize returns the accepted upload size in bytes.
func (s *UploadService) MaxFileSize() int64 {
	return s.config.MaxFileSizeBytes
}

// SaveProof decodes an uploaded jpeg, png or webp, downscales it and stores it as JPEG.
func (s *UploadService) SaveProof(ctx context.Context, data []byte) (*dto.UploadedProof, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if int64(len(data)) > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSizeBytes))
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType := http.DetectContentType(head)
	if !allowedProofTypes[contentType] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported image format, use jpg, png or webp")
	}

	// Header only; the pixel buffer is bounded before a full decode.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "image could not be decoded")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.config.MaxSourcePixels {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, s.config.MaxSourcePixels))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "image could not be decoded")
	}
	img = imaging.Fit(img, s.config.MaxImageWidth, s.config.MaxImageHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.config.JPEGQuality)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode image")
	}

	name := uuid.NewString() + ".jpg"
	if _, err := s.storage.Save(path.Join(ProofFolder, name), buf.Bytes()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}

	s.metrics.RecordProofUpload()
	s.logger.Info("payment proof stored", zap.String("name", name), zap.Int("bytes", buf.Len()))

	bounds := img.Bounds()
	return &dto.UploadedProof{
		URL:         strings.TrimRight(s.config.PublicURLBase, "/") + "/" + name,
		Name:        name,
		ContentType: "image/jpeg",
		Size:        buf.Len(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// ProofPath maps a served proof name to its storage path, rejecting anything that is not a bare file name.
func ProofPath(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return path.Join(ProofFolder, name), nil
}
