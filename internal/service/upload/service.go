package upload

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/storage"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/upload")

// allowedExtensions are the image formats accepted for product and profile
// pictures.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Service validates and stores image uploads.
type Service struct {
	store    storage.Store
	folder   string
	maxBytes int64
	logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store storage.Store, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		folder:   cfg.Storage.UploadFolder,
		maxBytes: cfg.Storage.MaxUploadBytes,
		logger:   logger,
	}
}

// Upload validates the file name and size, then stores the content. The
// returned URL is persisted on the owning record by its update endpoint.
func (s *Service) Upload(ctx context.Context, filename string, size int64, file io.Reader) (dto.UploadResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "UploadService.Upload", trace.WithAttributes(
		attribute.Int64("upload.size", size),
	))
	defer span.End()

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return dto.UploadResponse{}, errorbank.BadRequest("unsupported file type",
			errorbank.WithDetail("extension", ext))
	}
	if size <= 0 {
		return dto.UploadResponse{}, errorbank.BadRequest("file is empty")
	}
	if size > s.maxBytes {
		return dto.UploadResponse{}, errorbank.BadRequest("file exceeds the size limit",
			errorbank.WithDetail("max_bytes", s.maxBytes))
	}

	// LimitReader guards against clients lying about Content-Length.
	object, err := s.store.Upload(ctx, io.LimitReader(file, s.maxBytes), s.folder)
	if errors.Is(err, storage.ErrNotConfigured) {
		return dto.UploadResponse{}, errorbank.Unprocessable("uploads are not enabled on this deployment")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return dto.UploadResponse{}, errorbank.Internal("failed to store file", errorbank.WithCause(err))
	}

	return dto.UploadResponse{URL: object.URL, PublicID: object.PublicID}, nil
}

// Delete removes a previously uploaded object.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	ctx, span := serviceTracer.Start(ctx, "UploadService.Delete")
	defer span.End()

	if publicID == "" {
		return errorbank.BadRequest("public_id is required")
	}

	err := s.store.Delete(ctx, publicID)
	if errors.Is(err, storage.ErrNotConfigured) {
		return errorbank.Unprocessable("uploads are not enabled on this deployment")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errorbank.Internal("failed to delete file", errorbank.WithCause(err))
	}
	return nil
}
