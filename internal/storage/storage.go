package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/config"
)

// Object is the stored file reference returned after an upload.
type Object struct {
	URL      string
	PublicID string
}

// Store abstracts the object storage backend.
type Store interface {
	Upload(ctx context.Context, file io.Reader, folder string) (Object, error)
	Delete(ctx context.Context, publicID string) error
}

// ErrNotConfigured indicates the storage backend has no credentials.
var ErrNotConfigured = errors.New("object storage not configured")

// Module provides the storage store to the Fx graph.
var Module = fx.Provide(NewStore)

// NewStore builds a Cloudinary-backed store, or a disabled stub when no
// CLOUDINARY_URL is configured.
func NewStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	if cfg.Storage.CloudinaryURL == "" {
		logger.Info("object storage disabled; uploads will be rejected")
		return disabledStore{}, nil
	}

	cld, err := cloudinary.NewFromURL(cfg.Storage.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}

	return &cloudinaryStore{cld: cld, folder: cfg.Storage.UploadFolder, logger: logger}, nil
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, io.Reader, string) (Object, error) {
	return Object{}, ErrNotConfigured
}

func (disabledStore) Delete(context.Context, string) error {
	return ErrNotConfigured
}

type cloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

func (s *cloudinaryStore) Upload(ctx context.Context, file io.Reader, folder string) (Object, error) {
	if folder == "" {
		folder = s.folder
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString())
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return Object{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil || (resp.SecureURL == "" && resp.URL == "") {
		return Object{}, errors.New("cloudinary returned no URL")
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}

	return Object{URL: url, PublicID: resp.PublicID}, nil
}

func (s *cloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: %s", result.Result)
	}
	return nil
}
