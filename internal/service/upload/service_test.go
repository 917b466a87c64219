package upload

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/storage"
	"github.com/agricoventas/platform/pkg/errorbank"
)

type memStorage struct {
	uploaded []string
	deleted  []string
	err      error
}

func (s *memStorage) Upload(ctx context.Context, file io.Reader, folder string) (storage.Object, error) {
	if s.err != nil {
		return storage.Object{}, s.err
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return storage.Object{}, err
	}
	s.uploaded = append(s.uploaded, string(content))
	return storage.Object{URL: "https://cdn.example.com/img/abc123.png", PublicID: "img/abc123"}, nil
}

func (s *memStorage) Delete(ctx context.Context, publicID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, publicID)
	return nil
}

func newTestService(store storage.Store) *Service {
	return NewService(store, config.Config{
		Storage: config.Storage{
			UploadFolder:   "agricoventas",
			MaxUploadBytes: 1024,
		},
	}, zap.NewNop())
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, errorbank.From(err).Kind())
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an accepted image", func(t *testing.T) {
		store := &memStorage{}
		svc := newTestService(store)

		resp, err := svc.Upload(ctx, "Foto.JPG", 12, strings.NewReader("image-bytes!"))
		require.NoError(t, err)
		require.NotEmpty(t, resp.URL)
		require.NotEmpty(t, resp.PublicID)
		require.Equal(t, []string{"image-bytes!"}, store.uploaded)
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		svc := newTestService(&memStorage{})

		for _, name := range []string{"malware.exe", "doc.pdf", "noextension"} {
			_, err := svc.Upload(ctx, name, 10, strings.NewReader("x"))
			requireKind(t, err, errorbank.KindBadRequest)
		}
	})

	t.Run("rejects empty and oversized files", func(t *testing.T) {
		svc := newTestService(&memStorage{})

		_, err := svc.Upload(ctx, "a.png", 0, strings.NewReader(""))
		requireKind(t, err, errorbank.KindBadRequest)

		_, err = svc.Upload(ctx, "a.png", 2048, strings.NewReader("big"))
		requireKind(t, err, errorbank.KindBadRequest)
		require.Equal(t, int64(1024), errorbank.From(err).Details()["max_bytes"])
	})

	t.Run("unconfigured storage is unprocessable", func(t *testing.T) {
		svc := newTestService(&memStorage{err: storage.ErrNotConfigured})

		_, err := svc.Upload(ctx, "a.png", 10, strings.NewReader("x"))
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes by public id", func(t *testing.T) {
		store := &memStorage{}
		svc := newTestService(store)

		require.NoError(t, svc.Delete(ctx, "img/abc123"))
		require.Equal(t, []string{"img/abc123"}, store.deleted)
	})

	t.Run("empty public id is a bad request", func(t *testing.T) {
		svc := newTestService(&memStorage{})
		requireKind(t, svc.Delete(ctx, ""), errorbank.KindBadRequest)
	})
}
