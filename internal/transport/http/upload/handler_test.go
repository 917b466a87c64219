package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/entity"
	service "github.com/agricoventas/platform/internal/service/upload"
	"github.com/agricoventas/platform/internal/storage"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
)

type memStorage struct {
	deleted []string
}

func (s *memStorage) Upload(ctx context.Context, file io.Reader, folder string) (storage.Object, error) {
	return storage.Object{URL: "https://cdn.example.com/img/abc123.png", PublicID: "img/abc123"}, nil
}

func (s *memStorage) Delete(ctx context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *auth.TokenManager, *memStorage) {
	t.Helper()

	store := &memStorage{}
	cfg := config.Config{Storage: config.Storage{UploadFolder: "agricoventas", MaxUploadBytes: 1 << 20}}
	svc := service.NewService(store, cfg, zap.NewNop())

	tokens := auth.NewTokenManager(config.Config{
		Auth: config.Auth{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			Issuer:    "agricoventas-test",
		},
	})

	e := echo.New()
	e.Use(middleware.Authenticate(tokens))
	Register(e, NewHandler(svc))
	return e, tokens, store
}

func deleteUpload(t *testing.T, e *echo.Echo, tokens *auth.TokenManager, userID int64, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, "/api/uploads/abc123", nil)
	if role != "" {
		token, err := tokens.Issue(userID, "someone@example.com", role)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDeleteUploadAccess(t *testing.T) {
	t.Run("admin deletes an object", func(t *testing.T) {
		e, tokens, store := newTestRouter(t)
		rec := deleteUpload(t, e, tokens, 1, entity.RoleAdmin)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{"abc123"}, store.deleted)
	})

	t.Run("authenticated non-admins are forbidden", func(t *testing.T) {
		e, tokens, store := newTestRouter(t)
		for _, role := range []string{entity.RoleBuyer, entity.RoleSeller} {
			rec := deleteUpload(t, e, tokens, 7, role)
			require.Equal(t, http.StatusForbidden, rec.Code, role)
		}
		require.Empty(t, store.deleted)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		e, tokens, store := newTestRouter(t)
		rec := deleteUpload(t, e, tokens, 0, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, store.deleted)
	})
}
