package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/internal/service/history"
	service "github.com/agricoventas/platform/internal/service/product"
	reviewsvc "github.com/agricoventas/platform/internal/service/review"
	"github.com/agricoventas/platform/internal/transport/http/middleware"
)

type stubProductStore struct {
	products map[int64]*entity.Product
}

func (s *stubProductStore) Insert(ctx context.Context, product *entity.Product) error { return nil }

func (s *stubProductStore) GetByID(ctx context.Context, productID int64) (*entity.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, service.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductStore) List(ctx context.Context, q dto.ProductQuery) ([]entity.Product, int, error) {
	return nil, 0, nil
}

func (s *stubProductStore) Update(ctx context.Context, product *entity.Product) error { return nil }

func (s *stubProductStore) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	return true, nil
}

type openGate struct{}

func (openGate) HasAllCertifications(ctx context.Context, userID int64) (bool, []string, error) {
	return true, nil, nil
}

type noopAuditor struct{}

func (noopAuditor) Record(ctx context.Context, actorID int64, changeType string, before, after *entity.Product) {
}

type stubHistoryStore struct {
	rows []entity.ProductHistory
}

func (s *stubHistoryStore) InsertAll(ctx context.Context, rows []entity.ProductHistory) error {
	return nil
}

func (s *stubHistoryStore) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.ProductHistory, int, error) {
	return s.rows, len(s.rows), nil
}

func (s *stubHistoryStore) PriceRows(ctx context.Context, productID int64) ([]entity.ProductHistory, error) {
	return nil, nil
}

type stubReviewStore struct{}

func (stubReviewStore) Insert(ctx context.Context, review *entity.Review) error { return nil }
func (stubReviewStore) GetByID(ctx context.Context, reviewID int64) (*entity.Review, error) {
	return nil, reviewsvc.ErrReviewNotFound
}
func (stubReviewStore) GetByProductUser(ctx context.Context, productID, userID int64) (*entity.Review, error) {
	return nil, reviewsvc.ErrReviewNotFound
}
func (stubReviewStore) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error) {
	return nil, 0, nil
}
func (stubReviewStore) Update(ctx context.Context, review *entity.Review) error { return nil }
func (stubReviewStore) Delete(ctx context.Context, reviewID int64) error        { return nil }
func (stubReviewStore) Summary(ctx context.Context, productID int64) (dto.ReviewSummary, error) {
	return dto.ReviewSummary{}, nil
}
func (stubReviewStore) ProductSeller(ctx context.Context, productID int64) (int64, error) {
	return 0, reviewsvc.ErrProductNotFound
}

func newTestRouter(t *testing.T) (*echo.Echo, *auth.TokenManager) {
	t.Helper()

	svc := service.NewService(service.Params{
		Store: &stubProductStore{products: map[int64]*entity.Product{
			1: {ID: 1, SellerID: 99, Name: "Café de Huila", BasePrice: 4500, StockQuantity: 3, IsActive: true},
		}},
		Gate:    openGate{},
		Auditor: noopAuditor{},
		Logger:  zap.NewNop(),
	})
	recorder := history.NewRecorder(&stubHistoryStore{rows: []entity.ProductHistory{
		{ID: 1, ProductID: 1, UserID: 99, ChangeType: entity.ChangeUpdate, Field: history.FieldStockQuantity, OldValue: "5", NewValue: "3"},
	}}, zap.NewNop())
	reviews := reviewsvc.NewService(stubReviewStore{}, zap.NewNop())

	tokens := auth.NewTokenManager(config.Config{
		Auth: config.Auth{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			Issuer:    "agricoventas-test",
		},
	})

	e := echo.New()
	e.Use(middleware.Authenticate(tokens))
	Register(e, NewHandler(svc, recorder, reviews))
	return e, tokens
}

func getHistory(t *testing.T, e *echo.Echo, tokens *auth.TokenManager, userID int64, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/products/1/history", nil)
	if role != "" {
		token, err := tokens.Issue(userID, "someone@example.com", role)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProductHistoryAccess(t *testing.T) {
	e, tokens := newTestRouter(t)

	t.Run("owner reads the audit trail", func(t *testing.T) {
		rec := getHistory(t, e, tokens, 99, entity.RoleSeller)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "stockQuantity")
	})

	t.Run("another seller is forbidden even for an active product", func(t *testing.T) {
		rec := getHistory(t, e, tokens, 55, entity.RoleSeller)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.NotContains(t, rec.Body.String(), "stockQuantity")
	})

	t.Run("admin reads any audit trail", func(t *testing.T) {
		rec := getHistory(t, e, tokens, 1, entity.RoleAdmin)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("buyers never reach the handler", func(t *testing.T) {
		rec := getHistory(t, e, tokens, 3, entity.RoleBuyer)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		rec := getHistory(t, e, tokens, 0, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
