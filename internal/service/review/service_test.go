package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

type memStore struct {
	reviews map[int64]*entity.Review
	sellers map[int64]int64
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		reviews: map[int64]*entity.Review{},
		sellers: map[int64]int64{1: 7},
	}
}

func (s *memStore) Insert(ctx context.Context, review *entity.Review) error {
	s.nextID++
	review.ID = s.nextID
	cp := *review
	s.reviews[review.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, reviewID int64) (*entity.Review, error) {
	r, ok := s.reviews[reviewID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) GetByProductUser(ctx context.Context, productID, userID int64) (*entity.Review, error) {
	for _, r := range s.reviews {
		if r.ProductID == productID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (s *memStore) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.Review, int, error) {
	var out []entity.Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (s *memStore) Update(ctx context.Context, review *entity.Review) error {
	if _, ok := s.reviews[review.ID]; !ok {
		return ErrReviewNotFound
	}
	cp := *review
	s.reviews[review.ID] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, reviewID int64) error {
	if _, ok := s.reviews[reviewID]; !ok {
		return ErrReviewNotFound
	}
	delete(s.reviews, reviewID)
	return nil
}

func (s *memStore) Summary(ctx context.Context, productID int64) (dto.ReviewSummary, error) {
	var sum, count int
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	summary := dto.ReviewSummary{ReviewCount: count}
	if count > 0 {
		summary.AverageRating = float64(sum) / float64(count)
	}
	return summary, nil
}

func (s *memStore) ProductSeller(ctx context.Context, productID int64) (int64, error) {
	sellerID, ok := s.sellers[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return sellerID, nil
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, errorbank.From(err).Kind())
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 3, Role: entity.RoleBuyer}

	t.Run("buyer reviews a product once", func(t *testing.T) {
		svc := NewService(newMemStore(), zap.NewNop())

		review, err := svc.Create(ctx, buyer, dto.CreateReviewRequest{ProductID: 1, Rating: 4, Comment: "muy fresco"})
		require.NoError(t, err)
		require.Equal(t, 4, review.Rating)

		_, err = svc.Create(ctx, buyer, dto.CreateReviewRequest{ProductID: 1, Rating: 5})
		requireKind(t, err, errorbank.KindConflict)
		require.Equal(t, review.ID, errorbank.From(err).Details()["review_id"])
	})

	t.Run("sellers cannot review their own listing", func(t *testing.T) {
		svc := NewService(newMemStore(), zap.NewNop())
		owner := auth.Actor{UserID: 7, Role: entity.RoleSeller}

		_, err := svc.Create(ctx, owner, dto.CreateReviewRequest{ProductID: 1, Rating: 5})
		requireKind(t, err, errorbank.KindForbidden)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		svc := NewService(newMemStore(), zap.NewNop())

		_, err := svc.Create(ctx, buyer, dto.CreateReviewRequest{ProductID: 404, Rating: 3})
		requireKind(t, err, errorbank.KindNotFound)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 3, Role: entity.RoleBuyer}

	setup := func(t *testing.T) (*Service, *memStore, *entity.Review) {
		t.Helper()
		st := newMemStore()
		svc := NewService(st, zap.NewNop())
		review, err := svc.Create(ctx, buyer, dto.CreateReviewRequest{ProductID: 1, Rating: 4})
		require.NoError(t, err)
		return svc, st, review
	}

	t.Run("owner edits their review", func(t *testing.T) {
		svc, _, review := setup(t)

		rating := 2
		updated, err := svc.Update(ctx, buyer, review.ID, dto.UpdateReviewRequest{Rating: &rating})
		require.NoError(t, err)
		require.Equal(t, 2, updated.Rating)
	})

	t.Run("admins do not edit, only delete", func(t *testing.T) {
		svc, st, review := setup(t)
		admin := auth.Actor{UserID: 1, Role: entity.RoleAdmin}

		rating := 1
		_, err := svc.Update(ctx, admin, review.ID, dto.UpdateReviewRequest{Rating: &rating})
		requireKind(t, err, errorbank.KindForbidden)

		require.NoError(t, svc.Delete(ctx, admin, review.ID))
		require.Empty(t, st.reviews)
	})

	t.Run("strangers cannot delete", func(t *testing.T) {
		svc, _, review := setup(t)
		stranger := auth.Actor{UserID: 55, Role: entity.RoleBuyer}

		err := svc.Delete(ctx, stranger, review.ID)
		requireKind(t, err, errorbank.KindForbidden)
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), zap.NewNop())

	for i, rating := range []int{5, 4, 3} {
		actor := auth.Actor{UserID: int64(100 + i), Role: entity.RoleBuyer}
		_, err := svc.Create(ctx, actor, dto.CreateReviewRequest{ProductID: 1, Rating: rating})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, summary.ReviewCount)
	require.InDelta(t, 4.0, summary.AverageRating, 0.001)
}
