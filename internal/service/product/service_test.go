package product

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
	products   map[int64]*entity.Product
	categories map[int64]bool
	nextID     int64
	lastQuery  dto.ProductQuery
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]*entity.Product{},
		categories: map[int64]bool{1: true},
	}
}

func (s *memStore) Insert(ctx context.Context, product *entity.Product) error {
	s.nextID++
	product.ID = s.nextID
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, productID int64) (*entity.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, q dto.ProductQuery) ([]entity.Product, int, error) {
	s.lastQuery = q
	var out []entity.Product
	for _, p := range s.products {
		if q.Active != nil && p.IsActive != *q.Active {
			continue
		}
		if q.SellerID != 0 && p.SellerID != q.SellerID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *memStore) Update(ctx context.Context, product *entity.Product) error {
	if _, ok := s.products[product.ID]; !ok {
		return ErrProductNotFound
	}
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *memStore) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	return s.categories[categoryID], nil
}

type stubGate struct {
	ok      bool
	missing []string
}

func (g stubGate) HasAllCertifications(ctx context.Context, userID int64) (bool, []string, error) {
	return g.ok, g.missing, nil
}

type recordingAuditor struct {
	changeTypes []string
}

func (a *recordingAuditor) Record(ctx context.Context, actorID int64, changeType string, before, after *entity.Product) {
	a.changeTypes = append(a.changeTypes, changeType)
}

func newTestService(st *memStore, gate CertificationGate) (*Service, *recordingAuditor) {
	auditor := &recordingAuditor{}
	svc := NewService(Params{
		Store:   st,
		Gate:    gate,
		Auditor: auditor,
		Logger:  zap.NewNop(),
	})
	return svc, auditor
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, errorbank.From(err).Kind())
}

var createReq = dto.CreateProductRequest{
	CategoryID:    1,
	Name:          "Café de Huila",
	BasePrice:     4500,
	StockQuantity: 20,
	UnitMeasure:   "kg",
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	seller := auth.Actor{UserID: 7, Role: entity.RoleSeller}

	t.Run("certified seller publishes", func(t *testing.T) {
		svc, auditor := newTestService(newMemStore(), stubGate{ok: true})

		product, err := svc.Create(ctx, seller, createReq)
		require.NoError(t, err)
		require.True(t, product.IsActive)
		require.Equal(t, seller.UserID, product.SellerID)
		require.Equal(t, []string{entity.ChangeCreate}, auditor.changeTypes)
	})

	t.Run("uncertified seller is blocked", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), stubGate{ok: false, missing: []string{"INVIMA"}})

		_, err := svc.Create(ctx, seller, createReq)
		requireKind(t, err, errorbank.KindForbidden)
		require.Contains(t, errorbank.From(err).Details(), "missing")
	})

	t.Run("admin bypasses the gate", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), stubGate{ok: false})
		admin := auth.Actor{UserID: 1, Role: entity.RoleAdmin}

		_, err := svc.Create(ctx, admin, createReq)
		require.NoError(t, err)
	})

	t.Run("buyers cannot publish", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), stubGate{ok: true})
		buyer := auth.Actor{UserID: 3, Role: entity.RoleBuyer}

		_, err := svc.Create(ctx, buyer, createReq)
		requireKind(t, err, errorbank.KindForbidden)
	})

	t.Run("unknown category is unprocessable", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), stubGate{ok: true})

		req := createReq
		req.CategoryID = 42
		_, err := svc.Create(ctx, seller, req)
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	seller := auth.Actor{UserID: 7, Role: entity.RoleSeller}

	setup := func(t *testing.T) (*Service, *recordingAuditor, *memStore, *entity.Product) {
		t.Helper()
		st := newMemStore()
		svc, auditor := newTestService(st, stubGate{ok: true})
		product, err := svc.Create(ctx, seller, createReq)
		require.NoError(t, err)
		return svc, auditor, st, product
	}

	t.Run("partial update audits the change", func(t *testing.T) {
		svc, auditor, st, product := setup(t)

		newPrice := 5200.0
		updated, err := svc.Update(ctx, seller, product.ID, dto.UpdateProductRequest{BasePrice: &newPrice})
		require.NoError(t, err)
		require.Equal(t, newPrice, updated.BasePrice)
		require.Equal(t, createReq.Name, updated.Name)
		require.Equal(t, newPrice, st.products[product.ID].BasePrice)
		require.Equal(t, []string{entity.ChangeCreate, entity.ChangeUpdate}, auditor.changeTypes)
	})

	t.Run("only the owner or an admin edits", func(t *testing.T) {
		svc, _, _, product := setup(t)

		other := auth.Actor{UserID: 55, Role: entity.RoleSeller}
		name := "Otro nombre"
		_, err := svc.Update(ctx, other, product.ID, dto.UpdateProductRequest{Name: &name})
		requireKind(t, err, errorbank.KindForbidden)
	})

	t.Run("delete deactivates instead of removing", func(t *testing.T) {
		svc, auditor, st, product := setup(t)

		require.NoError(t, svc.Delete(ctx, seller, product.ID))
		require.False(t, st.products[product.ID].IsActive)
		require.Contains(t, st.products, product.ID)
		require.Equal(t, []string{entity.ChangeCreate, entity.ChangeDelete}, auditor.changeTypes)

		err := svc.Delete(ctx, seller, product.ID)
		requireKind(t, err, errorbank.KindConflict)
	})
}

func TestGetVisibility(t *testing.T) {
	ctx := context.Background()
	seller := auth.Actor{UserID: 7, Role: entity.RoleSeller}

	st := newMemStore()
	svc, _ := newTestService(st, stubGate{ok: true})
	product, err := svc.Create(ctx, seller, createReq)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, seller, product.ID))

	t.Run("deactivated listing hides from strangers", func(t *testing.T) {
		buyer := auth.Actor{UserID: 3, Role: entity.RoleBuyer}
		_, err := svc.Get(ctx, buyer, product.ID)
		requireKind(t, err, errorbank.KindNotFound)
	})

	t.Run("owner still sees it", func(t *testing.T) {
		got, err := svc.Get(ctx, seller, product.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)
	})
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous callers only see active listings", func(t *testing.T) {
		st := newMemStore()
		svc, _ := newTestService(st, stubGate{ok: true})

		_, _, err := svc.List(ctx, auth.Actor{}, dto.ProductQuery{})
		require.NoError(t, err)
		require.NotNil(t, st.lastQuery.Active)
		require.True(t, *st.lastQuery.Active)
	})

	t.Run("sellers listing their own catalog see inactive rows", func(t *testing.T) {
		st := newMemStore()
		svc, _ := newTestService(st, stubGate{ok: true})
		seller := auth.Actor{UserID: 7, Role: entity.RoleSeller}

		_, _, err := svc.List(ctx, seller, dto.ProductQuery{SellerID: 7})
		require.NoError(t, err)
		require.Nil(t, st.lastQuery.Active)
	})

	t.Run("inverted price bounds are rejected", func(t *testing.T) {
		svc, _ := newTestService(newMemStore(), stubGate{ok: true})
		low, high := 100.0, 50.0

		_, _, err := svc.List(ctx, auth.Actor{}, dto.ProductQuery{MinPrice: &low, MaxPrice: &high})
		requireKind(t, err, errorbank.KindBadRequest)
	})
}
