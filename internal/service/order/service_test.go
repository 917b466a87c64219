package order

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
	products map[int64]*entity.Product
	orders   map[int64]*entity.Order
	nextID   int64
}

func newMemStore(products ...*entity.Product) *memStore {
	st := &memStore{
		products: map[int64]*entity.Product{},
		orders:   map[int64]*entity.Order{},
	}
	for _, p := range products {
		st.products[p.ID] = p
	}
	return st
}

// RunInTx snapshots state before fn and restores it when fn fails, matching
// the all-or-nothing contract of the real transaction.
func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	productsBackup := make(map[int64]*entity.Product, len(s.products))
	for id, p := range s.products {
		cp := *p
		productsBackup[id] = &cp
	}
	ordersBackup := make(map[int64]*entity.Order, len(s.orders))
	for id, o := range s.orders {
		cp := *o
		ordersBackup[id] = &cp
	}

	if err := fn(ctx, (*memTx)(s)); err != nil {
		s.products = productsBackup
		s.orders = ordersBackup
		return err
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, orderID int64) (*entity.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *memStore) List(ctx context.Context, buyerID int64, offset, limit int) ([]entity.Order, int, error) {
	var out []entity.Order
	for _, o := range s.orders {
		if buyerID == 0 || o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

type memTx memStore

func (t *memTx) ProductForUpdate(ctx context.Context, productID int64) (*entity.Product, error) {
	p, ok := t.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) UpdateProductStock(ctx context.Context, productID int64, stock int) error {
	t.products[productID].StockQuantity = stock
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	t.nextID++
	order.ID = t.nextID
	cp := *order
	t.orders[order.ID] = &cp
	return nil
}

func (t *memTx) InsertOrderItems(ctx context.Context, items []entity.OrderItem) error {
	for i := range items {
		t.nextID++
		items[i].ID = t.nextID
	}
	if len(items) > 0 {
		order := t.orders[items[0].OrderID]
		order.Items = append([]entity.OrderItem{}, items...)
	}
	return nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, orderID int64) (*entity.Order, error) {
	o, ok := t.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]entity.OrderItem{}, o.Items...)
	return &cp, nil
}

func (t *memTx) UpdateOrder(ctx context.Context, order *entity.Order) error {
	cp := *order
	t.orders[order.ID] = &cp
	return nil
}

func newTestService(st *memStore) *Service {
	return NewService(Params{
		Store:  st,
		Logger: zap.NewNop(),
	})
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	appErr := errorbank.From(err)
	require.Equal(t, kind, appErr.Kind())
}

func activeProduct(id, sellerID int64, price float64, stock int) *entity.Product {
	return &entity.Product{
		ID:            id,
		SellerID:      sellerID,
		Name:          "test product",
		BasePrice:     price,
		StockQuantity: stock,
		IsActive:      true,
	}
}

func TestPlace(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 10, Role: entity.RoleBuyer}

	t.Run("computes totals and decrements stock", func(t *testing.T) {
		st := newMemStore(
			activeProduct(1, 99, 4500, 20),
			activeProduct(2, 99, 32000, 5),
		)
		svc := newTestService(st)

		order, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
			},
		})
		require.NoError(t, err)
		require.Equal(t, buyer.UserID, order.BuyerID)
		require.Equal(t, entity.OrderStatusPending, order.Status)
		require.Equal(t, float64(2*4500+32000), order.TotalAmount)
		require.Len(t, order.Items, 2)
		require.Equal(t, 4500.0, order.Items[0].UnitPrice)
		require.Equal(t, 9000.0, order.Items[0].Subtotal)
		require.NotEmpty(t, order.TrackingNumber)

		require.Equal(t, 18, st.products[1].StockQuantity)
		require.Equal(t, 4, st.products[2].StockQuantity)
	})

	t.Run("exact stock drains to zero", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 5))
		svc := newTestService(st)

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 5}},
		})
		require.NoError(t, err)
		require.Equal(t, 0, st.products[1].StockQuantity)
	})

	t.Run("insufficient stock rejects the order", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 5))
		svc := newTestService(st)

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 6}},
		})
		requireKind(t, err, errorbank.KindUnprocessableEntity)
		require.Equal(t, 5, st.products[1].StockQuantity)
		require.Empty(t, st.orders)
	})

	t.Run("one failing item aborts every decrement", func(t *testing.T) {
		st := newMemStore(
			activeProduct(1, 99, 100, 10),
			activeProduct(2, 99, 100, 1),
		)
		svc := newTestService(st)

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{
				{ProductID: 1, Quantity: 3},
				{ProductID: 2, Quantity: 2},
			},
		})
		requireKind(t, err, errorbank.KindUnprocessableEntity)
		require.Equal(t, 10, st.products[1].StockQuantity)
		require.Equal(t, 1, st.products[2].StockQuantity)
		require.Empty(t, st.orders)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		p := activeProduct(1, 99, 100, 10)
		p.IsActive = false
		svc := newTestService(newMemStore(p))

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		})
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		svc := newTestService(newMemStore())

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{{ProductID: 404, Quantity: 1}},
		})
		requireKind(t, err, errorbank.KindNotFound)
	})

	t.Run("non-admin cannot order for another buyer", func(t *testing.T) {
		svc := newTestService(newMemStore(activeProduct(1, 99, 100, 10)))

		_, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			BuyerID: 77,
			Items:   []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		})
		requireKind(t, err, errorbank.KindForbidden)
	})

	t.Run("admin may order on behalf of a buyer", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 10))
		svc := newTestService(st)
		admin := auth.Actor{UserID: 1, Role: entity.RoleAdmin}

		order, err := svc.Place(ctx, admin, dto.PlaceOrderRequest{
			BuyerID: 77,
			Items:   []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		})
		require.NoError(t, err)
		require.Equal(t, int64(77), order.BuyerID)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 10, Role: entity.RoleBuyer}

	place := func(t *testing.T, st *memStore, svc *Service, qty int) *entity.Order {
		t.Helper()
		order, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
			Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: qty}},
		})
		require.NoError(t, err)
		return order
	}

	t.Run("restores stock", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 10))
		svc := newTestService(st)
		order := place(t, st, svc, 4)
		require.Equal(t, 6, st.products[1].StockQuantity)

		cancelled, err := svc.Cancel(ctx, buyer, order.ID)
		require.NoError(t, err)
		require.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
		require.Equal(t, 10, st.products[1].StockQuantity)
	})

	t.Run("shipped orders cannot be cancelled", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 10))
		svc := newTestService(st)
		order := place(t, st, svc, 1)
		st.orders[order.ID].Status = entity.OrderStatusShipped

		_, err := svc.Cancel(ctx, buyer, order.ID)
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})

	t.Run("cancelling twice is a conflict", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 10))
		svc := newTestService(st)
		order := place(t, st, svc, 1)

		_, err := svc.Cancel(ctx, buyer, order.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, buyer, order.ID)
		requireKind(t, err, errorbank.KindConflict)
		require.Equal(t, 10, st.products[1].StockQuantity)
	})

	t.Run("strangers cannot cancel", func(t *testing.T) {
		st := newMemStore(activeProduct(1, 99, 100, 10))
		svc := newTestService(st)
		order := place(t, st, svc, 1)

		stranger := auth.Actor{UserID: 55, Role: entity.RoleBuyer}
		_, err := svc.Cancel(ctx, stranger, order.ID)
		requireKind(t, err, errorbank.KindForbidden)
	})
}

func TestGetAuthorization(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 10, Role: entity.RoleBuyer}

	st := newMemStore(activeProduct(1, 99, 100, 10))
	svc := newTestService(st)
	order, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("owner reads own order", func(t *testing.T) {
		got, err := svc.Get(ctx, buyer, order.ID)
		require.NoError(t, err)
		require.Equal(t, order.ID, got.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		stranger := auth.Actor{UserID: 55, Role: entity.RoleBuyer}
		_, err := svc.Get(ctx, stranger, order.ID)
		requireKind(t, err, errorbank.KindForbidden)
	})

	t.Run("admin reads any order", func(t *testing.T) {
		admin := auth.Actor{UserID: 1, Role: entity.RoleAdmin}
		_, err := svc.Get(ctx, admin, order.ID)
		require.NoError(t, err)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, buyer, 404)
		requireKind(t, err, errorbank.KindNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	buyer := auth.Actor{UserID: 10, Role: entity.RoleBuyer}

	st := newMemStore(activeProduct(1, 99, 100, 10))
	svc := newTestService(st)
	order, err := svc.Place(ctx, buyer, dto.PlaceOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("transitions and tracks payment", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{
			Status:        entity.OrderStatusProcessing,
			PaymentStatus: entity.PaymentStatusPaid,
		})
		require.NoError(t, err)
		require.Equal(t, entity.OrderStatusProcessing, updated.Status)
		require.Equal(t, entity.PaymentStatusPaid, updated.PaymentStatus)
	})

	t.Run("cancellation is routed to the cancel flow", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{
			Status: entity.OrderStatusCancelled,
		})
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})

	t.Run("terminal orders admit no transitions", func(t *testing.T) {
		st.orders[order.ID].Status = entity.OrderStatusDelivered

		_, err := svc.UpdateStatus(ctx, order.ID, dto.UpdateOrderStatusRequest{
			Status: entity.OrderStatusProcessing,
		})
		requireKind(t, err, errorbank.KindUnprocessableEntity)
	})
}
