package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/cache"
	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/internal/messaging"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/order")

// Sentinel errors surfaced by Store implementations.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
)

// Tx exposes the operations available inside one placement or cancellation
// transaction. Implementations must lock product rows for the duration of
// the transaction.
type Tx interface {
	ProductForUpdate(ctx context.Context, productID int64) (*entity.Product, error)
	UpdateProductStock(ctx context.Context, productID int64, stock int) error
	InsertOrder(ctx context.Context, order *entity.Order) error
	InsertOrderItems(ctx context.Context, items []entity.OrderItem) error
	OrderForUpdate(ctx context.Context, orderID int64) (*entity.Order, error)
	UpdateOrder(ctx context.Context, order *entity.Order) error
}

// Store is the persistence boundary for orders. RunInTx must execute fn
// atomically: any error aborts every effect of the callback.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, orderID int64) (*entity.Order, error)
	List(ctx context.Context, buyerID int64, offset, limit int) ([]entity.Order, int, error)
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	Notify(ctx context.Context, userID int64, kind, title, message string) error
}

// Service implements order placement, cancellation, and reads.
type Service struct {
	store     Store
	notifier  Notifier
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Notifier  Notifier
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Store,
		notifier:  p.Notifier,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Place atomically verifies availability, snapshots prices, decrements
// stock, and persists the order with its line items. Any failing item aborts
// the whole transaction; no partial effects survive.
func (s *Service) Place(ctx context.Context, actor auth.Actor, req dto.PlaceOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Place", trace.WithAttributes(
		attribute.Int64("order.buyer_id", actor.UserID),
		attribute.Int("order.items", len(req.Items)),
	))
	defer span.End()

	buyerID := actor.UserID
	if req.BuyerID != 0 && req.BuyerID != actor.UserID {
		if !actor.Admin() {
			return nil, errorbank.Forbidden("cannot place orders for another buyer")
		}
		buyerID = req.BuyerID
	}

	if len(req.Items) == 0 {
		return nil, errorbank.BadRequest("order requires at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, errorbank.BadRequest("item quantity must be positive",
				errorbank.WithDetail("product_id", item.ProductID))
		}
	}

	now := time.Now().UTC()
	order := &entity.Order{
		BuyerID:        buyerID,
		Status:         entity.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  entity.PaymentStatusPending,
		TrackingNumber: newTrackingNumber(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var firstSellerID int64

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		items := make([]entity.OrderItem, 0, len(req.Items))
		var total float64

		for _, line := range req.Items {
			product, err := tx.ProductForUpdate(ctx, line.ProductID)
			if errors.Is(err, ErrProductNotFound) {
				return errorbank.NotFound("product not found",
					errorbank.WithDetail("product_id", line.ProductID))
			}
			if err != nil {
				return err
			}
			if !product.IsActive {
				return errorbank.Unprocessable(fmt.Sprintf("product %q is not available", product.Name),
					errorbank.WithDetail("product_id", product.ID))
			}
			if product.StockQuantity < line.Quantity {
				return errorbank.Unprocessable(fmt.Sprintf("insufficient stock for %q", product.Name),
					errorbank.WithDetails(map[string]any{
						"product_id": product.ID,
						"requested":  line.Quantity,
						"available":  product.StockQuantity,
					}))
			}

			// Unit price is snapshotted inside the transaction so concurrent
			// price edits cannot skew the total.
			subtotal := product.BasePrice * float64(line.Quantity)
			items = append(items, entity.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.BasePrice,
				Subtotal:  subtotal,
			})
			total += subtotal

			if firstSellerID == 0 {
				firstSellerID = product.SellerID
			}

			if err := tx.UpdateProductStock(ctx, product.ID, product.StockQuantity-line.Quantity); err != nil {
				return err
			}
		}

		order.TotalAmount = total
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.InsertOrderItems(ctx, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		var appErr *errorbank.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement transaction failed")
		return nil, errorbank.Internal("failed to place order", errorbank.WithCause(err))
	}

	s.notifyBestEffort(ctx, buyerID, entity.NotificationOrderPlaced,
		"Order placed",
		fmt.Sprintf("Your order %s was placed for a total of %.2f", order.TrackingNumber, order.TotalAmount))
	if firstSellerID != 0 {
		s.notifyBestEffort(ctx, firstSellerID, entity.NotificationOrderReceived,
			"New order received",
			fmt.Sprintf("Order %s includes your products", order.TrackingNumber))
	}

	s.publishEvent(ctx, EventOrderPlaced, order)
	return order, nil
}

// Cancel restores each line item's quantity onto its product and flips the
// order to CANCELLED, atomically. Shipped and delivered orders are rejected.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, orderID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Cancel", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	var cancelled *entity.Order

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if errors.Is(err, ErrOrderNotFound) {
			return errorbank.NotFound("order not found")
		}
		if err != nil {
			return err
		}
		if order.BuyerID != actor.UserID && !actor.Admin() {
			return errorbank.Forbidden("not your order")
		}
		if order.Status == entity.OrderStatusCancelled {
			return errorbank.Conflict("order is already cancelled")
		}
		if !order.Cancellable() {
			return errorbank.Unprocessable("shipped or delivered orders cannot be cancelled",
				errorbank.WithDetail("status", order.Status))
		}

		for _, item := range order.Items {
			product, err := tx.ProductForUpdate(ctx, item.ProductID)
			if errors.Is(err, ErrProductNotFound) {
				// Product row vanished after placement; nothing to restore.
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.UpdateProductStock(ctx, product.ID, product.StockQuantity+item.Quantity); err != nil {
				return err
			}
		}

		order.Status = entity.OrderStatusCancelled
		order.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		var appErr *errorbank.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancellation transaction failed")
		return nil, errorbank.Internal("failed to cancel order", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, orderID)
	s.notifyBestEffort(ctx, cancelled.BuyerID, entity.NotificationOrderCancelled,
		"Order cancelled",
		fmt.Sprintf("Order %s was cancelled and stock was restored", cancelled.TrackingNumber))
	s.publishEvent(ctx, EventOrderCancelled, cancelled)
	return cancelled, nil
}

// Get retrieves an order by id, consulting cache when available. Buyers only
// see their own orders.
func (s *Service) Get(ctx context.Context, actor auth.Actor, orderID int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if order, err := s.getFromCache(ctx, orderID); err == nil {
		return s.authorize(actor, order)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", orderID), zap.Error(err))
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", orderID), zap.Error(err))
	}

	return s.authorize(actor, order)
}

// List returns the actor's orders; admins see everyone's.
func (s *Service) List(ctx context.Context, actor auth.Actor, q dto.PageQuery) ([]entity.Order, int, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	q.Normalize()
	buyerID := actor.UserID
	if actor.Admin() {
		buyerID = 0
	}

	orders, total, err := s.store.List(ctx, buyerID, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, total, nil
}

// UpdateStatus transitions an order (admin only at the transport layer).
// Terminal states admit no further transitions; cancellation must go through
// Cancel so stock is restored.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, req dto.UpdateOrderStatusRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", req.Status),
	))
	defer span.End()

	if !entity.ValidOrderStatus(req.Status) {
		return nil, errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", req.Status))
	}
	if req.Status == entity.OrderStatusCancelled {
		return nil, errorbank.Unprocessable("use the cancel endpoint to cancel an order")
	}

	var updated *entity.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if errors.Is(err, ErrOrderNotFound) {
			return errorbank.NotFound("order not found")
		}
		if err != nil {
			return err
		}
		if entity.TerminalOrderStatus(order.Status) {
			return errorbank.Unprocessable("order is in a terminal state",
				errorbank.WithDetail("status", order.Status))
		}

		order.Status = req.Status
		if req.PaymentStatus != "" {
			order.PaymentStatus = req.PaymentStatus
		}
		order.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		var appErr *errorbank.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "status transaction failed")
		return nil, errorbank.Internal("failed to update order status", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, orderID)
	s.notifyBestEffort(ctx, updated.BuyerID, entity.NotificationOrderStatus,
		"Order status updated",
		fmt.Sprintf("Order %s is now %s", updated.TrackingNumber, updated.Status))
	return updated, nil
}

func (s *Service) authorize(actor auth.Actor, order *entity.Order) (*entity.Order, error) {
	if order.BuyerID != actor.UserID && !actor.Admin() {
		return nil, errorbank.Forbidden("not your order")
	}
	return order, nil
}

func (s *Service) notifyBestEffort(ctx context.Context, userID int64, kind, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, title, message); err != nil {
		s.logger.Warn("order notification failed",
			zap.Int64("user_id", userID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

func (s *Service) publishEvent(ctx context.Context, event string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(Event{
		Event:          event,
		ID:             order.ID,
		BuyerID:        order.BuyerID,
		Status:         order.Status,
		TotalAmount:    order.TotalAmount,
		TrackingNumber: order.TrackingNumber,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		s.logger.Error("publish order event", zap.String("event", event), zap.Error(err))
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
}

func newTrackingNumber() string {
	return "AGV-" + uuid.NewString()[:18]
}
