package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/order"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/order")

// Repository encapsulates read/write access for orders and the placement
// transaction. Compile-time check that it satisfies the service boundary.
var _ svc.Store = (*Repository)(nil)

type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// RunInTx runs fn inside a serializable transaction on the writer. The
// isolation level is deliberate: order placement races against concurrent
// stock changes on the same product rows.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx svc.Tx) error) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.RunInTx")
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable},
		func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, &bunTx{tx: tx})
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
	}
	return err
}

// GetByID fetches an order with its items, preferring the read replica.
func (r *Repository) GetByID(ctx context.Context, orderID int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Items").
		Where("o.id = ?", orderID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrOrderNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns a page of orders, newest first. buyerID 0 lists everything.
func (r *Repository) List(ctx context.Context, buyerID int64, offset, limit int) ([]entity.Order, int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(attribute.Int64("order.buyer_id", buyerID)))
	defer span.End()

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders).Relation("Items")
	if buyerID != 0 {
		q = q.Where("o.buyer_id = ?", buyerID)
	}
	total, err := q.Order("o.created_at DESC").Offset(offset).Limit(limit).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return orders, total, nil
}

// bunTx adapts a bun transaction to the service-level Tx boundary.
type bunTx struct {
	tx bun.Tx
}

func (t *bunTx) ProductForUpdate(ctx context.Context, productID int64) (*entity.Product, error) {
	product := new(entity.Product)
	err := t.tx.NewSelect().Model(product).
		Where("id = ?", productID).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svc.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (t *bunTx) UpdateProductStock(ctx context.Context, productID int64, stock int) error {
	_, err := t.tx.NewUpdate().Model((*entity.Product)(nil)).
		Set("stock_quantity = ?", stock).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", productID).
		Exec(ctx)
	return err
}

func (t *bunTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	_, err := t.tx.NewInsert().Model(order).Exec(ctx)
	return err
}

func (t *bunTx) InsertOrderItems(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := t.tx.NewInsert().Model(&items).Exec(ctx)
	return err
}

func (t *bunTx) OrderForUpdate(ctx context.Context, orderID int64) (*entity.Order, error) {
	order := new(entity.Order)
	err := t.tx.NewSelect().Model(order).
		Where("o.id = ?", orderID).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svc.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	err = t.tx.NewSelect().Model(&order.Items).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (t *bunTx) UpdateOrder(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	_, err := t.tx.NewUpdate().Model(order).WherePK().Exec(ctx)
	return err
}
