package notification

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/notification"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/notification")

var _ svc.Store = (*Repository)(nil)

// Repository persists per-user notifications.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Insert appends one notification row.
func (r *Repository) Insert(ctx context.Context, n *entity.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.Insert", trace.WithAttributes(attribute.Int64("user.id", n.UserID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(n).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ListByUser pages through a user's inbox, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]entity.Notification, int, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.ListByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	var items []entity.Notification
	q := r.reader.NewSelect().Model(&items).Where("n.user_id = ?", userID)
	if unreadOnly {
		q = q.Where("n.is_read = FALSE")
	}
	total, err := q.Order("n.created_at DESC").Offset(offset).Limit(limit).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead flags one notification owned by userID.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.MarkRead", trace.WithAttributes(attribute.Int64("notification.id", notificationID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Notification)(nil)).
		Set("is_read = TRUE").
		Where("id = ? AND user_id = ?", notificationID, userID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return svc.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification owned by userID.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.MarkAllRead", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Notification)(nil)).
		Set("is_read = TRUE").
		Where("user_id = ? AND is_read = FALSE", userID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return 0, err
	}
	return res.RowsAffected()
}
