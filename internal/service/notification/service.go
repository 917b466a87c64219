package notification

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/notification")

// ErrNotificationNotFound is surfaced by Store implementations.
var ErrNotificationNotFound = errors.New("notification not found")

// Store is the persistence boundary for notifications.
type Store interface {
	Insert(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]entity.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// Service manages per-user inboxes. Creation is best-effort by contract:
// callers log and continue on error.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Notify appends one inbox entry for the user.
func (s *Service) Notify(ctx context.Context, userID int64, kind, title, message string) error {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.Notify", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("notification.type", kind),
	))
	defer span.End()

	n := &entity.Notification{
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// List returns a page of the user's inbox, newest first.
func (s *Service) List(ctx context.Context, userID int64, q dto.NotificationQuery) ([]entity.Notification, int, error) {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.List", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	q.Normalize()
	items, total, err := s.store.ListByUser(ctx, userID, q.UnreadOnly, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list notifications", errorbank.WithCause(err))
	}
	return items, total, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.MarkRead", trace.WithAttributes(attribute.Int64("notification.id", notificationID)))
	defer span.End()

	err := s.store.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, ErrNotificationNotFound) {
		return errorbank.NotFound("notification not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return errorbank.Internal("failed to mark notification", errorbank.WithCause(err))
	}
	return nil
}

// MarkAllRead flags the user's entire inbox as read and returns the count.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	ctx, span := serviceTracer.Start(ctx, "NotificationService.MarkAllRead", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	count, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return 0, errorbank.Internal("failed to mark notifications", errorbank.WithCause(err))
	}
	s.logger.Debug("inbox cleared", zap.Int64("user_id", userID), zap.Int64("count", count))
	return count, nil
}
