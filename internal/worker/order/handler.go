package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/config"
	"github.com/agricoventas/platform/internal/messaging"
	ordersvc "github.com/agricoventas/platform/internal/service/order"
	"github.com/agricoventas/platform/internal/worker"
)

var workerTracer = otel.Tracer("github.com/agricoventas/platform/worker/order")

// Module registers order lifecycle worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventHandler consumes the order lifecycle topic. It currently logs
// placements and cancellations; downstream integrations (fulfilment,
// analytics) hang off this handler.
func NewOrderEventHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		switch event.Event {
		case ordersvc.EventOrderPlaced:
			logger.Info("order placed",
				zap.Int64("id", event.ID),
				zap.Int64("buyer_id", event.BuyerID),
				zap.Float64("total", event.TotalAmount),
				zap.String("tracking", event.TrackingNumber),
			)
		case ordersvc.EventOrderCancelled:
			logger.Info("order cancelled",
				zap.Int64("id", event.ID),
				zap.Int64("buyer_id", event.BuyerID),
				zap.String("tracking", event.TrackingNumber),
			)
		default:
			logger.Warn("unknown order event", zap.String("event", event.Event))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
