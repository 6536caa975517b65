// Package listeners reacts to order lifecycle events. It counts them in
// Prometheus and logs them, then pushes them to the admin order feed and to
// anyone tracking that order.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

// Feed receives every order event. *ws.Hub satisfies it.
type Feed interface {
	Publish(v any)
}

// FeedMessage is what admin feed subscribers receive.
type FeedMessage struct {
	Event string              `json:"event"`
	Order services.OrderEvent `json:"order"`
}

// Register subscribes the order listeners on bus. feed and tracking may be nil.
func Register(bus *event.Bus, feed Feed, tracking *sse.Broker) {
	bus.Listen(services.EventOrderCreated, func(ctx context.Context, p any) {
		ev, ok := p.(services.OrderEvent)
		if !ok {
			return
		}
		metrics.OrdersCreated.Inc()
		logger.WithCtx(ctx).Info("event: order created", "order_id", ev.OrderID, "user_id", ev.UserID)
	})

	bus.Listen(services.EventOrderUpdated, func(ctx context.Context, p any) {
		ev, ok := p.(services.OrderEvent)
		if !ok || ev.PreviousStatus == "" {
			return
		}
		metrics.OrderStatusChanges.WithLabelValues(string(ev.Status)).Inc()
		logger.WithCtx(ctx).Info("event: order status changed",
			"order_id", ev.OrderID, "from", ev.PreviousStatus, "to", ev.Status)
	})

	bus.Listen(services.EventOrderPhotosAdded, func(ctx context.Context, p any) {
		ev, ok := p.(services.OrderEvent)
		if !ok {
			return
		}
		metrics.DeliveryPhotosUploaded.Add(float64(len(ev.Photos)))
		logger.WithCtx(ctx).Info("event: delivery photos added", "order_id", ev.OrderID, "count", len(ev.Photos))
	})

	for _, name := range []string{services.EventOrderCreated, services.EventOrderUpdated, services.EventOrderPhotosAdded} {
		bus.Listen(name, func(_ context.Context, p any) {
			ev, ok := p.(services.OrderEvent)
			if !ok {
				return
			}
			if feed != nil {
				feed.Publish(FeedMessage{Event: name, Order: ev})
			}
			if tracking != nil {
				tracking.Publish(services.OrderTopic(ev.OrderID), sse.Message{Event: name, Data: ev})
			}
		})
	}
}
