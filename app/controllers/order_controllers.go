package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/media"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

type OrderController struct {
	service  *services.OrderService
	limits   media.Limits
	tracking *sse.Broker
}

// NewOrderController builds the controller. tracking may be nil when live
// order tracking is off.
func NewOrderController(service *services.OrderService, limits media.Limits, tracking *sse.Broker) *OrderController {
	return &OrderController{service: service, limits: limits, tracking: tracking}
}

func (oc *OrderController) Index(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	orders, err := oc.service.ListOrders(c.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	order, err := oc.service.GetOrder(c.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

func (oc *OrderController) Store(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var in services.CreateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.service.CreateOrder(c.Context(), user, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"message": "Order created successfully", "order_id": order.ID})
}

// Update handles PUT /api/admin/orders/{id}.
func (oc *OrderController) Update(c *ctx.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	var patch services.OrderPatch
	if !c.BindJSON(&patch) {
		return
	}
	if _, err := oc.service.UpdateOrder(c.Context(), id, patch); err != nil {
		fail(c, err)
		return
	}
	c.Message("Order updated successfully")
}

// UploadPhotos handles POST /api/admin/orders/{id}/photos. The whole
// multipart body is checked before anything reaches the order.
func (oc *OrderController) UploadPhotos(c *ctx.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	uploads, err := media.Parse(c.W, c.R, oc.limits)
	if err != nil {
		var me *media.Error
		if errors.As(err, &me) {
			c.Error(http.StatusBadRequest, me.Message)
			return
		}
		fail(c, err)
		return
	}

	photos, err := oc.service.AppendDeliveryPhotos(c.Context(), id, uploads)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"message": "Photos uploaded successfully", "photos": photos})
}

// heartbeat keeps idle tracking streams alive through proxies.
var heartbeat = 15 * time.Second

// Track handles GET /api/orders/{id}/events. It sends the order as a
// "snapshot" event, then every lifecycle event for it until the client
// disconnects.
func (oc *OrderController) Track(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	// Subscribe first so nothing published after the snapshot read is lost.
	sub, cancel := oc.tracking.Subscribe(services.OrderTopic(id))
	defer cancel()

	order, err := oc.service.GetOrder(c.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}

	stream, err := sse.New(c.W, c.R)
	if err != nil {
		fail(c, err)
		return
	}
	log := logger.WithCtx(c.Context())
	if err := stream.Send("snapshot", order); err != nil {
		log.Warn("orders: tracking stream closed", "order_id", id, "error", err)
		return
	}

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-stream.Done():
			return
		case msg := <-sub:
			err = stream.Send(msg.Event, msg.Data)
		case <-tick.C:
			err = stream.Comment("ping")
		}
		if err != nil {
			log.Warn("orders: tracking stream closed", "order_id", id, "error", err)
			return
		}
	}
}
