package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/media"
)

// Order lifecycle events.
const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderPhotosAdded = "order.photos_added"
)

const maxPhotoAttempts = 10

// OrderEvent is the payload of every order lifecycle event.
type OrderEvent struct {
	OrderID        uint               `json:"order_id"`
	UserID         uint               `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Photos         []string           `json:"photos,omitempty"`
	At             time.Time          `json:"at"`
}

// OrderTopic names the event-stream topic a single order's events go to.
func OrderTopic(id uint) string { return "order:" + strconv.FormatUint(uint64(id), 10) }

// Publisher fans events out to listeners.
type Publisher interface {
	Fire(ctx context.Context, name string, payload any)
}

// PhotoStore writes validated uploads and returns their public paths.
type PhotoStore interface {
	Save(ctx context.Context, uploads []media.Upload) ([]string, error)
}

// OrderLine is one item of a new order. Price is taken as sent.
type OrderLine struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderInput is the checkout form.
type CreateOrderInput struct {
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderLine `json:"items" validate:"dive"`
}

// OrderPatch is an admin update. Status and EstimatedDelivery apply when
// non-empty. TrackingNumber and Notes apply whenever present; an empty
// string clears them.
type OrderPatch struct {
	Status            string  `json:"status"`
	TrackingNumber    *string `json:"tracking_number"`
	Notes             *string `json:"notes"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

type OrderService struct {
	db     *gorm.DB
	orders *repositories.OrderRepository
	cart   *repositories.CartRepository
	photos PhotoStore
	events Publisher
}

func NewOrderService(db *gorm.DB, photos PhotoStore, events Publisher) *OrderService {
	return &OrderService{
		db:     db,
		orders: repositories.NewOrderRepository(db),
		cart:   repositories.NewCartRepository(db),
		photos: photos,
		events: events,
	}
}

// CreateOrder places an order for the caller and empties their cart. The
// order, its items and the cart clear commit together or not at all.
func (s *OrderService) CreateOrder(ctx context.Context, caller auth.Identity, in CreateOrderInput) (models.Order, error) {
	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" || len(in.Items) == 0 {
		return models.Order{}, fail(ErrInvalidInput, "Invalid order data")
	}

	order := models.Order{
		UserID:          caller.ID,
		Status:          models.StatusPending,
		ShippingAddress: address,
		Items:           make([]models.OrderItem, 0, len(in.Items)),
	}
	total := decimal.Zero
	for i, line := range in.Items {
		switch {
		case line.ProductID == 0:
			return models.Order{}, fail(ErrInvalidInput, "items[%d].product_id is required", i)
		case line.Quantity < 1:
			return models.Order{}, fail(ErrInvalidInput, "items[%d].quantity must be at least 1", i)
		case line.Price.IsNegative():
			return models.Order{}, fail(ErrInvalidInput, "items[%d].price must be 0 or more", i)
		}
		item := models.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity, Price: line.Price}
		total = total.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}
	order.TotalAmount = total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, &order); err != nil {
			return err
		}
		return s.cart.WithTx(tx).Clear(ctx, caller.ID)
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("orders: create for user %d: %w", caller.ID, err)
	}

	logger.WithCtx(ctx).Info("order created", "order_id", order.ID, "user_id", caller.ID, "total", order.TotalAmount.String())
	s.publish(ctx, EventOrderCreated, OrderEvent{
		OrderID: order.ID, UserID: order.UserID, Status: order.Status, TotalAmount: order.TotalAmount,
	})
	return order, nil
}

// ListOrders returns every order for admins and the caller's own otherwise,
// newest first.
func (s *OrderService) ListOrders(ctx context.Context, caller auth.Identity) ([]models.Order, error) {
	if caller.IsAdmin() {
		return s.orders.ListAll(ctx)
	}
	return s.orders.ListForUser(ctx, caller.ID)
}

// GetOrder returns an order with its items to its owner or an admin.
// Anyone else gets the same answer as for a missing order.
func (s *OrderService) GetOrder(ctx context.Context, caller auth.Identity, id uint) (models.Order, error) {
	o, err := s.orders.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, fail(ErrNotFound, "Order not found")
	}
	if err != nil {
		return models.Order{}, err
	}
	if o.UserID != caller.ID && !caller.IsAdmin() {
		return models.Order{}, fail(ErrNotFound, "Order not found")
	}
	return o, nil
}

// UpdateOrder applies an admin patch. Status changes must follow the
// fulfillment transition table.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, patch OrderPatch) (models.Order, error) {
	current, err := s.orders.Head(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Order{}, fail(ErrNotFound, "Order not found")
	}
	if err != nil {
		return models.Order{}, err
	}

	columns := map[string]any{}
	applied := false

	next := current.Status
	if patch.Status != "" {
		applied = true
		next = models.OrderStatus(strings.TrimSpace(patch.Status))
		if !next.Valid() {
			return models.Order{}, fail(ErrInvalidInput, "Invalid status: %s", patch.Status)
		}
		if !current.Status.CanTransitionTo(next) {
			return models.Order{}, transitionError(current.Status, next)
		}
		if next != current.Status {
			columns["status"] = next
		}
	}
	if patch.TrackingNumber != nil {
		applied = true
		columns["tracking_number"] = nullable(*patch.TrackingNumber)
	}
	if patch.Notes != nil {
		applied = true
		columns["notes"] = nullable(*patch.Notes)
	}
	if patch.EstimatedDelivery != "" {
		applied = true
		at, err := parseDeliveryDate(patch.EstimatedDelivery)
		if err != nil {
			return models.Order{}, err
		}
		columns["estimated_delivery"] = at
	}
	if !applied {
		return models.Order{}, fail(ErrInvalidInput, "No fields to update")
	}

	if len(columns) > 0 {
		if err := s.orders.Update(ctx, id, columns); err != nil {
			return models.Order{}, fmt.Errorf("orders: update %d: %w", id, err)
		}
	}

	updated, err := s.orders.Head(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	ev := OrderEvent{OrderID: id, UserID: updated.UserID, Status: updated.Status, TotalAmount: updated.TotalAmount}
	if next != current.Status {
		ev.PreviousStatus = current.Status
	}
	s.publish(ctx, EventOrderUpdated, ev)
	return updated, nil
}

// AppendDeliveryPhotos stores uploads and appends their paths after the
// order's existing photos. Concurrent appends retry on a version check so
// none is lost.
func (s *OrderService) AppendDeliveryPhotos(ctx context.Context, id uint, uploads []media.Upload) (models.PhotoList, error) {
	if len(uploads) == 0 {
		return nil, fail(ErrInvalidInput, "No photos uploaded")
	}
	if _, err := s.orders.Head(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ErrNotFound, "Order not found")
		}
		return nil, err
	}

	paths, err := s.photos.Save(ctx, uploads)
	if err != nil {
		var me *media.Error
		if errors.As(err, &me) {
			return nil, fail(ErrInvalidInput, "%s", me.Message)
		}
		return nil, fmt.Errorf("orders: store photos for %d: %w", id, err)
	}

	for attempt := 1; attempt <= maxPhotoAttempts; attempt++ {
		o, err := s.orders.Head(ctx, id)
		if err != nil {
			return nil, err
		}
		merged := make(models.PhotoList, 0, len(o.DeliveryPhotos)+len(paths))
		merged = append(merged, o.DeliveryPhotos...)
		merged = append(merged, paths...)

		err = s.orders.SwapPhotos(ctx, id, o.PhotosVersion, merged)
		if errors.Is(err, repositories.ErrStale) {
			logger.WithCtx(ctx).Debug("orders: photo append retry", "order_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("orders: save photos for %d: %w", id, err)
		}

		s.publish(ctx, EventOrderPhotosAdded, OrderEvent{
			OrderID: id, UserID: o.UserID, Status: o.Status, TotalAmount: o.TotalAmount, Photos: paths,
		})
		return merged, nil
	}
	return nil, fmt.Errorf("orders: photos for %d: gave up after %d concurrent updates", id, maxPhotoAttempts)
}

func transitionError(from, to models.OrderStatus) error {
	if from.Terminal() {
		return fail(ErrInvalidInput, "Cannot change status from %s to %s: %s orders are final", from, to, from)
	}
	allowed := make([]string, 0, len(from.Next()))
	for _, st := range from.Next() {
		allowed = append(allowed, string(st))
	}
	return fail(ErrInvalidInput, "Cannot change status from %s to %s (allowed: %s)", from, to, strings.Join(allowed, ", "))
}

func (s *OrderService) publish(ctx context.Context, name string, ev OrderEvent) {
	if s.events == nil {
		return
	}
	ev.At = time.Now().UTC()
	s.events.Fire(ctx, name, ev)
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func parseDeliveryDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, fail(ErrInvalidInput, "estimated_delivery must be RFC3339 or YYYY-MM-DD")
}
