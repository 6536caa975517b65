package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a fulfillment stage.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// transitions lists the statuses each status may move to. Delivered and
// cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool { return s.Valid() && len(transitions[s]) == 0 }

// CanTransitionTo reports whether an order in s may move to next. Staying in
// the same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s.
func (s OrderStatus) Next() []OrderStatus {
	out := make([]OrderStatus, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// PhotoList is an ordered list of delivery photo paths stored as a JSON text
// column. Missing or unreadable storage loads as an empty list.
type PhotoList []string

// Scan implements sql.Scanner. It never fails.
func (p *PhotoList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		*p = PhotoList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		*p = PhotoList{}
		return nil
	}
	*p = out
	return nil
}

// Value implements driver.Valuer. An empty list is stored as NULL.
func (p PhotoList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// GormDataType keeps the column a plain text column on every dialect.
func (PhotoList) GormDataType() string { return "text" }

// MarshalJSON always emits an array.
func (p PhotoList) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// Order is a customer's purchase. Items and TotalAmount are fixed at
// creation; the fulfillment fields change only through admin updates.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            OrderStatus     `gorm:"size:32;not null;default:pending;index" json:"status"`
	ShippingAddress   string          `gorm:"type:text;not null" json:"shipping_address"`
	TrackingNumber    *string         `gorm:"size:255" json:"tracking_number"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	DeliveryPhotos    PhotoList       `json:"delivery_photos"`
	PhotosVersion     int             `gorm:"not null;default:0" json:"-"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`

	UserName  string      `gorm:"->;-:migration" json:"user_name,omitempty"`
	UserEmail string      `gorm:"->;-:migration" json:"user_email,omitempty"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is an immutable line snapshot taken when the order is placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	ProductName  string `gorm:"->;-:migration" json:"product_name,omitempty"`
	ProductImage string `gorm:"->;-:migration" json:"product_image,omitempty"`
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
