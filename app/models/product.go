package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item. Stock is display-only; orders never decrement it.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category     string          `gorm:"size:100;not null;index" json:"category"`
	Image        string          `gorm:"size:1024" json:"image"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	Rating       decimal.Decimal `gorm:"type:decimal(2,1);not null;default:0" json:"rating"`
	ReviewsCount int             `gorm:"not null;default:0" json:"reviews_count"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

// Review is an append-only product rating.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	UserName string `gorm:"->;-:migration" json:"user_name,omitempty"`
}

// ProductDetail is a product with its reviews, newest first.
type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews"`
}
