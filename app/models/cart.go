package models

import "github.com/shopspring/decimal"

// CartItem is one product line in a user's cart. Name, Price and Image are
// filled from products when listing.
type CartItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;index:idx_cart_user_product" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`

	Name  string          `gorm:"->;-:migration" json:"name,omitempty"`
	Price decimal.Decimal `gorm:"->;-:migration" json:"price"`
	Image string          `gorm:"->;-:migration" json:"image,omitempty"`
}

func (CartItem) TableName() string { return "cart" }

// WishlistItem is a saved product. A (user, product) pair appears at most once.
type WishlistItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`

	Name  string          `gorm:"->;-:migration" json:"name,omitempty"`
	Price decimal.Decimal `gorm:"->;-:migration" json:"price"`
	Image string          `gorm:"->;-:migration" json:"image,omitempty"`
}

func (WishlistItem) TableName() string { return "wishlist" }
