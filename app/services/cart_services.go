package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// CartInput adds a product to the cart. Quantity defaults to 1.
type CartInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gte=0"`
}

// QuantityInput sets a cart row's quantity.
type QuantityInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartService struct {
	cart     *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		cart:     repositories.NewCartRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// List returns the caller's cart with product details.
func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.cart.List(ctx, userID)
}

// Add puts a product in the cart, incrementing the quantity when it is
// already there. It reports whether a new row was created.
func (s *CartService) Add(ctx context.Context, userID uint, in CartInput) (bool, error) {
	if in.ProductID == 0 {
		return false, fail(ErrInvalidInput, "product_id is required")
	}
	if in.Quantity < 0 {
		return false, fail(ErrInvalidInput, "quantity must be at least 1")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	ok, err := s.products.Exists(ctx, in.ProductID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fail(ErrNotFound, "Product not found")
	}

	created, err := s.cart.Add(ctx, userID, in.ProductID, in.Quantity)
	if err != nil {
		return false, fmt.Errorf("cart: add product %d: %w", in.ProductID, err)
	}
	return created, nil
}

// Update sets the quantity of one of the caller's rows.
func (s *CartService) Update(ctx context.Context, userID, id uint, quantity int) error {
	if quantity < 1 {
		return fail(ErrInvalidInput, "quantity must be at least 1")
	}
	err := s.cart.SetQuantity(ctx, userID, id, quantity)
	if errors.Is(err, repositories.ErrNotFound) {
		return fail(ErrNotFound, "Cart item not found")
	}
	return err
}

// Remove deletes one of the caller's rows.
func (s *CartService) Remove(ctx context.Context, userID, id uint) error {
	err := s.cart.Remove(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fail(ErrNotFound, "Cart item not found")
	}
	return err
}
