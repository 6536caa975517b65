package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// WishlistInput saves a product for later.
type WishlistInput struct {
	ProductID uint `json:"product_id" validate:"required"`
}

type WishlistService struct {
	wishlist *repositories.WishlistRepository
	products *repositories.ProductRepository
}

func NewWishlistService(db *gorm.DB) *WishlistService {
	return &WishlistService{
		wishlist: repositories.NewWishlistRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// List returns the caller's wishlist with product details.
func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	return s.wishlist.List(ctx, userID)
}

// Add saves a product. Saving the same product twice is a conflict.
func (s *WishlistService) Add(ctx context.Context, userID, productID uint) error {
	if productID == 0 {
		return fail(ErrInvalidInput, "product_id is required")
	}
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return fail(ErrNotFound, "Product not found")
	}

	err = s.wishlist.Add(ctx, userID, productID)
	if errors.Is(err, repositories.ErrDuplicate) {
		return fail(ErrConflict, "Item already in wishlist")
	}
	if err != nil {
		return fmt.Errorf("wishlist: add product %d: %w", productID, err)
	}
	return nil
}

// Remove deletes one of the caller's rows.
func (s *WishlistService) Remove(ctx context.Context, userID, id uint) error {
	err := s.wishlist.Remove(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fail(ErrNotFound, "Wishlist item not found")
	}
	return err
}
