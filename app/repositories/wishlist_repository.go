package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

// WishlistRepository handles wishlist rows. Every method is scoped to one user.
type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// List returns the user's wishlist joined with product name, price and image.
func (r *WishlistRepository) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Select("wishlist.*, products.name AS name, products.price AS price, products.image AS image").
		Joins("JOIN products ON products.id = wishlist.product_id").
		Where("wishlist.user_id = ?", userID).
		Order("wishlist.id ASC").
		Find(&items).Error
	return items, err
}

// Add inserts (user, product). An existing pair yields ErrDuplicate.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID uint) error {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error)
}

// Remove deletes one of the user's rows.
func (r *WishlistRepository) Remove(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
