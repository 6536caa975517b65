package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

// OrderRepository handles orders and their line items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

const orderWithUser = "orders.*, users.name AS user_name, users.email AS user_email"

// Create inserts the order and its items.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// ListAll returns every order with the purchaser's name and email, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(orderWithUser).
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC, orders.id DESC").
		Find(&orders).Error
	return orders, err
}

// ListForUser returns the user's orders, newest first.
func (r *OrderRepository) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// Find returns one order with purchaser details and items joined with
// product name and image.
func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(orderWithUser).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.id = ?", id).
		First(&o).Error
	if err != nil {
		return o, translate(err)
	}

	o.Items = []models.OrderItem{}
	err = r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.*, products.name AS product_name, products.image AS product_image").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", id).
		Order("order_items.id ASC").
		Find(&o.Items).Error
	return o, err
}

// Head returns the order row without joins.
func (r *OrderRepository) Head(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).First(&o, id).Error
	return o, translate(err)
}

// Update writes columns on order id. Callers check existence first; some
// drivers report zero affected rows when values are unchanged.
func (r *OrderRepository) Update(ctx context.Context, id uint, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(columns).Error
}

// SwapPhotos stores photos only if the order is still at version, bumping
// the version. A lost race yields ErrStale.
func (r *OrderRepository) SwapPhotos(ctx context.Context, id uint, version int, photos models.PhotoList) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND photos_version = ?", id, version).
		Updates(map[string]any{
			"delivery_photos": photos,
			"photos_version":  gorm.Expr("photos_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
