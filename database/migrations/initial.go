package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", table{&models.User{}})
	migration.Register("20260101000001_create_products_table", table{&models.Product{}})
	migration.Register("20260101000002_create_orders_table", table{&models.Order{}})
	migration.Register("20260101000003_create_order_items_table", table{&models.OrderItem{}})
	migration.Register("20260101000004_create_cart_table", table{&models.CartItem{}})
	migration.Register("20260101000005_create_wishlist_table", table{&models.WishlistItem{}})
	migration.Register("20260101000006_create_reviews_table", table{&models.Review{}})
}

// table creates one model's table on Up and drops it on Down.
type table struct {
	model any
}

func (t table) Up(db *gorm.DB) error {
	return db.AutoMigrate(t.model)
}

func (t table) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(t.model)
}
