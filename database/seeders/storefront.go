package seeders

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func init() {
	Register("products", seedProducts)
	Register("users", seedUsers)
	Register("orders", seedOrders)
}

// Demo accounts.
const (
	AdminEmail       = "admin@ecommerce.com"
	AdminPassword    = "admin123"
	CustomerEmail    = "customer@example.com"
	CustomerPassword = "customer123"
)

func pexels(id string, width int) string {
	return "https://images.pexels.com/photos/" + id + "/pexels-photo-" + id + ".jpeg?auto=compress&cs=tinysrgb&w=" + strconv.Itoa(width)
}

var demoProducts = []models.Product{
	{Name: "Premium Wireless Headphones", Description: "High-quality noise-canceling wireless headphones with 30-hour battery life.",
		Price: decimal.RequireFromString("299.99"), Category: "Electronics", Image: pexels("3394650", 600),
		Stock: 50, Rating: decimal.RequireFromString("4.8"), ReviewsCount: 127},
	{Name: "Smartphone Pro Max", Description: "Latest flagship smartphone with advanced camera system and 5G connectivity.",
		Price: decimal.RequireFromString("1099.99"), Category: "Electronics", Image: pexels("699122", 600),
		Stock: 30, Rating: decimal.RequireFromString("4.6"), ReviewsCount: 89},
	{Name: "Luxury Leather Handbag", Description: "Handcrafted genuine leather handbag perfect for any occasion.",
		Price: decimal.RequireFromString("199.99"), Category: "Fashion", Image: pexels("1152077", 600),
		Stock: 25, Rating: decimal.RequireFromString("4.9"), ReviewsCount: 76},
	{Name: "Gaming Mechanical Keyboard", Description: "RGB backlit mechanical keyboard with premium switches for professional gaming.",
		Price: decimal.RequireFromString("149.99"), Category: "Electronics", Image: pexels("2115256", 600),
		Stock: 40, Rating: decimal.RequireFromString("4.7"), ReviewsCount: 203},
	{Name: "Designer Sunglasses", Description: "Stylish polarized sunglasses with UV protection and premium frame.",
		Price: decimal.RequireFromString("129.99"), Category: "Fashion", Image: pexels("1212461", 600),
		Stock: 60, Rating: decimal.RequireFromString("4.5"), ReviewsCount: 45},
	{Name: "Smart Fitness Watch", Description: "Advanced fitness tracker with heart rate monitoring and GPS.",
		Price: decimal.RequireFromString("249.99"), Category: "Electronics", Image: pexels("267394", 600),
		Stock: 35, Rating: decimal.RequireFromString("4.4"), ReviewsCount: 158},
	{Name: "Organic Coffee Beans", Description: "Premium single-origin organic coffee beans, medium roast.",
		Price: decimal.RequireFromString("24.99"), Category: "Food", Image: pexels("1695052", 600),
		Stock: 100, Rating: decimal.RequireFromString("4.8"), ReviewsCount: 92},
	{Name: "Wireless Charging Pad", Description: "Fast wireless charging pad compatible with all Qi-enabled devices.",
		Price: decimal.RequireFromString("39.99"), Category: "Electronics", Image: pexels("4526413", 600),
		Stock: 80, Rating: decimal.RequireFromString("4.3"), ReviewsCount: 34},
}

func seedProducts(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil || n > 0 {
		return err
	}

	// Stagger creation times so "newest" has a stable order.
	base := time.Now().UTC().Add(-time.Duration(len(demoProducts)) * time.Hour)
	products := make([]models.Product, len(demoProducts))
	for i, p := range demoProducts {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		products[i] = p
	}
	return db.Create(&products).Error
}

func seedUsers(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil || n > 0 {
		return err
	}

	adminHash, err := auth.HashPassword(AdminPassword)
	if err != nil {
		return err
	}
	customerHash, err := auth.HashPassword(CustomerPassword)
	if err != nil {
		return err
	}

	users := []models.User{
		{Email: AdminEmail, Password: adminHash, Name: "Admin User", Role: auth.RoleAdmin},
		{Email: CustomerEmail, Password: customerHash, Name: "John Doe", Role: auth.RoleCustomer},
	}
	return db.Create(&users).Error
}

func seedOrders(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Order{}).Count(&n).Error; err != nil || n > 0 {
		return err
	}

	var customer models.User
	if err := db.Where("email = ?", CustomerEmail).First(&customer).Error; err != nil {
		return err
	}
	byName := map[string]models.Product{}
	var products []models.Product
	if err := db.Find(&products).Error; err != nil {
		return err
	}
	for _, p := range products {
		byName[p.Name] = p
	}

	line := func(name string) []models.OrderItem {
		p := byName[name]
		return []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}}
	}
	str := func(s string) *string { return &s }
	now := time.Now().UTC()

	orders := []models.Order{
		{
			UserID: customer.ID, TotalAmount: decimal.RequireFromString("299.99"), Status: models.StatusDelivered,
			ShippingAddress: "123 Main St, New York, NY 10001", TrackingNumber: str("TRK123456789"),
			DeliveryPhotos: models.PhotoList{pexels("4393021", 400), pexels("4393668", 400)},
			PhotosVersion:  1,
			Notes:          str("Package delivered to front door"),
			CreatedAt:      now.Add(-10 * 24 * time.Hour),
			Items:          line("Premium Wireless Headphones"),
		},
		{
			UserID: customer.ID, TotalAmount: decimal.RequireFromString("1099.99"), Status: models.StatusShipped,
			ShippingAddress: "456 Oak Ave, Los Angeles, CA 90210", TrackingNumber: str("TRK987654321"),
			Notes:     str("Express shipping requested"),
			CreatedAt: now.Add(-5 * 24 * time.Hour),
			Items:     line("Smartphone Pro Max"),
		},
		{
			UserID: customer.ID, TotalAmount: decimal.RequireFromString("199.99"), Status: models.StatusProcessing,
			ShippingAddress: "789 Pine St, Chicago, IL 60601",
			Notes:           str("Gift wrapping requested"),
			CreatedAt:       now.Add(-24 * time.Hour),
			Items:           line("Luxury Leather Handbag"),
		},
	}
	return db.Create(&orders).Error
}
