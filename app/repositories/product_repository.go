package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Sort orders accepted by ProductFilter.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
)

var productOrder = map[string]string{
	SortNewest:    "created_at DESC, id DESC",
	SortPriceLow:  "price ASC, id ASC",
	SortPriceHigh: "price DESC, id DESC",
	SortRating:    "rating DESC, id DESC",
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	Category string
	Search   string
	Sort     string
	Limit    int
	Offset   int
}

// ProductRepository handles products and their reviews.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// List returns one page of products. Category "all" and empty match
// everything; Search is a case-insensitive substring of name or description.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}

	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[SortNewest]
	}

	products := []models.Product{}
	err := q.Order(order).Limit(f.Limit).Offset(f.Offset).Find(&products).Error
	return products, err
}

// Find returns one product.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return p, translate(err)
}

// Exists reports whether a product with id exists.
func (r *ProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Categories returns the distinct categories in alphabetical order.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").Order("category ASC").Pluck("category", &categories).Error
	return categories, err
}

// Create inserts p and fills its ID.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update overwrites the editable columns of product p.ID.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image":       p.Image,
		"stock":       p.Stock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// sqlite and mysql report zero rows when nothing changed; tell that
		// apart from a missing row.
		if ok, err := r.Exists(ctx, p.ID); err != nil {
			return err
		} else if !ok {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRating stores a new rating average and review count.
func (r *ProductRepository) SetRating(ctx context.Context, p models.Product) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"rating":        p.Rating,
		"reviews_count": p.ReviewsCount,
	}).Error
}
