package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

const (
	DefaultProductLimit = 20
	MaxProductLimit     = 100

	categoriesKey = "catalog:categories"
	categoriesTTL = 5 * time.Minute
)

// ProductInput is the admin product form.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required,max=100"`
	Image       string          `json:"image" validate:"omitempty,max=1024"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// ReviewInput is a customer's product review.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type CatalogService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	reviews  *repositories.ReviewRepository
	cache    cache.Store
}

func NewCatalogService(db *gorm.DB, store cache.Store) *CatalogService {
	if store == nil {
		store = cache.Noop{}
	}
	return &CatalogService{
		db:       db,
		products: repositories.NewProductRepository(db),
		reviews:  repositories.NewReviewRepository(db),
		cache:    store,
	}
}

// ListProducts returns one page of the catalog. Limit falls back to
// DefaultProductLimit and is capped at MaxProductLimit.
func (s *CatalogService) ListProducts(ctx context.Context, f repositories.ProductFilter) ([]models.Product, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultProductLimit
	case f.Limit > MaxProductLimit:
		f.Limit = MaxProductLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.products.List(ctx, f)
}

// GetProduct returns a product with its reviews, newest first.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (models.ProductDetail, error) {
	p, err := s.products.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ProductDetail{}, fail(ErrNotFound, "Product not found")
	}
	if err != nil {
		return models.ProductDetail{}, err
	}

	reviews, err := s.reviews.ForProduct(ctx, id)
	if err != nil {
		return models.ProductDetail{}, err
	}
	return models.ProductDetail{Product: p, Reviews: reviews}, nil
}

// ListCategories returns the distinct categories, cached until the next
// product write.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return cache.Remember(ctx, s.cache, categoriesKey, categoriesTTL, func() ([]string, error) {
		return s.products.Categories(ctx)
	})
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := checkProduct(in); err != nil {
		return models.Product{}, err
	}
	p := productFrom(in)
	if err := s.products.Create(ctx, &p); err != nil {
		return p, fmt.Errorf("catalog: create product: %w", err)
	}
	s.forgetCategories(ctx)
	return p, nil
}

// UpdateProduct overwrites a product's editable fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) error {
	if err := checkProduct(in); err != nil {
		return err
	}
	p := productFrom(in)
	p.ID = id
	if err := s.products.Update(ctx, &p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ErrNotFound, "Product not found")
		}
		return fmt.Errorf("catalog: update product %d: %w", id, err)
	}
	s.forgetCategories(ctx)
	return nil
}

// DeleteProduct removes a product. Order snapshots keep their line prices.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ErrNotFound, "Product not found")
		}
		return fmt.Errorf("catalog: delete product %d: %w", id, err)
	}
	s.forgetCategories(ctx)
	return nil
}

// AddReview appends a review and folds its rating into the product's
// average and count in the same transaction.
func (s *CatalogService) AddReview(ctx context.Context, userID, productID uint, in ReviewInput) (models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, fail(ErrInvalidInput, "rating must be between 1 and 5")
	}

	review := models.Review{ProductID: productID, UserID: userID, Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		p, err := products.Find(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.reviews.WithTx(tx).Create(ctx, &review); err != nil {
			return err
		}
		p.Rating = foldRating(p.Rating, p.ReviewsCount, in.Rating)
		p.ReviewsCount++
		return products.SetRating(ctx, p)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return review, fail(ErrNotFound, "Product not found")
	}
	if err != nil {
		return review, fmt.Errorf("catalog: add review to %d: %w", productID, err)
	}
	return review, nil
}

// foldRating adds one rating to an average over count ratings, rounded to
// one decimal place.
func foldRating(avg decimal.Decimal, count, rating int) decimal.Decimal {
	total := avg.Mul(decimal.NewFromInt(int64(count))).Add(decimal.NewFromInt(int64(rating)))
	return total.Div(decimal.NewFromInt(int64(count + 1))).Round(1)
}

func (s *CatalogService) forgetCategories(ctx context.Context) {
	if err := s.cache.Del(ctx, categoriesKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: drop categories cache", "error", err)
	}
}

func checkProduct(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return fail(ErrInvalidInput, "Name and category are required")
	}
	if in.Price.IsNegative() {
		return fail(ErrInvalidInput, "price must be 0 or more")
	}
	if in.Stock < 0 {
		return fail(ErrInvalidInput, "stock must be 0 or more")
	}
	return nil
}

func productFrom(in ProductInput) models.Product {
	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		Image:       in.Image,
		Stock:       in.Stock,
	}
}
