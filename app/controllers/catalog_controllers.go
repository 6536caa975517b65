package controllers

import (
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// Index handles GET /api/products?category=&search=&sort=&limit=&offset=.
func (cc *CatalogController) Index(c *ctx.Context) {
	products, err := cc.service.ListProducts(c.Context(), repositories.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Limit:    c.QueryInt("limit", services.DefaultProductLimit),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

func (cc *CatalogController) Show(c *ctx.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	detail, err := cc.service.GetProduct(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(detail)
}

func (cc *CatalogController) Categories(c *ctx.Context) {
	categories, err := cc.service.ListCategories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(categories)
}

// Review handles POST /api/products/{id}/reviews.
func (cc *CatalogController) Review(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	review, err := cc.service.AddReview(c.Context(), user.ID, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(review)
}
