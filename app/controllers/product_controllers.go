package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// ProductController is the admin side of the catalog.
type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.CreateProduct(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"message": "Product created successfully", "product_id": p.ID})
}

func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	if err := pc.service.UpdateProduct(c.Context(), id, in); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product updated successfully")
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	if err := pc.service.DeleteProduct(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted successfully")
}
