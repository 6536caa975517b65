package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type WishlistController struct {
	service *services.WishlistService
}

func NewWishlistController(service *services.WishlistService) *WishlistController {
	return &WishlistController{service: service}
}

func (wc *WishlistController) Index(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	items, err := wc.service.List(c.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

func (wc *WishlistController) Store(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var in services.WishlistInput
	if !c.BindJSON(&in) {
		return
	}
	if err := wc.service.Add(c.Context(), user.ID, in.ProductID); err != nil {
		fail(c, err)
		return
	}
	c.Message("Item added to wishlist")
}

func (wc *WishlistController) Destroy(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "wishlist item")
	if !ok {
		return
	}
	if err := wc.service.Remove(c.Context(), user.ID, id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Item removed from wishlist")
}
