package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

func (cc *CartController) Index(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	items, err := cc.service.List(c.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

func (cc *CartController) Store(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}
	created, err := cc.service.Add(c.Context(), user.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	if created {
		c.Message("Item added to cart")
		return
	}
	c.Message("Cart updated successfully")
}

func (cc *CartController) Update(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "cart item")
	if !ok {
		return
	}
	var in services.QuantityInput
	if !c.BindJSON(&in) {
		return
	}
	if err := cc.service.Update(c.Context(), user.ID, id, in.Quantity); err != nil {
		fail(c, err)
		return
	}
	c.Message("Cart updated successfully")
}

func (cc *CartController) Destroy(c *ctx.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "cart item")
	if !ok {
		return
	}
	if err := cc.service.Remove(c.Context(), user.ID, id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Item removed from cart")
}
