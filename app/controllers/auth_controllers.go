package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /api/auth/register.
func (a *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(res)
}

// Login handles POST /api/auth/login.
func (a *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

// Me handles GET /api/auth/me.
func (a *AuthController) Me(c *ctx.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	user, err := a.service.Me(c.Context(), id.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(services.IdentityOf(user))
}
