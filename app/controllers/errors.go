package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// fail writes err as {"error": ...}. Service failures keep their message;
// anything else is logged and hidden behind a 500.
func fail(c *ctx.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	msg := services.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method, "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Server error")
		return
	}
	c.Error(status, msg)
}

// caller returns the authenticated identity or writes a 401.
func caller(c *ctx.Context) (id auth.Identity, ok bool) {
	id, ok = c.Identity()
	if !ok {
		c.Error(http.StatusUnauthorized, "Access token required")
	}
	return id, ok
}

func pathID(c *ctx.Context, what string) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.Error(http.StatusBadRequest, "Invalid "+what+" id")
	}
	return id, ok
}
