// Package rbac gates routes on the role carried by the caller's token.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// HasRole allows access only to callers holding one of roles.
// middleware.AuthMiddleware must run first.
func HasRole(message string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok || !allowed[id.Role] {
				response.Forbidden(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts a route to admins.
var RequireAdmin = HasRole("Admin access required", auth.RoleAdmin)
