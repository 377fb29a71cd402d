package middleware

import (
	"net/http"

	"github.com/addisfuel/fuelwatch/models"
)

// RequireRole gates a route on the caller's role. It runs after the JWT
// middleware: no claims means 401, a role outside the allow-list means 403.
// Role comparison goes through models.ParseRole, so mixed-case stored roles
// are handled in exactly one place.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			role, ok := models.ParseRole(claims.Role)
			if !ok || !role.IsAny(allowed...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CallerRole returns the caller's normalized role, defaulting to public for
// unauthenticated or unknown values.
func CallerRole(r *http.Request) models.Role {
	claims := GetClaims(r)
	if claims == nil {
		return models.RolePublic
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.RolePublic
	}
	return role
}
