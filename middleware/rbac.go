// ABOUTME: Role-based access control middleware for API endpoints
// ABOUTME: Gates endpoints by minimum required role from the caller's claims

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/artspark/gallery-bff/models"
)

// roleHierarchy defines the privilege level for each role.
// Higher value means more privilege. Unknown caller roles resolve to 0,
// which denies access to any protected endpoint (fail-closed). Anonymous
// callers are level 0 too.
var roleHierarchy = map[string]int{
	models.RoleUser:  1,
	models.RoleAdmin: 2,
}

// RequireRole returns middleware that enforces a minimum role.
// Panics if requiredRole is not in the role hierarchy (catches config errors at startup).
// Returns 403 Forbidden if the caller's best role is insufficient.
func RequireRole(requiredRole string) func(http.HandlerFunc) http.HandlerFunc {
	requiredLevel, ok := roleHierarchy[requiredRole]
	if !ok {
		panic(fmt.Sprintf("RequireRole: unknown role %q; valid roles: %v", requiredRole, []string{models.RoleUser, models.RoleAdmin}))
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserClaims(r)

			callerLevel := 0
			if claims != nil {
				for _, role := range claims.Roles {
					if level := roleHierarchy[role]; level > callerLevel {
						callerLevel = level
					}
				}
			}

			if callerLevel < requiredLevel {
				username := ""
				if claims != nil {
					username = claims.Username
				}
				slog.Warn("RBAC authorization denied",
					"path", r.URL.Path,
					"method", r.Method,
					"required_role", requiredRole,
					"username", username,
				)
				writeJSONError(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next(w, r)
		}
	}
}
