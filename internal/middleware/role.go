package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that rejects requests whose JWT "role"
// claim is not in the allowed set. This is a coarse filter on the claim
// only: the repositories perform the authoritative role lookup against the
// users table on every gated operation, so a stale claim can pass here and
// still be rejected below.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": "fail", "message": "you have no access"})
			}
			return next(c)
		}
	}
}
