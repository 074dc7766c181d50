package middleware

import "github.com/gofiber/fiber/v2"

// RequireRole returns a middleware that lets the request through only when the
// role stored by Auth is one of roles. It must run after Auth; a missing role
// means Auth didn't run or the token carried none, and is rejected with 403.
//
// The variadic parameter (roles ...string) lets a route accept several roles:
//
//	admin := app.Group("/api/v1/admin", middleware.Auth(secret), middleware.RequireRole("admin"))
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Locals returns an interface{}, so we type-assert it back to a string.
		// The two-value form (role, ok) doesn't panic when the value is missing
		// or of another type; ok is simply false.
		role, ok := c.Locals(LocalRole).(string)
		if !ok || role == "" {
			// 403 Forbidden, not 401: the caller did authenticate (or Auth would
			// have stopped the request), the token just grants no role.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		// A linear scan is plenty for the one or two roles a route lists.
		for _, allowed := range roles {
			if role == allowed {
				// c.Next() hands the request to the next handler in the chain.
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
