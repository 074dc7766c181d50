// Package middleware contains HTTP middleware functions for the F1 fan site API.
// Middleware sits between the HTTP server and route handlers, which makes it the
// right place for cross-cutting concerns like authentication and access logging.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies the JSON Web Token sent by the data job.
	"github.com/golang-jwt/jwt/v5"
)

// Keys used with c.Locals to hand auth results to later handlers.
const (
	LocalSubject = "subject"
	LocalRole    = "role"
)

// Claims is the payload we expect in an admin token. The offline data job signs
// it with the shared ADMIN_JWT_SECRET:
//
//	{"sub": "data-job", "role": "admin", "exp": 1767225600}
type Claims struct {
	jwt.RegisteredClaims        // Subject identifies the uploader; ExpiresAt is honoured when set
	Role                 string `json:"role"`
}

// Auth returns a middleware that verifies an HS256 "Authorization: Bearer <token>"
// header against secret. On success the token's subject and role are stored in
// c.Locals for RequireRole and the handlers; otherwise the request stops with 401.
func Auth(secret []byte) fiber.Handler {
	// Only HMAC-SHA256 is accepted. Without this a token could pick its own
	// algorithm (e.g. "none") and skip verification entirely.
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		if claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		c.Locals(LocalSubject, claims.Subject)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}
