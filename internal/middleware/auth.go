// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"log/slog"
	"strings"

	"walletcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CallbackAuth guards service-to-service routes with an HS256 bearer token
// signed by the shared secret. The verified subject is stored in
// c.Locals("caller").
func CallbackAuth(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "missing authorization header")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "invalid authorization format")
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			slog.Warn("callback token rejected", "path", c.Path(), "error", err)
			return response.Unauthorized(c, "invalid token")
		}

		c.Locals("caller", claims.Subject)
		return c.Next()
	}
}
