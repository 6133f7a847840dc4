package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arta-bank/arta_bank/internal/auth"
)

// Locals keys set by JWTAuth for downstream handlers.
const (
	LocalsAccountNumber = "account_number"
	LocalsUserID        = "user_id"
)

// JWTAuth validates bearer access tokens and stores the authenticated
// identity in the request locals. An expired token is reported distinctly
// from a malformed one.
func JWTAuth(tokens *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return fiber.NewError(http.StatusUnauthorized, "token expired")
			}
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(LocalsUserID, claims.Subject)
		c.Locals(LocalsAccountNumber, claims.AccountNumber)
		return c.Next()
	}
}
