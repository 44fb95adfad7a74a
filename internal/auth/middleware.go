package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yerokha312/cooks-corner/internal/token"
)

// Protected validates the Authorization bearer token. Beyond signature and
// expiry, the token must still be backed by its cache entry: a newer login
// for the same user overwrites the entry and silently invalidates the older
// access token.
func Protected(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearer(c, tokens)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    "UNAUTHORIZED",
					"message": err.Error(),
				},
			})
		}

		setPrincipal(c, claims)
		return c.Next()
	}
}

// Optional resolves the caller's identity when a valid token is presented and
// continues anonymously otherwise. Feeds the isLiked/isBookmarked/isFollowed
// fields that are null for anonymous viewers.
func Optional(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := parseBearer(c, tokens); err == nil {
			setPrincipal(c, claims)
		}
		return c.Next()
	}
}

func parseBearer(c *fiber.Ctx, tokens *token.Service) (*token.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, &token.InvalidTokenError{Reason: "Missing authorization token"}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, &token.InvalidTokenError{Reason: "Invalid token format"}
	}

	return tokens.ValidateAccessToken(c.Context(), parts[1])
}

func setPrincipal(c *fiber.Ctx, claims *token.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("email", claims.Subject)
	c.Locals("name", claims.Name)
	c.Locals("scopes", claims.Scopes)
}

// UserID returns the authenticated caller's id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}
