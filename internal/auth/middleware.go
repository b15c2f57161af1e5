package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/domain"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

const claimsKey = "auth_claims"

// AuthMiddleware validates bearer tokens. The token is self-contained, so no
// account lookup happens here; handlers that need the full record load it
// from the claims id.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := BearerToken(c)
	if token == "" {
		return apperrors.NewUnauthorized("access token required")
	}

	claims, err := m.tokens.Parse(token)
	if err != nil {
		return err
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// RequireRole ensures the authenticated caller holds the given role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("access token required")
		}
		if claims.Role != role {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// ClaimsFromContext retrieves the authenticated claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when absent or malformed.
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
