// Package security holds the request-gating middleware: CSRF checks, rate
// limiting and response security headers.
package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/kvstore"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// CSRFHeader carries the anti-forgery token on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// DefaultCSRFCapacity bounds the token store; past it the oldest half of the
// sessions is evicted.
const DefaultCSRFCapacity = 1000

// CSRFService issues and checks per-session anti-forgery tokens. The session
// identity is the caller's bearer token, so tokens age out together with the
// sessions that own them.
type CSRFService struct {
	store kvstore.Store
}

// NewCSRFService builds the service over the given store.
func NewCSRFService(store kvstore.Store) *CSRFService {
	return &CSRFService{store: store}
}

// Issue generates a token for the session, replacing any prior one.
func (s *CSRFService) Issue(ctx context.Context, sessionID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.store.Set(ctx, sessionID, kvstore.Item{Value: token}); err != nil {
		return "", err
	}
	return token, nil
}

// Check reports whether the supplied token is the one most recently issued
// for the session.
func (s *CSRFService) Check(ctx context.Context, sessionID, supplied string) (bool, error) {
	item, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return item != nil && item.Value == supplied, nil
}

// CSRFMiddleware enforces the anti-forgery check on state-changing requests.
// Safe methods and the exempt paths bypass the check; the exempt routes run
// before a session exists.
func CSRFMiddleware(service *CSRFService, exemptPaths ...string) fiber.Handler {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if _, ok := exempt[c.Path()]; ok {
			return c.Next()
		}

		supplied := c.Get(CSRFHeader)
		sessionID := auth.BearerToken(c)
		if supplied == "" || sessionID == "" {
			return apperrors.NewForbidden("CSRF token required")
		}

		ok, err := service.Check(c.Context(), sessionID, supplied)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewCSRFMismatch()
		}
		return c.Next()
	}
}
