package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/parking-pilot/internal/domain"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// TokenManager handles issuing and validating JWT bearer tokens. Only
// HMAC-SHA256 is accepted on verification; tokens signed any other way,
// including alg "none", are rejected.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the time source, for expiry tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims describes the JWT payload.
type Claims struct {
	ID       string      `json:"id"`
	Username string      `json:"username,omitempty"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Generate builds and signs a bearer token for the account.
func (tm *TokenManager) Generate(account *domain.Account, ttl time.Duration) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates a token and returns its claims. Failures are classified so
// the transport layer can answer with a distinct message (same status for
// all of them).
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.NewTokenExpired()
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.NewTokenMalformed()
		default:
			return nil, apperrors.NewTokenInvalidSignature()
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.NewTokenInvalidSignature()
	}
	if claims.ID == "" || claims.Email == "" || !claims.Role.Valid() {
		return nil, apperrors.NewTokenMissingClaims()
	}
	return claims, nil
}
