package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	defaultTokenTTL = 30 * time.Minute
	tokenIssuer     = "pixelforge-storefront"
)

// Token verification failures. All of them satisfy
// errors.Is(err, ErrInvalidToken).
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the payload of an access token. Subject carries the account
// email. ExpiresAtNanos is the exact expiry; the registered exp claim is
// rounded up to the next whole second.
type Claims struct {
	Role           domain.Role `json:"role"`
	ExpiresAtNanos int64       `json:"exp_ns"`
	jwt.RegisteredClaims
}

// Expiry returns the exact instant the token stops verifying.
func (c *Claims) Expiry() time.Time {
	return time.Unix(0, c.ExpiresAtNanos).UTC()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TokenService issues and verifies HS256 access tokens. Validity is derived
// from the signature and expiry alone; there is no revocation list, so a
// token stays valid for its whole TTL.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  ports.Clock
	parser *jwt.Parser
}

// NewTokenService builds a TokenService. Issue and Verify read time from the
// same clock.
func NewTokenService(secret string, ttl time.Duration, clock ports.Clock) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}
}

// TTL returns the default lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject and role valid for ttl, or for the default
// TTL when ttl <= 0.
func (s *TokenService) Issue(subject string, role domain.Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.clock.Now()
	expiry := now.Add(ttl)
	claims := Claims{
		Role:           role,
		ExpiresAtNanos: expiry.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiry)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAtNanos <= 0 {
		return nil, ErrTokenMalformed
	}
	if !s.clock.Now().Before(claims.Expiry()) {
		return nil, ErrTokenExpired
	}
	if _, ok := domain.ParseRole(string(claims.Role)); !ok {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}
