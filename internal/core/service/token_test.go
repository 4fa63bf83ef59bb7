package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// PasswordHasher
// ---------------------------------------------------------------------------

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "s3cret-pass" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !h.Verify("s3cret-pass", digest) {
		t.Error("expected matching password to verify")
	}
	if h.Verify("wrong-pass", digest) {
		t.Error("expected wrong password to be rejected")
	}
}

func TestPasswordHasher_SaltedDigests(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-input")
	b, _ := h.Hash("same-input")
	if a == b {
		t.Error("hashing the same input twice must yield distinct digests")
	}
	if !h.Verify("same-input", a) || !h.Verify("same-input", b) {
		t.Error("both digests must verify")
	}
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("anything", "not-a-bcrypt-digest") {
		t.Error("malformed digest must be a mismatch")
	}
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	if got := NewPasswordHasher(99).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost=99: expected default %d, got %d", bcrypt.DefaultCost, got)
	}
	if got := NewPasswordHasher(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost=0: expected default %d, got %d", bcrypt.DefaultCost, got)
	}
}

// ---------------------------------------------------------------------------
// TokenService
// ---------------------------------------------------------------------------

const testSecret = "test-secret-key"

func TestTokenService_IssueVerify(t *testing.T) {
	clock := newFakeClock()
	svc := NewTokenService(testSecret, 30*time.Minute, clock)

	tok, err := svc.Issue("a@x.io", domain.RoleUser, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "a@x.io" {
		t.Errorf("subject: want a@x.io, got %q", claims.Subject)
	}
	if claims.Role != domain.RoleUser {
		t.Errorf("role: want USER, got %q", claims.Role)
	}
	if !claims.Expiry().Equal(clock.Now().Add(30 * time.Minute)) {
		t.Errorf("expiry: want %v, got %v", clock.Now().Add(30*time.Minute), claims.Expiry())
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	clock.Advance(700 * time.Millisecond)
	svc := NewTokenService(testSecret, time.Minute, clock)

	tok, err := svc.Issue("a@x.io", domain.RoleUser, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.Advance(time.Minute - time.Nanosecond)
	if _, err := svc.Verify(tok); err != nil {
		t.Fatalf("token must be valid just before expiry, got %v", err)
	}

	clock.Advance(2 * time.Nanosecond)
	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired just after expiry, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Error("ErrTokenExpired must satisfy ErrInvalidToken")
	}
}

func TestTokenService_SubSecondIssueKeepsFullTTL(t *testing.T) {
	clock := newFakeClock()
	clock.Advance(700 * time.Millisecond)
	svc := NewTokenService(testSecret, time.Minute, clock)

	tok, err := svc.Issue("a@x.io", domain.RoleUser, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.Advance(time.Minute - 100*time.Millisecond)
	if _, err := svc.Verify(tok); err != nil {
		t.Fatalf("token issued at .7s must still verify 100ms before its TTL ends, got %v", err)
	}

	clock.Advance(200 * time.Millisecond)
	if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired 100ms after the TTL, got %v", err)
	}
}

func TestTokenService_MissingExactExpiry(t *testing.T) {
	clock := newFakeClock()
	svc := NewTokenService(testSecret, time.Minute, clock)

	claims := jwt.RegisteredClaims{Subject: "a@x.io", ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed without exp_ns, got %v", err)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	clock := newFakeClock()
	issuer := NewTokenService("key-one", 0, clock)
	verifier := NewTokenService("key-two", 0, clock)

	tok, _ := issuer.Issue("a@x.io", domain.RoleAdmin, 0)
	if _, err := verifier.Verify(tok); !errors.Is(err, ErrTokenSignature) {
		t.Errorf("expected ErrTokenSignature for foreign key, got %v", err)
	}
}

func TestTokenService_TamperedPayload(t *testing.T) {
	clock := newFakeClock()
	svc := NewTokenService(testSecret, 0, clock)

	tok, _ := svc.Issue("a@x.io", domain.RoleUser, 0)
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	payload["role"] = "ADMIN"
	forged, _ := json.Marshal(payload)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	if _, err := svc.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrTokenSignature) {
		t.Errorf("expected ErrTokenSignature for tampered payload, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService(testSecret, 0, newFakeClock())

	for _, tok := range []string{"", "   ", "abc", "a.b", "a.b.c"} {
		_, err := svc.Verify(tok)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
	if _, err := svc.Verify("not-a-jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_EmptySubject(t *testing.T) {
	svc := NewTokenService(testSecret, 0, newFakeClock())
	if _, err := svc.Issue("", domain.RoleUser, 0); err == nil {
		t.Error("expected error issuing a token without subject")
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService(testSecret, 0, newFakeClock())
	if svc.TTL() != 30*time.Minute {
		t.Errorf("expected default TTL 30m, got %v", svc.TTL())
	}
}
