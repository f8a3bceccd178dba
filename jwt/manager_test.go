package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()

	if cfg.Secret == nil {
		cfg.Secret = testSecret
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 20 * time.Minute
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{AccessTTL: time.Minute}); err == nil {
		t.Fatal("expected rejection without secret")
	}
	if _, err := NewManager(Config{Secret: testSecret}); err == nil {
		t.Fatal("expected rejection without TTL")
	}
	if _, err := NewManager(Config{Secret: testSecret, AccessTTL: time.Minute, Leeway: 10 * time.Minute}); err == nil {
		t.Fatal("expected rejection for excessive leeway")
	}
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t, Config{Issuer: "mentorauth"})

	token, err := m.Issue(42, "asha@example.com", "mentee", 20*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.AccountID != 42 {
		t.Fatalf("expected account id 42, got %d", claims.AccountID)
	}
	if claims.Subject != "asha@example.com" {
		t.Fatalf("expected subject asha@example.com, got %q", claims.Subject)
	}
	if claims.Role != "mentee" {
		t.Fatalf("expected role mentee, got %q", claims.Role)
	}
	if claims.Issuer != "mentorauth" {
		t.Fatalf("expected issuer mentorauth, got %q", claims.Issuer)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 19*time.Minute || remaining > 20*time.Minute {
		t.Fatalf("unexpected expiry window: %v remaining", remaining)
	}
}

func TestParseExpiredToken(t *testing.T) {
	m := newTestManager(t, Config{})

	token, err := m.Issue(42, "asha@example.com", "mentee", time.Millisecond)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := m.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseLeewayToleratesRecentExpiry(t *testing.T) {
	m := newTestManager(t, Config{Leeway: 30 * time.Second})

	token, err := m.Issue(42, "asha@example.com", "mentee", time.Millisecond)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := m.Parse(token); err != nil {
		t.Fatalf("expected leeway to tolerate recent expiry, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	issuer := newTestManager(t, Config{})
	verifier := newTestManager(t, Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})

	token, err := issuer.Issue(42, "asha@example.com", "mentee", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	m := newTestManager(t, Config{})

	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Parse(tokenStr); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", tokenStr, err)
		}
	}
}

func TestParseRejectsAlgNone(t *testing.T) {
	m := newTestManager(t, Config{})

	claims := SessionClaims{
		AccountID: 42,
		Role:      "mentee",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "asha@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token failed: %v", err)
	}

	if _, err := m.Parse(tokenStr); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestParseRejectsMissingClaims(t *testing.T) {
	m := newTestManager(t, Config{})

	tests := []struct {
		name   string
		claims SessionClaims
	}{
		{
			name: "missing subject",
			claims: SessionClaims{
				AccountID: 42,
				Role:      "mentee",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			},
		},
		{
			name: "missing account id",
			claims: SessionClaims{
				Role: "mentee",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "asha@example.com",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			},
		},
		{
			name: "missing role",
			claims: SessionClaims{
				AccountID: 42,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "asha@example.com",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims)
			tokenStr, err := token.SignedString(testSecret)
			if err != nil {
				t.Fatalf("signing failed: %v", err)
			}

			if _, err := m.Parse(tokenStr); !errors.Is(err, ErrMalformedClaims) {
				t.Fatalf("expected ErrMalformedClaims, got %v", err)
			}
		})
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	m := newTestManager(t, Config{})

	claims := SessionClaims{
		AccountID: 42,
		Role:      "mentee",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "asha@example.com",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := m.Parse(tokenStr); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without exp claim, got %v", err)
	}
}
