package mentorauth

import (
	"context"
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/VaibhavDaveDev/mentorauth/jwt"
)

func TestValidateRejectsGarbage(t *testing.T) {
	engine := newTestEngine(t, newMockAccountProvider(), &mockMailer{})

	for _, tokenStr := range []string{"", "nonsense", "a.b.c"} {
		if _, err := engine.Validate(tokenStr); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", tokenStr, err)
		}
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Leeway = 0

	engine, err := New().
		WithConfig(cfg).
		WithAccountProvider(newMockAccountProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	token, err := engine.jwtManager.Issue(42, "asha@example.com", "mentee", time.Millisecond)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := engine.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")
	res, err := engine.Login(context.Background(), "asha@example.com", "pass1", "mentee")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	tampered := res.Token[:len(res.Token)-2] + "xx"
	if _, err := engine.Validate(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestValidateRejectsUnknownRoleClaim(t *testing.T) {
	engine := newTestEngine(t, newMockAccountProvider(), &mockMailer{})

	claims := jwt.SessionClaims{
		AccountID: 42,
		Role:      "wizard",
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "asha@example.com",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(testConfig().JWT.Secret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := engine.Validate(tokenStr); !errors.Is(err, ErrMalformedClaims) {
		t.Fatalf("expected ErrMalformedClaims for unknown role, got %v", err)
	}
}

func TestValidateCountsRejections(t *testing.T) {
	engine := newTestEngine(t, newMockAccountProvider(), &mockMailer{})

	_, _ = engine.Validate("nonsense")
	_, _ = engine.Validate("more-nonsense")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTokenRejected] != 2 {
		t.Fatalf("expected 2 rejections, got %d", snap.Counters[MetricTokenRejected])
	}
}
