package mentorauth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegisterSuccess(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	res := mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")
	if res.AccountID == 0 {
		t.Fatal("expected assigned account id")
	}
	if res.Role != RoleMentee {
		t.Fatalf("expected role mentee, got %q", res.Role)
	}

	stored, err := up.FindByEmail(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatalf("stored account lookup failed: %v", err)
	}
	if stored.PasswordHash == "pass1" {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id digest, got %q", stored.PasswordHash)
	}
}

func TestRegisterNormalizesRole(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	res := mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "  MENTOR ")
	if res.Role != RoleMentor {
		t.Fatalf("expected normalized role mentor, got %q", res.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		wantField string
	}{
		{
			name:      "name too short",
			req:       RegisterRequest{Name: "A", Email: "a@example.com", Password: "pass1", Role: "mentee"},
			wantField: "name",
		},
		{
			name:      "email missing at",
			req:       RegisterRequest{Name: "Asha", Email: "asha.example.com", Password: "pass1", Role: "mentee"},
			wantField: "email",
		},
		{
			name:      "email missing domain dot",
			req:       RegisterRequest{Name: "Asha", Email: "asha@example", Password: "pass1", Role: "mentee"},
			wantField: "email",
		},
		{
			name:      "password too short",
			req:       RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "pass", Role: "mentee"},
			wantField: "password",
		},
		{
			name:      "unknown role",
			req:       RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "pass1", Role: "wizard"},
			wantField: "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newMockAccountProvider()
			engine := newTestEngine(t, up, &mockMailer{})

			_, err := engine.Register(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected *FieldError, got %T", err)
			}
			if fieldErr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, fieldErr.Field)
			}
			if up.insertCalls != 0 {
				t.Fatal("expected no insert on validation failure")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")

	_, err := engine.Register(context.Background(), RegisterRequest{
		Name:     "Asha Again",
		Email:    "asha@example.com",
		Password: "other1",
		Role:     "mentor",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if up.size() != 1 {
		t.Fatalf("expected store unchanged, got %d accounts", up.size())
	}
}

func TestRegisterDuplicateRaceOnInsert(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	// Pre-seed behind the exists check so Insert itself reports the
	// duplicate, as a concurrent registration would.
	mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")
	up.insertErr = ErrProviderDuplicateEmail

	_, err := engine.Register(context.Background(), RegisterRequest{
		Name:     "Bela",
		Email:    "bela@example.com",
		Password: "pass1",
		Role:     "mentor",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from insert race, got %v", err)
	}
}

func TestRegisterProviderFailure(t *testing.T) {
	up := newMockAccountProvider()
	up.existsErr = errors.New("connection reset")
	engine := newTestEngine(t, up, &mockMailer{})

	_, err := engine.Register(context.Background(), RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "pass1",
		Role:     "mentee",
	})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestRegisterDoesNotIssueToken(t *testing.T) {
	up := newMockAccountProvider()
	engine := newTestEngine(t, up, &mockMailer{})

	mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTokenIssued] != 0 {
		t.Fatalf("expected 0 tokens issued by registration, got %d", snap.Counters[MetricTokenIssued])
	}
}
