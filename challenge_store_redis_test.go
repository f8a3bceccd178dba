package mentorauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/VaibhavDaveDev/mentorauth/internal"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisChallengeStoreConsumeSemantics(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisChallengeStore(rdb, "otp")

	right := internal.HashOTP("123456")
	wrong := internal.HashOTP("654321")

	if err := store.Consume(ctx, "a@example.com", right); !errors.Is(err, errChallengeNotFound) {
		t.Fatalf("expected errChallengeNotFound on empty store, got %v", err)
	}

	if err := store.Save(ctx, "a@example.com", right, time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mr.Exists("otp:a@example.com") {
		t.Fatal("expected challenge key in redis")
	}

	if err := store.Consume(ctx, "a@example.com", wrong); !errors.Is(err, errChallengeMismatch) {
		t.Fatalf("expected errChallengeMismatch, got %v", err)
	}
	if !mr.Exists("otp:a@example.com") {
		t.Fatal("mismatch must leave the record intact")
	}

	if err := store.Consume(ctx, "a@example.com", right); err != nil {
		t.Fatalf("expected match to consume, got %v", err)
	}
	if mr.Exists("otp:a@example.com") {
		t.Fatal("match must delete the record")
	}
}

func TestRedisChallengeStoreExpiryByRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	store := NewRedisChallengeStore(rdb, "otp")
	store.now = clock.now

	hash := internal.HashOTP("123456")
	if err := store.Save(ctx, "a@example.com", hash, clock.now().Add(5*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The record's own expiry fires before the redis TTL: miniredis time
	// does not move, so only the embedded timestamp can reject here.
	clock.advance(5*time.Minute + time.Second)

	if err := store.Consume(ctx, "a@example.com", hash); !errors.Is(err, errChallengeExpired) {
		t.Fatalf("expected errChallengeExpired, got %v", err)
	}
	if mr.Exists("otp:a@example.com") {
		t.Fatal("expiry detection must delete the record")
	}
}

func TestRedisChallengeStoreExpiryByTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisChallengeStore(rdb, "otp")

	hash := internal.HashOTP("123456")
	if err := store.Save(ctx, "a@example.com", hash, time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	if err := store.Consume(ctx, "a@example.com", hash); !errors.Is(err, errChallengeNotFound) {
		t.Fatalf("expected errChallengeNotFound after redis TTL reclaim, got %v", err)
	}
}

func TestRedisChallengeStoreSaveOverwrites(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := NewRedisChallengeStore(rdb, "otp")

	first := internal.HashOTP("111111")
	second := internal.HashOTP("222222")
	expires := time.Now().Add(5 * time.Minute)

	if err := store.Save(ctx, "a@example.com", first, expires); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "a@example.com", second, expires); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if err := store.Consume(ctx, "a@example.com", first); !errors.Is(err, errChallengeMismatch) {
		t.Fatalf("expected old code rejected after overwrite, got %v", err)
	}
	if err := store.Consume(ctx, "a@example.com", second); err != nil {
		t.Fatalf("expected new code to consume, got %v", err)
	}
}

func TestRedisChallengeStoreRejectsPastExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := NewRedisChallengeStore(rdb, "otp")
	err := store.Save(context.Background(), "a@example.com", internal.HashOTP("123456"), time.Now().Add(-time.Minute))
	if !errors.Is(err, errChallengeUnavailable) {
		t.Fatalf("expected errChallengeUnavailable for past expiry, got %v", err)
	}
}

func TestRedisChallengeStoreUnavailableBackend(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, "otp")

	if err := store.Save(context.Background(), "a@example.com", internal.HashOTP("123456"), time.Now().Add(5*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.Close()

	err := store.Consume(context.Background(), "a@example.com", internal.HashOTP("123456"))
	if !errors.Is(err, errChallengeUnavailable) {
		t.Fatalf("expected errChallengeUnavailable, got %v", err)
	}
}

func TestRedisChallengeStoreCorruptRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := NewRedisChallengeStore(rdb, "otp")
	if err := mr.Set("otp:a@example.com", "not-a-record"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	err := store.Consume(context.Background(), "a@example.com", internal.HashOTP("123456"))
	if !errors.Is(err, errChallengeUnavailable) {
		t.Fatalf("expected errChallengeUnavailable for corrupt record, got %v", err)
	}
}

func TestEngineWithRedisChallengeStore(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	up := newMockAccountProvider()
	mailer := &mockMailer{}
	engine, err := New().
		WithConfig(testConfig()).
		WithAccountProvider(up).
		WithMailer(mailer).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	mustRegister(t, engine, "Asha", "asha@example.com", "pass1", "mentee")

	if err := engine.IssueOTP(context.Background(), "asha@example.com"); err != nil {
		t.Fatalf("IssueOTP failed: %v", err)
	}
	if err := engine.VerifyOTP(context.Background(), "asha@example.com", mailer.lastCode); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if err := engine.VerifyOTP(context.Background(), "asha@example.com", mailer.lastCode); !errors.Is(err, ErrNoChallenge) {
		t.Fatalf("expected ErrNoChallenge on replay, got %v", err)
	}
}
