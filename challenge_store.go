package mentorauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"
)

var (
	errChallengeNotFound    = errors.New("otp challenge not found")
	errChallengeExpired     = errors.New("otp challenge expired")
	errChallengeMismatch    = errors.New("otp challenge code mismatch")
	errChallengeUnavailable = errors.New("otp challenge backend unavailable")
)

// ChallengeStore holds at most one live OTP challenge per email. Save
// overwrites any prior unconsumed challenge for that email; Consume performs
// the atomic expiry-check/match/delete sequence:
//
//   - no record           -> errChallengeNotFound
//   - past expiry         -> record deleted, errChallengeExpired
//   - code hash mismatch  -> record left intact, errChallengeMismatch
//   - match               -> record deleted, nil (single use)
//
// Expiry is checked lazily inside Consume; no implementation may rely on a
// background sweep for correctness.
type ChallengeStore interface {
	Save(ctx context.Context, email string, codeHash [32]byte, expiresAt time.Time) error
	Consume(ctx context.Context, email string, providedHash [32]byte) error
}

type challengeRecord struct {
	codeHash  [32]byte
	expiresAt int64
}

// MemoryChallengeStore is the default process-local [ChallengeStore]: a
// mutex-guarded map keyed by email. State is volatile — lost on restart and
// not shared across server instances.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]challengeRecord
	now     func() time.Time
}

// NewMemoryChallengeStore describes the newmemorychallengestore operation and its observable behavior.
//
// NewMemoryChallengeStore may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		entries: make(map[string]challengeRecord),
		now:     time.Now,
	}
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryChallengeStore) Save(_ context.Context, email string, codeHash [32]byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = challengeRecord{
		codeHash:  codeHash,
		expiresAt: expiresAt.Unix(),
	}
	return nil
}

// Consume describes the consume operation and its observable behavior.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryChallengeStore) Consume(_ context.Context, email string, providedHash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[email]
	if !ok {
		return errChallengeNotFound
	}
	if s.now().Unix() > rec.expiresAt {
		delete(s.entries, email)
		return errChallengeExpired
	}
	if subtle.ConstantTimeCompare(rec.codeHash[:], providedHash[:]) != 1 {
		// Repeated attempts stay allowed: the record survives a mismatch.
		return errChallengeMismatch
	}

	delete(s.entries, email)
	return nil
}

// Sweep removes every expired record and reports how many were dropped.
// It is hygiene only: correctness never depends on it, because Consume
// checks expiry itself.
func (s *MemoryChallengeStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Unix()
	removed := 0
	for email, rec := range s.entries {
		if cutoff > rec.expiresAt {
			delete(s.entries, email)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored challenges, expired or not.
func (s *MemoryChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
