package mentorauth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengeRecordVersionV1 = 1

// RedisChallengeStore is a [ChallengeStore] backed by Redis, for deployments
// where OTP state must survive restarts or be shared across server
// instances. Records carry their own expiry and also get a Redis TTL, so an
// abandoned challenge is reclaimed by Redis even without a Consume call.
type RedisChallengeStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisChallengeStore describes the newredischallengestore operation and its observable behavior.
//
// NewRedisChallengeStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisChallengeStore(client redis.UniversalClient, prefix string) *RedisChallengeStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &RedisChallengeStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisChallengeStore) key(email string) string {
	return s.prefix + ":" + email
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisChallengeStore) Save(ctx context.Context, email string, codeHash [32]byte, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: expiry not in the future", errChallengeUnavailable)
	}

	encoded := encodeChallengeRecord(codeHash, expiresAt.Unix())
	if err := s.redis.Set(ctx, s.key(email), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errChallengeUnavailable, err)
	}
	return nil
}

// Consume describes the consume operation and its observable behavior.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisChallengeStore) Consume(ctx context.Context, email string, providedHash [32]byte) error {
	const maxRetries = 4
	key := s.key(email)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			codeHash, expiresAt, err := decodeChallengeRecord(data)
			if err != nil {
				return err
			}

			if s.now().Unix() > expiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errChallengeExpired
			}

			if subtle.ConstantTimeCompare(codeHash[:], providedHash[:]) != 1 {
				return errChallengeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.Nil):
			return errChallengeNotFound
		case errors.Is(err, errChallengeExpired), errors.Is(err, errChallengeMismatch):
			return err
		default:
			return fmt.Errorf("%w: %v", errChallengeUnavailable, err)
		}
	}

	return errChallengeNotFound
}

func encodeChallengeRecord(codeHash [32]byte, expiresAt int64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(challengeRecordVersionV1)
	_ = binary.Write(&buf, binary.BigEndian, expiresAt)
	buf.Write(codeHash[:])
	return buf.Bytes()
}

func decodeChallengeRecord(data []byte) ([32]byte, int64, error) {
	var codeHash [32]byte

	reader := bytes.NewReader(data)
	version, err := reader.ReadByte()
	if err != nil {
		return codeHash, 0, err
	}
	if version != challengeRecordVersionV1 {
		return codeHash, 0, errors.New("invalid challenge record version")
	}

	var expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return codeHash, 0, err
	}
	if _, err := io.ReadFull(reader, codeHash[:]); err != nil {
		return codeHash, 0, err
	}

	return codeHash, expiresAt, nil
}
