package mentorauth

import (
	"errors"
	"time"

	"github.com/VaibhavDaveDev/mentorauth/jwt"
	"github.com/VaibhavDaveDev/mentorauth/password"
)

// Engine defines a public type used by mentorauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	accounts     AccountProvider
	mailer       Mailer
	challenges   ChallengeStore
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	audit        *auditDispatcher
	metrics      *Metrics
	now          func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close drains and stops the audit dispatcher; the Engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Validate verifies a session token's signature and expiry and returns its
// decoded claims. It is pure computation against the static secret: no
// store access, no lock, safe on the hot path.
//
// Failures map to [ErrTokenExpired], [ErrMalformedClaims] (missing required
// claims), or [ErrTokenInvalid] (any structural or signature failure).
func (e *Engine) Validate(tokenStr string) (*TokenClaims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Parse(tokenStr)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrMalformedClaims):
			return nil, ErrMalformedClaims
		default:
			return nil, ErrTokenInvalid
		}
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		return nil, ErrMalformedClaims
	}

	return &TokenClaims{
		AccountID: claims.AccountID,
		Email:     claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
