package mentorauth

import (
	"context"
	"errors"
	"log"
)

// Login describes the login operation and its observable behavior.
//
// Login authenticates email+password against the account provider and, when
// the stored role matches the claimed role, mints a session token. Unknown
// email, bad password, and role mismatch are distinct outcomes: callers
// should be aware this distinguishability enables account enumeration and
// harden at their boundary if that matters for their deployment.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, plaintext, claimedRole string) (*LoginResult, error) {
	if e == nil || e.accounts == nil || e.passwordHash == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	attempted, err := ParseRole(claimedRole)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, 0, email, err, func() map[string]string {
			return map[string]string{
				"reason": "invalid_role",
			}
		})
		return nil, err
	}
	if plaintext == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, 0, email, ErrBadCredentials, func() map[string]string {
			return map[string]string{
				"reason": "empty_password",
			}
		})
		return nil, ErrBadCredentials
	}

	acct, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, 0, email, ErrUserNotFound, func() map[string]string {
				return map[string]string{
					"reason": "user_not_found",
				}
			})
			return nil, ErrUserNotFound
		}
		log.Print("mentorauth: account lookup failed")
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, 0, email, ErrInternal, func() map[string]string {
			return map[string]string{
				"reason": "provider_lookup_failed",
			}
		})
		return nil, ErrInternal
	}

	// CPU-bound verification; no engine lock is held here.
	ok, err := e.passwordHash.Verify(plaintext, acct.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, email, ErrBadCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrBadCredentials
	}
	plaintext = ""

	if acct.Role != attempted {
		mismatch := &RoleMismatchError{Actual: acct.Role, Attempted: attempted}
		e.metricInc(MetricLoginRoleMismatch)
		e.emitAudit(ctx, auditEventLoginRoleMismatch, false, acct.ID, email, mismatch, func() map[string]string {
			return map[string]string{
				"actual_role":    string(acct.Role),
				"attempted_role": string(attempted),
			}
		})
		return nil, mismatch
	}

	token, err := e.jwtManager.Issue(acct.ID, acct.Email, string(acct.Role), e.config.JWT.AccessTTL)
	if err != nil {
		log.Print("mentorauth: token issuance failed")
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, email, ErrInternal, func() map[string]string {
			return map[string]string{
				"reason": "issue_token_failed",
			}
		})
		return nil, ErrInternal
	}

	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, acct.ID, email, nil, func() map[string]string {
		return map[string]string{
			"role": string(acct.Role),
		}
	})

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		Account: AccountSummary{
			ID:    acct.ID,
			Name:  acct.Name,
			Email: acct.Email,
			Role:  acct.Role,
		},
	}, nil
}
