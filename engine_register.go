package mentorauth

import (
	"context"
	"errors"
	"log"
)

// Register describes the register operation and its observable behavior.
//
// Register validates the request once at this boundary (name and password
// length, email shape, role membership), rejects duplicate emails, hashes
// the password, and inserts the account. Registration does not auto-login:
// the caller gets a confirmation, never a token.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.accounts == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	role, err := e.validateRegisterRequest(req)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, 0, req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "validation",
			}
		})
		return nil, err
	}

	exists, err := e.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		log.Print("mentorauth: duplicate email check failed")
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, 0, req.Email, ErrInternal, func() map[string]string {
			return map[string]string{
				"reason": "provider_exists_failed",
			}
		})
		return nil, ErrInternal
	}
	if exists {
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, 0, req.Email, ErrDuplicateEmail, nil)
		return nil, ErrDuplicateEmail
	}

	// Hashing is CPU-bound; it happens before any shared state is touched.
	passwordHash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, 0, req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "hash_failed",
			}
		})
		return nil, ErrInternal
	}

	created, err := e.accounts.Insert(ctx, CreateAccountInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		// The exists check above races with concurrent registrations; the
		// provider's uniqueness guarantee is authoritative.
		if errors.Is(err, ErrProviderDuplicateEmail) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, 0, req.Email, ErrDuplicateEmail, nil)
			return nil, ErrDuplicateEmail
		}
		log.Print("mentorauth: account insert failed")
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, 0, req.Email, ErrInternal, func() map[string]string {
			return map[string]string{
				"reason": "provider_insert_failed",
			}
		})
		return nil, ErrInternal
	}

	req.Password = ""
	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, created.ID, created.Email, nil, func() map[string]string {
		return map[string]string{
			"role": string(role),
		}
	})

	return &RegisterResult{
		AccountID: created.ID,
		Role:      created.Role,
	}, nil
}
