package mentorauth

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/VaibhavDaveDev/mentorauth/internal"
)

// IssueOTP describes the issue-otp operation and its observable behavior.
//
// IssueOTP generates a fresh numeric verification code for the given account,
// stores its hash in the challenge store, and hands the plaintext code to the
// configured mailer. Issuing a new code replaces any previously stored one.
//
// If delivery fails the stored challenge is NOT rolled back: the code was
// generated and may still arrive through a retrying transport, so the caller
// gets ErrOTPDeliveryFailed and the challenge stays verifiable until its TTL.
//
// IssueOTP may return an error when input validation, dependency calls, or security checks fail.
// IssueOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueOTP(ctx context.Context, email string) error {
	return e.issueOTP(ctx, email, auditEventOTPIssued)
}

// ReissueOTP describes the reissue-otp operation and its observable behavior.
//
// ReissueOTP is IssueOTP under a distinct audit event type, for callers that
// expose an explicit "resend code" action. The previously stored code stops
// verifying as soon as the new one is saved.
//
// ReissueOTP may return an error when input validation, dependency calls, or security checks fail.
// ReissueOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ReissueOTP(ctx context.Context, email string) error {
	return e.issueOTP(ctx, email, auditEventOTPReissued)
}

func (e *Engine) issueOTP(ctx context.Context, email string, eventType string) error {
	if e == nil || e.accounts == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	if e.mailer == nil {
		return ErrEngineNotReady
	}

	acct, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return ErrUserNotFound
		}
		log.Print("mentorauth: account lookup failed")
		return ErrInternal
	}

	code, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		log.Print("mentorauth: otp generation failed")
		return ErrInternal
	}

	expiresAt := e.now().Add(e.config.OTP.ChallengeTTL)
	if err := e.challenges.Save(ctx, acct.Email, internal.HashOTP(code), expiresAt); err != nil {
		log.Print("mentorauth: otp challenge save failed")
		return ErrInternal
	}

	if err := e.mailer.Deliver(ctx, acct.Email, code); err != nil {
		e.metricInc(MetricOTPDeliveryFailed)
		e.emitAudit(ctx, auditEventOTPDeliveryFailed, false, acct.ID, acct.Email, ErrOTPDeliveryFailed, func() map[string]string {
			return map[string]string{
				"digits": strconv.Itoa(e.config.OTP.Digits),
			}
		})
		return ErrOTPDeliveryFailed
	}

	e.metricInc(MetricOTPIssued)
	e.emitAudit(ctx, eventType, true, acct.ID, acct.Email, nil, func() map[string]string {
		return map[string]string{
			"digits": strconv.Itoa(e.config.OTP.Digits),
		}
	})
	return nil
}

// VerifyOTP describes the verify-otp operation and its observable behavior.
//
// VerifyOTP consumes the stored challenge for the given email. A correct code
// verifies exactly once: the challenge is deleted on success, and a repeated
// call reports ErrNoChallenge. A wrong code leaves the challenge intact so
// the account holder can retry with the real one. A code presented after the
// challenge TTL reports ErrOTPExpired and removes the stale record.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) error {
	if e == nil || e.challenges == nil {
		return ErrEngineNotReady
	}
	if !internal.IsNumeric(code) {
		e.metricInc(MetricOTPMismatch)
		e.emitAudit(ctx, auditEventOTPRejected, false, 0, email, ErrOTPMismatch, func() map[string]string {
			return map[string]string{
				"reason": "non_numeric_code",
			}
		})
		return ErrOTPMismatch
	}

	err := e.challenges.Consume(ctx, email, internal.HashOTP(code))
	if err != nil {
		mapped, metric, reason := mapChallengeStoreError(err)
		if errors.Is(mapped, ErrInternal) {
			log.Print("mentorauth: otp challenge backend unavailable")
		}
		e.metricInc(metric)
		e.emitAudit(ctx, auditEventOTPRejected, false, 0, email, mapped, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
		return mapped
	}

	e.metricInc(MetricOTPVerified)
	e.emitAudit(ctx, auditEventOTPVerified, true, 0, email, nil, nil)
	return nil
}

// mapChallengeStoreError translates challenge store sentinels into the
// engine's public error surface together with the metric and audit reason
// recorded for the rejection.
func mapChallengeStoreError(err error) (error, MetricID, string) {
	switch {
	case errors.Is(err, errChallengeNotFound):
		return ErrNoChallenge, MetricOTPMissing, "no_challenge"
	case errors.Is(err, errChallengeExpired):
		return ErrOTPExpired, MetricOTPExpired, "expired"
	case errors.Is(err, errChallengeMismatch):
		return ErrOTPMismatch, MetricOTPMismatch, "code_mismatch"
	default:
		return ErrInternal, MetricOTPMismatch, "backend_unavailable"
	}
}
