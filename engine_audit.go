package mentorauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterFailure   = "register_failure"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventLoginRoleMismatch = "login_role_mismatch"
	auditEventOTPIssued         = "otp_issued"
	auditEventOTPReissued       = "otp_reissued"
	auditEventOTPDeliveryFailed = "otp_delivery_failed"
	auditEventOTPVerified       = "otp_verified"
	auditEventOTPRejected       = "otp_rejected"
)

// emitAudit builds and dispatches one audit event. metadataFn is lazy so
// callers pay for map construction only when auditing is enabled.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID int64,
	email string,
	flowErr error,
	metadataFn func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if flowErr != nil {
		event.Error = flowErr.Error()
	}
	if metadataFn != nil {
		event.Metadata = metadataFn()
	}

	e.audit.Emit(ctx, event)
}
