package mentorauth

import "regexp"

// Email shape check mirrors the registration boundary: one local part, one
// @, one dotted domain. Deliverability is not this core's concern.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

func (e *Engine) validateRegisterRequest(req RegisterRequest) (Role, error) {
	if len(req.Name) < e.config.Validation.MinNameLength {
		return "", &FieldError{Field: "name", Reason: "too short"}
	}
	if !emailPattern.MatchString(req.Email) {
		return "", &FieldError{Field: "email", Reason: "invalid format"}
	}
	if len(req.Password) < e.config.Validation.MinPasswordLength {
		return "", &FieldError{Field: "password", Reason: "too short"}
	}
	return ParseRole(req.Role)
}
