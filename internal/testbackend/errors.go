package testbackend

import "errors"

// Sentinel kinds for stub backend failures. Handlers map them to statuses;
// the capitalized texts are the response details clients display.
var (
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("Email already registered")
	ErrInvalidCode       = errors.New("Invalid verification code")
	ErrInvalidLogin      = errors.New("Invalid credentials")
	ErrNotVerified       = errors.New("Email not verified")
	ErrForbidden         = errors.New("Not allowed for this role")
	ErrUnauthorized      = errors.New("Not authenticated")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateProposal = errors.New("Proposal already submitted")
)
