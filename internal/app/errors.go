package app

import "errors"

// Sentinel errors for controller-side validation. They end up as the view's
// message like any backend failure.
var (
	ErrInvalidTransition     = errors.New("invalid auth transition")
	ErrNotAuthenticated      = errors.New("not logged in")
	ErrNoOpportunitySelected = errors.New("no opportunity selected")
	ErrInvalidNumber         = errors.New("invalid number")
	ErrInvalidDate           = errors.New("invalid date")
	ErrUnknownCategory       = errors.New("unknown category")
	ErrUnsupportedStatus     = errors.New("unsupported proposal status")
	ErrMissingToken          = errors.New("login response carried no token")
)
