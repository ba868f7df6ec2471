package cli

import "errors"

// Sentinel kinds for command-line errors.
var (
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoPanel        = errors.New("command not available here")
)
