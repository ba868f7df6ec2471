package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/nodo/internal/domain/model"
)

// Date layouts: what the form accepts and what goes on the wire.
const (
	dateInputLayout = "2006-01-02"
	isoTimestamp    = "2006-01-02T15:04:05.000Z07:00"
)

// optionalMoney converts a text field; blank means omitted, never zero.
func optionalMoney(field, s string) (*model.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	m, err := model.ParseMoney(s)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field, s)
	}
	return &m, nil
}

// optionalInt converts a whole-number text field; blank means omitted.
func optionalInt(field, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field, s)
	}
	return &n, nil
}

// deadlineTimestamp turns a date-only input into midnight UTC as an ISO-8601
// timestamp with millisecond precision; blank means omitted.
func deadlineTimestamp(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, err := time.ParseInLocation(dateInputLayout, s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("%w: %q, want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return d.UTC().Format(isoTimestamp), nil
}

// optionalCategory resolves a category field. Blank returns "" so callers
// pick their own default.
func optionalCategory(s string) (model.Category, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	c, ok := model.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
