package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Timestamp is a server-provided point in time. Decoding never fails: zoned
// RFC 3339 and zone-less ISO-8601 forms are parsed (zone-less as UTC), and
// anything else is kept verbatim in Raw with a zero Time.
type Timestamp struct {
	time.Time
	Raw string
}

// timestampLayouts are tried in order. A fractional second after the seconds
// field is accepted by time.Parse even when the layout omits it.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// ParseTimestamp parses s with the lenient layouts. ok is false when only
// the raw text could be kept.
func ParseTimestamp(s string) (ts Timestamp, ok bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}, true
		}
	}
	return Timestamp{Raw: s}, false
}

// Valid reports whether the value was understood as a time.
func (t Timestamp) Valid() bool { return !t.Time.IsZero() }

// Format renders the time with layout, or the raw text when it never parsed.
func (t Timestamp) Format(layout string) string {
	if !t.Valid() {
		return t.Raw
	}
	return t.Time.Format(layout)
}

// MarshalJSON echoes the text the server sent, or RFC 3339 for values built
// locally.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts any JSON value; non-strings are kept as raw text.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = Timestamp{Raw: string(b)}
		return nil
	}
	*t, _ = ParseTimestamp(s)
	return nil
}
