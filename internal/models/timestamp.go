package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order. The API emits isoformat() values that
// may lack a zone; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that accepts the formats the API produces.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp wraps a time value.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, raw: s}, nil
		}
	}
	return Timestamp{raw: s}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts a JSON string or null. Unparseable strings keep their
// raw text so they can still be displayed.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{raw: s}
		return nil
	}
	*t = parsed
	return nil
}

// MarshalJSON writes the timestamp as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		if t.raw != "" {
			return json.Marshal(t.raw)
		}
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// String returns the raw API text when present, otherwise RFC 3339.
func (t Timestamp) String() string {
	if t.raw != "" {
		return t.raw
	}
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Display renders the timestamp in local time for tables. Unparsed values
// fall back to their raw text.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return t.raw
	}
	return t.Local().Format(DisplayLayout)
}

// DisplayLayout is the layout used by Display.
const DisplayLayout = "2006-01-02 15:04:05"
