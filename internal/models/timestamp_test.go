package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339", "2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"Offset", "2025-01-02T03:04:05+02:00", time.Date(2025, 1, 2, 1, 4, 5, 0, time.UTC)},
		{"Naive", "2025-01-02T03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"NaiveFraction", "2025-01-02T03:04:05.250000", time.Date(2025, 1, 2, 3, 4, 5, 250000000, time.UTC)},
		{"Space", "2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"DateOnly", "2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want raw %q", got.String(), tt.input)
			}
		})
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var entry LogEntry
	if err := json.Unmarshal([]byte(`{"id":1,"timestamp":null,"message":"m"}`), &entry); err != nil {
		t.Fatalf("null timestamp: %v", err)
	}
	if !entry.Timestamp.IsZero() {
		t.Error("null timestamp should be zero")
	}

	if err := json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &entry); err != nil {
		t.Fatalf("unparseable timestamp should not fail decoding: %v", err)
	}
	if entry.Timestamp.String() != "yesterday" {
		t.Errorf("raw text lost: %q", entry.Timestamp.String())
	}

	if err := json.Unmarshal([]byte(`{"timestamp":12}`), &entry); err == nil {
		t.Error("numeric timestamp should fail")
	}
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2025-01-02T03:04:05Z"` {
		t.Errorf("Marshal = %s", data)
	}

	data, _ = json.Marshal(Timestamp{})
	if string(data) != "null" {
		t.Errorf("zero Marshal = %s", data)
	}
}

func TestTimestamp_Display(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got, want := NewTimestamp(at).Display(), at.Local().Format(DisplayLayout); got != want {
		t.Errorf("Display = %q, want %q", got, want)
	}

	raw, _ := ParseTimestamp("soon")
	if raw.Display() != "soon" {
		t.Errorf("raw Display = %q", raw.Display())
	}
	if (Timestamp{}).Display() != "" {
		t.Error("zero Display should be empty")
	}
}
