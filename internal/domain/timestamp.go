package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the persisted timestamp format. Fixed millisecond width keeps
// lexical order equal to chronological order inside the document store.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a UTC instant serialized with TimestampLayout.
type Timestamp struct {
	time.Time
}

// Now returns the current instant truncated to milliseconds.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// NewTimestamp converts t to a UTC millisecond timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// NowPtr returns a pointer to Now, for optional audit fields.
func NowPtr() *Timestamp {
	ts := Now()
	return &ts
}

// String formats the timestamp with TimestampLayout.
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Any RFC 3339 value is accepted.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = NewTimestamp(parsed)
	return nil
}
