package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Wire formats. Timestamps travel timezone-naive; their meaning comes from the
// zone declared by whoever reads them.
const (
	LocalLayout = "2006-01-02T15:04:05"
	DateLayout  = "2006-01-02"
)

var naiveLayouts = []string{
	LocalLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LocalTime is a timestamp serialised as YYYY-MM-DDTHH:mm:ss.
//
// Values decoded from a naive string remember that they only describe a wall
// clock; In re-anchors them in a zone without shifting the clock reading.
type LocalTime struct {
	time.Time
	naive bool
}

// NewLocalTime wraps an absolute instant.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// In returns the timestamp anchored in loc. Naive wall-clock values keep
// their reading, absolute instants are converted.
func (t LocalTime) In(loc *time.Location) LocalTime {
	if t.Time.IsZero() || loc == nil {
		return t
	}
	if t.naive {
		return LocalTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)}
	}
	return LocalTime{Time: t.Time.In(loc)}
}

// String formats the timestamp in wire form.
func (t LocalTime) String() string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Format(LocalLayout)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(LocalLayout))
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = LocalTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseLocalTime parses a naive or RFC 3339 timestamp without anchoring it.
func ParseLocalTime(s string) (LocalTime, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return LocalTime{Time: ts}, nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return LocalTime{Time: ts, naive: true}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("invalid timestamp %q: want %s", s, LocalLayout)
}

// ParseTimestamp parses s and anchors it in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	lt, err := ParseLocalTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return lt.In(loc).Time, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want %s", s, DateLayout)
	}
	return d, nil
}

// DayWindow returns the half-open day [date 00:00, next day 00:00) in loc.
// The end is exclusive so the last second of the day, fractions included,
// stays inside the window.
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// WallClock wraps a timestamp that only carries a clock reading, such as a
// value read from a column without time zone.
func WallClock(t time.Time) LocalTime {
	return LocalTime{Time: t, naive: true}
}
