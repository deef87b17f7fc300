package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTime_JSON(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	lt := NewLocalTime(time.Date(2025, time.March, 14, 19, 30, 0, 0, zone))

	b, err := json.Marshal(lt)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-14T19:30:00"`, string(b), "wall clock without offset")

	b, err = json.Marshal(LocalTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestLocalTime_UnmarshalAndAnchor(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)

	var lt LocalTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-14T19:30:00"`), &lt))

	anchored := lt.In(zone)
	assert.Equal(t, time.Date(2025, time.March, 14, 19, 30, 0, 0, zone), anchored.Time)
	assert.Equal(t, "2025-03-14T19:30:00", anchored.String(), "naive values keep their reading")

	// Anchored values are absolute; moving them to another zone converts.
	assert.Equal(t, "2025-03-14T10:30:00", anchored.In(time.UTC).String())
}

func TestLocalTime_UnmarshalRFC3339Converts(t *testing.T) {
	var lt LocalTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-14T19:30:00+02:00"`), &lt))

	assert.Equal(t, "2025-03-14T17:30:00", lt.In(time.UTC).String())
}

func TestLocalTime_UnmarshalNull(t *testing.T) {
	lt := NewLocalTime(time.Now())
	require.NoError(t, json.Unmarshal([]byte(`null`), &lt))
	assert.True(t, lt.IsZero())
	assert.True(t, lt.In(time.UTC).IsZero())
}

func TestParseLocalTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-03-14T19:30:00", want: "2025-03-14T19:30:00"},
		{in: "2025-03-14T19:30", want: "2025-03-14T19:30:00"},
		{in: "2025-03-14 19:30:15", want: "2025-03-14T19:30:15"},
		{in: "2025-03-14T19:30:00.250", want: "2025-03-14T19:30:00"},
		{in: "2025-03-14", wantErr: true},
		{in: "14/03/2025 19:30", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lt, err := ParseLocalTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lt.String())
		})
	}
}

func TestDayWindow(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)

	d, err := ParseDate("2025-03-14", zone)
	require.NoError(t, err)

	start, end := DayWindow(d, zone)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, zone), start)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, zone), end)

	start, end = DayWindow(time.Date(2025, time.December, 31, 12, 0, 0, 0, zone), zone)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, zone), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, zone), end, "rolls over the year")

	_, err = ParseDate("14.03.2025", zone)
	assert.Error(t, err)
}

func TestReservation_Overlaps(t *testing.T) {
	mk := func(h1, h2 int) Reservation {
		base := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
		return Reservation{
			StartTime: NewLocalTime(base.Add(time.Duration(h1) * time.Hour)),
			EndTime:   NewLocalTime(base.Add(time.Duration(h2) * time.Hour)),
		}
	}

	assert.True(t, mk(18, 20).Overlaps(mk(19, 21)))
	assert.True(t, mk(18, 20).Overlaps(mk(17, 23)))
	assert.False(t, mk(18, 20).Overlaps(mk(20, 22)), "touching intervals do not overlap")
	assert.False(t, mk(18, 20).Overlaps(mk(10, 12)))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Cancelled ")
	assert.True(t, ok)
	assert.Equal(t, StatusCancelled, st)

	_, ok = ParseStatus("waitlist")
	assert.False(t, ok)
}
