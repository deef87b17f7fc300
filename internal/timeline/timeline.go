// Package timeline maps reservations onto a fixed 24-hour track.
//
// A day is 1440 minutes wide. Every reservation becomes a Block with a left
// offset and a width, both in percent of the track, clamped to the day the
// track represents. Blocks are positioned independently: overlapping
// reservations produce overlapping blocks and nothing is collision-resolved.
package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

const (
	// MinutesPerDay is the width of the track.
	MinutesPerDay = 1440
	// MinWidthPercent keeps very short reservations visible and clickable.
	MinWidthPercent = 1.5
)

// Day identifies the calendar day being laid out.
type Day struct {
	Date     time.Time
	Location *time.Location
}

// NewDay builds a Day for date interpreted in loc.
func NewDay(date time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day{Date: date, Location: loc}
}

// Start returns midnight of the day, the zero point of the track.
func (d Day) Start() time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, dd := d.Date.In(loc).Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

// Block is the visual mapping of one reservation onto the track.
type Block struct {
	ReservationID int64   `json:"reservation_id"`
	StartMinute   int     `json:"start_minute"`
	EndMinute     int     `json:"end_minute"`
	LeftPercent   float64 `json:"left_percent"`
	WidthPercent  float64 `json:"width_percent"`
	Class         string  `json:"class"`
	Label         string  `json:"label"`
}

// Unrenderable records a reservation that could not be placed on the track.
type Unrenderable struct {
	ReservationID int64  `json:"reservation_id"`
	Reason        string `json:"reason"`
}

// Result is the layout of one day.
type Result struct {
	Date         string         `json:"date"`
	Blocks       []Block        `json:"blocks"`
	Unrenderable []Unrenderable `json:"unrenderable,omitempty"`
}

// Layout positions every reservation on the day's track, in input order.
// A reservation with a missing timestamp is reported in Unrenderable and the
// rest are still laid out.
func Layout(day Day, reservations []model.Reservation) Result {
	dayStart := day.Start()
	res := Result{
		Date:   dayStart.Format(model.DateLayout),
		Blocks: make([]Block, 0, len(reservations)),
	}

	for _, r := range reservations {
		b, err := place(dayStart, r)
		if err != nil {
			res.Unrenderable = append(res.Unrenderable, Unrenderable{ReservationID: r.ID, Reason: err.Error()})
			continue
		}
		res.Blocks = append(res.Blocks, b)
	}
	return res
}

func place(dayStart time.Time, r model.Reservation) (Block, error) {
	if r.StartTime.IsZero() {
		return Block{}, fmt.Errorf("reservation %d: missing start time", r.ID)
	}
	if r.EndTime.IsZero() {
		return Block{}, fmt.Errorf("reservation %d: missing end time", r.ID)
	}

	startMinute := clamp(int(math.Floor(minutesSince(dayStart, r.StartTime.Time))))
	endMinute := clamp(int(math.Ceil(minutesSince(dayStart, r.EndTime.Time))))
	if endMinute < startMinute {
		endMinute = startMinute
	}

	loc := dayStart.Location()
	return Block{
		ReservationID: r.ID,
		StartMinute:   startMinute,
		EndMinute:     endMinute,
		LeftPercent:   Percent(startMinute),
		WidthPercent:  math.Max(MinWidthPercent, Percent(endMinute-startMinute)),
		Class:         StatusClass(r.Status),
		Label:         Label(r, loc),
	}, nil
}

// minutesSince works in milliseconds so fractional minutes floor and ceil
// the same way regardless of sub-millisecond noise.
func minutesSince(dayStart, t time.Time) float64 {
	ms := t.Sub(dayStart).Milliseconds()
	return float64(ms) / 60000
}

func clamp(minute int) int {
	switch {
	case minute < 0:
		return 0
	case minute > MinutesPerDay:
		return MinutesPerDay
	}
	return minute
}

// Percent converts minutes into a percentage of the track.
func Percent(minutes int) float64 {
	return float64(minutes) / MinutesPerDay * 100
}

// StatusClass returns the visual class for a status, or "" when unknown.
func StatusClass(s model.Status) string {
	if s.Valid() {
		return string(s)
	}
	return ""
}

// Label is the human-readable "HH:MM-HH:MM LastName" caption of a block.
func Label(r model.Reservation, loc *time.Location) string {
	return fmt.Sprintf("%s-%s %s",
		r.StartTime.Time.In(loc).Format("15:04"),
		r.EndTime.Time.In(loc).Format("15:04"),
		r.GuestLastName,
	)
}
