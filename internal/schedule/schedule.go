// Package schedule builds the day schedule of a resource: the reservations
// intersecting one calendar day, ordered by start, with their timeline layout.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/timeline"
)

// Querier lists reservations. The HTTP client and the reservation service
// both satisfy it.
type Querier interface {
	ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
}

// Schedule is one resource's day. When Unavailable is set the query failed,
// Err holds the cause and Reservations is empty.
type Schedule struct {
	ResourceID   int64               `json:"resource_id"`
	Date         string              `json:"date"`
	Timezone     string              `json:"timezone"`
	Reservations []model.Reservation `json:"reservations"`
	Timeline     timeline.Result     `json:"timeline"`
	Unavailable  bool                `json:"unavailable"`
	Err          error               `json:"-"`
}

// Facade is the only producer of timeline layouts.
type Facade struct {
	q   Querier
	loc *time.Location
}

// NewFacade returns a Facade whose day boundaries are computed in loc.
func NewFacade(q Querier, loc *time.Location) *Facade {
	if loc == nil {
		loc = time.UTC
	}
	return &Facade{q: q, loc: loc}
}

// Location is the zone day boundaries are computed in.
func (f *Facade) Location() *time.Location {
	return f.loc
}

// DaySchedule fetches the reservations of resourceID on date (YYYY-MM-DD)
// and lays them out. It never fails: errors come back as an Unavailable
// schedule.
func (f *Facade) DaySchedule(ctx context.Context, resourceID int64, date string) Schedule {
	s := Schedule{
		ResourceID:   resourceID,
		Date:         date,
		Timezone:     f.loc.String(),
		Reservations: []model.Reservation{},
		Timeline:     timeline.Result{Date: date, Blocks: []timeline.Block{}},
	}

	day, err := model.ParseDate(date, f.loc)
	if err != nil {
		return unavailable(s, err)
	}
	if resourceID <= 0 {
		return s
	}

	start, end := model.DayWindow(day, f.loc)
	reservations, err := f.q.ListReservations(ctx, model.ReservationFilter{
		ResourceID: resourceID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return unavailable(s, fmt.Errorf("list reservations of resource %d: %w", resourceID, err))
	}

	s.Reservations = Sort(reservations, f.loc)
	s.Timeline = timeline.Layout(timeline.NewDay(day, f.loc), s.Reservations)
	return s
}

func unavailable(s Schedule, err error) Schedule {
	s.Unavailable = true
	s.Err = err
	return s
}

// Sort anchors every reservation in loc and orders them by start time.
// Ties keep their input order. The input slice is not modified.
func Sort(reservations []model.Reservation, loc *time.Location) []model.Reservation {
	out := make([]model.Reservation, len(reservations))
	for i, r := range reservations {
		out[i] = r.InZone(loc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime.Time)
	})
	return out
}
