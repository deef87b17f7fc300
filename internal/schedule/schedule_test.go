package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

var day = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func at(h, m int) model.LocalTime {
	return model.NewLocalTime(day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute))
}

func booking(id int64, from, to model.LocalTime, lastName string) model.Reservation {
	return model.Reservation{
		ID:            id,
		ResourceID:    1,
		StartTime:     from,
		EndTime:       to,
		Status:        model.StatusConfirmed,
		GuestLastName: lastName,
	}
}

type querierFunc func(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)

func (q querierFunc) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	return q(ctx, f)
}

func TestSort_StableByStart(t *testing.T) {
	in := []model.Reservation{
		booking(1, at(10, 0), at(11, 0), "Late"),
		booking(2, at(9, 0), at(10, 0), "First"),
		booking(3, at(9, 0), at(9, 30), "Second"),
	}

	out := Sort(in, time.UTC)

	require.Len(t, out, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, int64(1), in[0].ID, "input is left untouched")
}

func TestFacade_DaySchedule(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	var got model.ReservationFilter

	f := NewFacade(querierFunc(func(_ context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
		got = filter
		return []model.Reservation{
			booking(1, at(12, 0), at(13, 0), "Noon"),
			booking(2, at(6, 0), at(7, 0), "Breakfast"),
		}, nil
	}), zone)

	s := f.DaySchedule(context.Background(), 1, "2025-03-14")

	require.False(t, s.Unavailable)
	assert.Equal(t, "UTC+2", s.Timezone)
	assert.Equal(t, int64(1), got.ResourceID)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, zone), got.Start)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, zone), got.End)

	require.Len(t, s.Reservations, 2)
	assert.Equal(t, "Breakfast", s.Reservations[0].GuestLastName)
	assert.Equal(t, zone, s.Reservations[0].StartTime.Location())

	require.Len(t, s.Timeline.Blocks, 2)
	// 06:00 UTC is 08:00 in UTC+2.
	assert.Equal(t, 480, s.Timeline.Blocks[0].StartMinute)
	assert.Equal(t, "2025-03-14", s.Timeline.Date)
}

func TestFacade_NoResourceSkipsQuery(t *testing.T) {
	called := false
	f := NewFacade(querierFunc(func(context.Context, model.ReservationFilter) ([]model.Reservation, error) {
		called = true
		return nil, nil
	}), nil)

	s := f.DaySchedule(context.Background(), 0, "2025-03-14")

	assert.False(t, called)
	assert.False(t, s.Unavailable)
	assert.NotNil(t, s.Reservations)
	assert.Empty(t, s.Reservations)
	assert.Empty(t, s.Timeline.Blocks)
	assert.Equal(t, "UTC", s.Timezone)
}

func TestFacade_Unavailable(t *testing.T) {
	boom := errors.New("connection reset")
	f := NewFacade(querierFunc(func(context.Context, model.ReservationFilter) ([]model.Reservation, error) {
		return nil, boom
	}), time.UTC)

	s := f.DaySchedule(context.Background(), 4, "2025-03-14")
	assert.True(t, s.Unavailable)
	assert.ErrorIs(t, s.Err, boom)
	assert.Empty(t, s.Reservations)
	assert.NotNil(t, s.Timeline.Blocks)

	s = f.DaySchedule(context.Background(), 4, "March 14")
	assert.True(t, s.Unavailable)
	assert.ErrorContains(t, s.Err, "invalid date")
}
