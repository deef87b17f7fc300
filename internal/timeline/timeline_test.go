package timeline

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

var day = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func reservation(id int64, start, end time.Time, status model.Status) model.Reservation {
	return model.Reservation{
		ID:            id,
		ResourceID:    1,
		StartTime:     model.NewLocalTime(start),
		EndTime:       model.NewLocalTime(end),
		Status:        status,
		GuestLastName: "Smith",
	}
}

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestLayout_Positions(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		wantStart  int
		wantEnd    int
		wantLeft   float64
		wantWidth  float64
	}{
		{
			name:      "evening booking",
			start:     at(18, 0),
			end:       at(20, 0),
			wantStart: 1080,
			wantEnd:   1200,
			wantLeft:  75,
			wantWidth: 120.0 / 1440 * 100,
		},
		{
			name:      "crossing midnight is cut at the end of the day",
			start:     at(23, 0),
			end:       at(25, 0),
			wantStart: 1380,
			wantEnd:   1440,
			wantLeft:  1380.0 / 1440 * 100,
			wantWidth: 60.0 / 1440 * 100,
		},
		{
			name:      "starting the day before is cut at midnight",
			start:     at(-2, 0),
			end:       at(1, 0),
			wantStart: 0,
			wantEnd:   60,
			wantLeft:  0,
			wantWidth: 60.0 / 1440 * 100,
		},
		{
			name:      "zero length keeps the minimum width",
			start:     at(12, 0),
			end:       at(12, 0),
			wantStart: 720,
			wantEnd:   720,
			wantLeft:  50,
			wantWidth: MinWidthPercent,
		},
		{
			name:      "end before start keeps the minimum width",
			start:     at(12, 0),
			end:       at(11, 0),
			wantStart: 720,
			wantEnd:   720,
			wantLeft:  50,
			wantWidth: MinWidthPercent,
		},
		{
			name:      "fractional minutes round outwards",
			start:     at(10, 0).Add(30 * time.Second),
			end:       at(10, 59).Add(1 * time.Second),
			wantStart: 600,
			wantEnd:   660,
			wantLeft:  600.0 / 1440 * 100,
			wantWidth: 60.0 / 1440 * 100,
		},
		{
			name:      "entirely on the previous day",
			start:     at(-5, 0),
			end:       at(-4, 0),
			wantStart: 0,
			wantEnd:   0,
			wantLeft:  0,
			wantWidth: MinWidthPercent,
		},
		{
			name:      "entirely on the next day",
			start:     at(26, 0),
			end:       at(27, 0),
			wantStart: 1440,
			wantEnd:   1440,
			wantLeft:  100,
			wantWidth: MinWidthPercent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Layout(NewDay(day, time.UTC), []model.Reservation{
				reservation(7, tt.start, tt.end, model.StatusConfirmed),
			})

			require.Len(t, res.Blocks, 1)
			assert.Empty(t, res.Unrenderable)

			b := res.Blocks[0]
			assert.Equal(t, int64(7), b.ReservationID)
			assert.Equal(t, tt.wantStart, b.StartMinute)
			assert.Equal(t, tt.wantEnd, b.EndMinute)
			assert.InDelta(t, tt.wantLeft, b.LeftPercent, 1e-9)
			assert.InDelta(t, tt.wantWidth, b.WidthPercent, 1e-9)
		})
	}
}

func TestLayout_Invariants(t *testing.T) {
	f := gofakeit.New(42)
	from, to := day.Add(-48*time.Hour), day.Add(72*time.Hour)

	var list []model.Reservation
	for i := range 500 {
		start := f.DateRange(from, to)
		end := start.Add(time.Duration(f.IntRange(-180, 24*60)) * time.Minute)
		list = append(list, reservation(int64(i+1), start, end, model.StatusPending))
	}

	res := Layout(NewDay(day, time.UTC), list)
	require.Len(t, res.Blocks, len(list), "no reservation may be dropped")

	for i, b := range res.Blocks {
		assert.Equal(t, list[i].ID, b.ReservationID, "output keeps input order")
		assert.GreaterOrEqual(t, b.StartMinute, 0)
		assert.LessOrEqual(t, b.StartMinute, b.EndMinute)
		assert.LessOrEqual(t, b.EndMinute, MinutesPerDay)
		assert.GreaterOrEqual(t, b.WidthPercent, MinWidthPercent)
		assert.GreaterOrEqual(t, b.LeftPercent, 0.0)
		assert.LessOrEqual(t, b.LeftPercent, 100.0)
	}
}

func TestLayout_UnrenderableIsIsolated(t *testing.T) {
	broken := reservation(2, at(9, 0), time.Time{}, model.StatusConfirmed)
	noStart := reservation(3, time.Time{}, at(11, 0), model.StatusConfirmed)

	res := Layout(NewDay(day, time.UTC), []model.Reservation{
		reservation(1, at(8, 0), at(9, 0), model.StatusConfirmed),
		broken,
		noStart,
		reservation(4, at(10, 0), at(11, 0), model.StatusPending),
	})

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, int64(1), res.Blocks[0].ReservationID)
	assert.Equal(t, int64(4), res.Blocks[1].ReservationID)

	require.Len(t, res.Unrenderable, 2)
	assert.Equal(t, int64(2), res.Unrenderable[0].ReservationID)
	assert.Contains(t, res.Unrenderable[0].Reason, "end time")
	assert.Equal(t, int64(3), res.Unrenderable[1].ReservationID)
	assert.Contains(t, res.Unrenderable[1].Reason, "start time")
}

func TestLayout_Empty(t *testing.T) {
	res := Layout(NewDay(day, time.UTC), nil)

	assert.Equal(t, "2025-03-14", res.Date)
	assert.NotNil(t, res.Blocks)
	assert.Empty(t, res.Blocks)
	assert.Empty(t, res.Unrenderable)
}

func TestLayout_ClassAndLabel(t *testing.T) {
	unknown := reservation(3, at(13, 0), at(14, 0), model.Status("waitlist"))

	res := Layout(NewDay(day, time.UTC), []model.Reservation{
		reservation(1, at(9, 0), at(10, 30), model.StatusPending),
		reservation(2, at(11, 15), at(12, 0), model.StatusCancelled),
		unknown,
	})

	require.Len(t, res.Blocks, 3)
	assert.Equal(t, "pending", res.Blocks[0].Class)
	assert.Equal(t, "09:00-10:30 Smith", res.Blocks[0].Label)
	assert.Equal(t, "cancelled", res.Blocks[1].Class)
	assert.Equal(t, "11:15-12:00 Smith", res.Blocks[1].Label)
	assert.Equal(t, "", res.Blocks[2].Class)
}

func TestLayout_DayBoundaryFollowsZone(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	localDay := time.Date(2025, time.March, 14, 0, 0, 0, 0, zone)

	// 22:30 UTC on the 13th is 00:30 on the 14th in UTC+2.
	start := time.Date(2025, time.March, 13, 22, 30, 0, 0, time.UTC)
	r := reservation(1, start, start.Add(time.Hour), model.StatusConfirmed)

	res := Layout(NewDay(localDay, zone), []model.Reservation{r.InZone(zone)})

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, 30, res.Blocks[0].StartMinute)
	assert.Equal(t, 90, res.Blocks[0].EndMinute)
	assert.Equal(t, "00:30-01:30 Smith", res.Blocks[0].Label)
	assert.Equal(t, "2025-03-14", res.Date)
}
