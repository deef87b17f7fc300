package timeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

func sampleResult() Result {
	late := reservation(3, at(21, 0), at(22, 0), model.StatusCancelled)
	late.GuestLastName = "O'Brien & Sons"

	return Layout(NewDay(day, time.UTC), []model.Reservation{
		reservation(1, at(9, 0), at(10, 30), model.StatusPending),
		reservation(2, at(12, 0), at(14, 0), model.StatusConfirmed),
		late,
		reservation(4, at(15, 0), time.Time{}, model.StatusConfirmed),
	})
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, sampleResult(), DefaultStyle()))
	svg := buf.String()

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Contains(t, svg, `aria-label="Schedule for 2025-03-14"`)

	assert.Equal(t, 3, strings.Count(svg, `<rect class="block `))
	assert.Contains(t, svg, `class="block pending"`)
	assert.Contains(t, svg, `class="block confirmed"`)
	assert.Contains(t, svg, `class="block cancelled"`)
	assert.Contains(t, svg, "<title>09:00-10:30 Smith</title>")

	assert.Contains(t, svg, "O&#39;Brien &amp; Sons", "labels are escaped")
	assert.NotContains(t, svg, "O'Brien & Sons")

	// The list below the track repeats each block and names the missing one.
	assert.Contains(t, svg, "12:00-14:00 Smith (confirmed)")
	assert.Contains(t, svg, "not shown: reservation 4: missing end time")

	for _, hour := range []string{"00:00", "03:00", "12:00", "24:00"} {
		assert.Contains(t, svg, ">"+hour+"</text>")
	}
}

func TestRenderSVG_BlockGeometry(t *testing.T) {
	style := DefaultStyle()
	style.Layout.Width = 1040
	style.Layout.Margin = 20 // track is exactly 1000px wide

	res := Layout(NewDay(day, time.UTC), []model.Reservation{
		reservation(1, at(12, 0), at(18, 0), model.StatusConfirmed),
	})

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, res, style))
	assert.Contains(t, buf.String(), `x="520.00" y="20" width="250.00"`)
}

func TestRenderSVG_BlocksStayOnTrack(t *testing.T) {
	style := DefaultStyle()
	style.Layout.Width = 1040
	style.Layout.Margin = 20

	res := Layout(NewDay(day, time.UTC), []model.Reservation{
		reservation(1, at(23, 59), at(24, 0), model.StatusConfirmed),
		reservation(2, at(30, 0), at(31, 0), model.StatusPending),
	})
	require.Len(t, res.Blocks, 2)
	require.Equal(t, 100.0, res.Blocks[1].LeftPercent)

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, res, style))
	svg := buf.String()

	// Both 15px minimum-width bars end at the right edge of the track, x=1020.
	assert.Equal(t, 2, strings.Count(svg, `x="1005.00" y="20" width="15.00"`))
}

func TestLoadStyle(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		s, err := LoadStyle("")
		require.NoError(t, err)
		assert.Equal(t, DefaultStyle(), s)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "style.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
layout:
  width: 1200
  tick_every: 0
colors:
  confirmed: "#000000"
`), 0o600))

		s, err := LoadStyle(path)
		require.NoError(t, err)
		assert.Equal(t, 1200, s.Layout.Width)
		assert.Equal(t, "#000000", s.Colors.Confirmed)
		assert.Equal(t, DefaultStyle().Colors.Pending, s.Colors.Pending)
		assert.Equal(t, DefaultStyle().Layout.TickEvery, s.Layout.TickEvery)
	})

	t.Run("too narrow", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "style.yaml")
		require.NoError(t, os.WriteFile(path, []byte("layout:\n  width: 50\n"), 0o600))

		_, err := LoadStyle(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStyle(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleResult(), 48))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 6)
	assert.Equal(t, "2025-03-14", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "00"))
	assert.Contains(t, lines[1], "12")
	assert.Contains(t, lines[1], "24")

	// 09:00-10:30 on a 48 column track covers columns 18 to 21.
	assert.Equal(t, strings.Repeat(".", 18)+"~~~"+strings.Repeat(".", 27)+"  09:00-10:30 Smith (pending)", lines[2])
	assert.Contains(t, lines[3], "####")
	assert.Contains(t, lines[4], "xx")
	assert.Equal(t, "not shown: reservation 4: missing end time", lines[5])
}

func TestRenderText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, Layout(NewDay(day, time.UTC), nil), 48))
	assert.Contains(t, buf.String(), "(no reservations)")
}
