package timeline

import (
	"fmt"
	"io"
	"math"
	"strings"
)

var classMarks = map[string]byte{
	"pending":   '~',
	"confirmed": '#',
	"cancelled": 'x',
}

// RenderText prints each block as a row on a track `columns` characters wide,
// followed by its label.
func RenderText(w io.Writer, res Result, columns int) error {
	if columns < 24 {
		columns = 24
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", res.Date)
	sb.WriteString(axis(columns))
	sb.WriteByte('\n')

	if len(res.Blocks) == 0 && len(res.Unrenderable) == 0 {
		sb.WriteString("(no reservations)\n")
	}

	for _, b := range res.Blocks {
		row := []byte(strings.Repeat(".", columns))
		from := int(math.Floor(b.LeftPercent / 100 * float64(columns)))
		to := int(math.Ceil((b.LeftPercent + b.WidthPercent) / 100 * float64(columns)))
		if from >= columns {
			from = columns - 1
		}
		if to > columns {
			to = columns
		}
		if to <= from {
			to = from + 1
		}
		mark, ok := classMarks[b.Class]
		if !ok {
			mark = '?'
		}
		for i := from; i < to; i++ {
			row[i] = mark
		}
		fmt.Fprintf(&sb, "%s  %s\n", row, blockLine(b))
	}

	for _, u := range res.Unrenderable {
		fmt.Fprintf(&sb, "not shown: %s\n", u.Reason)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// axis labels every sixth hour along the track.
func axis(columns int) string {
	line := []byte(strings.Repeat(" ", columns+5))
	for hour := 0; hour <= 24; hour += 6 {
		pos := columns * hour / 24
		copy(line[pos:], fmt.Sprintf("%02d", hour))
	}
	return strings.TrimRight(string(line), " ")
}
