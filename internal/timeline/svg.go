package timeline

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style controls the appearance of the SVG day schedule.
type Style struct {
	Font struct {
		Family string `yaml:"family"` // e.g. "Arial, sans-serif"
		Size   int    `yaml:"size"`   // base size in pixels
	} `yaml:"font"`
	Layout struct {
		Width       int `yaml:"width"`        // total SVG width in pixels
		Margin      int `yaml:"margin"`       // left/right/top margin in pixels
		TrackHeight int `yaml:"track_height"` // height of the 24h track
		RowHeight   int `yaml:"row_height"`   // height of one entry in the list below the track
		TickEvery   int `yaml:"tick_every"`   // hours between tick marks
	} `yaml:"layout"`
	Colors struct {
		Background string `yaml:"background"`
		Track      string `yaml:"track"`
		Ticks      string `yaml:"ticks"`
		Text       string `yaml:"text"`
		Pending    string `yaml:"pending"`
		Confirmed  string `yaml:"confirmed"`
		Cancelled  string `yaml:"cancelled"`
		Unknown    string `yaml:"unknown"`
	} `yaml:"colors"`
}

// DefaultStyle returns a readable style for a 960px wide schedule.
func DefaultStyle() Style {
	var s Style
	s.Font.Family = "Arial, sans-serif"
	s.Font.Size = 12
	s.Layout.Width = 960
	s.Layout.Margin = 40
	s.Layout.TrackHeight = 36
	s.Layout.RowHeight = 18
	s.Layout.TickEvery = 3
	s.Colors.Background = "#ffffff"
	s.Colors.Track = "#f1f3f4"
	s.Colors.Ticks = "#9aa0a6"
	s.Colors.Text = "#333333"
	s.Colors.Pending = "#f9ab00"
	s.Colors.Confirmed = "#1e8e3e"
	s.Colors.Cancelled = "#9aa0a6"
	s.Colors.Unknown = "#4285f4"
	return s
}

// LoadStyle reads a YAML style file over the defaults. An empty path returns
// the defaults.
func LoadStyle(path string) (Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("error reading style file: %w", err)
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return Style{}, fmt.Errorf("error parsing style file: %w", err)
	}
	if style.Layout.Width <= 2*style.Layout.Margin {
		return Style{}, fmt.Errorf("layout.width %d leaves no room for the track", style.Layout.Width)
	}
	if style.Layout.TickEvery <= 0 {
		style.Layout.TickEvery = DefaultStyle().Layout.TickEvery
	}
	return style, nil
}

func (s Style) color(class string) string {
	switch class {
	case "pending":
		return s.Colors.Pending
	case "confirmed":
		return s.Colors.Confirmed
	case "cancelled":
		return s.Colors.Cancelled
	}
	return s.Colors.Unknown
}

// RenderSVG draws the track with one bar per block and, below it, the same
// blocks as a plain list in the same order.
func RenderSVG(w io.Writer, res Result, style Style) error {
	trackX := style.Layout.Margin
	trackW := style.Layout.Width - 2*style.Layout.Margin
	trackY := style.Layout.Margin
	trackH := style.Layout.TrackHeight
	listY := trackY + trackH + style.Font.Size*3
	height := listY + (len(res.Blocks)+len(res.Unrenderable)+1)*style.Layout.RowHeight

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="Schedule for %s">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.hour-text { font-family: %s; font-size: %dpx; fill: %s; }
.label-text { font-family: %s; font-size: %dpx; fill: %s; }
.title-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
</style>
</defs>
`, style.Layout.Width, height, escapeXML(res.Date), style.Colors.Background,
		style.Font.Family, style.Font.Size-2, style.Colors.Ticks,
		style.Font.Family, style.Font.Size, style.Colors.Text,
		style.Font.Family, style.Font.Size+2, style.Colors.Text)

	fmt.Fprintf(&svg, `<text class="title-text" x="%d" y="%d">%s</text>`+"\n",
		trackX, trackY-style.Font.Size, escapeXML(res.Date))
	fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
		trackX, trackY, trackW, trackH, style.Colors.Track)

	for hour := 0; hour <= 24; hour += style.Layout.TickEvery {
		x := trackX + trackW*hour/24
		fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
			x, trackY, x, trackY+trackH, style.Colors.Ticks)
		fmt.Fprintf(&svg, `<text class="hour-text" x="%d" y="%d" text-anchor="middle">%02d:00</text>`+"\n",
			x, trackY+trackH+style.Font.Size, hour)
	}

	for _, b := range res.Blocks {
		bw := math.Min(b.WidthPercent/100*float64(trackW), float64(trackW))
		// Minimum-width bars at the end of the day stay on the track.
		x := math.Min(float64(trackX)+b.LeftPercent/100*float64(trackW), float64(trackX+trackW)-bw)
		fmt.Fprintf(&svg, `<rect class="block %s" x="%.2f" y="%d" width="%.2f" height="%d" fill="%s" fill-opacity="0.8"><title>%s</title></rect>`+"\n",
			escapeXML(b.Class), x, trackY, bw, trackH, style.color(b.Class), escapeXML(b.Label))
	}

	y := listY
	for _, b := range res.Blocks {
		fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`+"\n",
			trackX, y-10, style.color(b.Class))
		fmt.Fprintf(&svg, `<text class="label-text" x="%d" y="%d">%s</text>`+"\n",
			trackX+16, y, escapeXML(blockLine(b)))
		y += style.Layout.RowHeight
	}
	for _, u := range res.Unrenderable {
		fmt.Fprintf(&svg, `<text class="label-text" x="%d" y="%d">%s</text>`+"\n",
			trackX+16, y, escapeXML("not shown: "+u.Reason))
		y += style.Layout.RowHeight
	}

	svg.WriteString("</svg>\n")
	_, err := io.WriteString(w, svg.String())
	return err
}

func blockLine(b Block) string {
	if b.Class == "" {
		return b.Label
	}
	return fmt.Sprintf("%s (%s)", b.Label, b.Class)
}

func escapeXML(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
