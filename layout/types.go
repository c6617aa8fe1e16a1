package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines the value types shared by blocks, the pagination engine and surfaces.
// All lengths are points, y grows up the page.

// Color uses 0-255 RGB components.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Gray returns a gray of the given intensity in [0,1].
func Gray(v float64) Color {
	c := int(v*255 + 0.5)
	return Color{R: c, G: c, B: c}
}

// CMYK converts a process color in [0,1] components to RGB.
func CMYK(c, m, y, k float64) Color {
	conv := func(v float64) int { return int(255*(1-v)*(1-k) + 0.5) }
	return Color{R: conv(c), G: conv(m), B: conv(y)}
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa (alpha ignored).
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("unable to parse color %q", value)
	}
	var comp [3]int
	for i := range comp {
		n, err := strconv.ParseUint(v[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("unable to parse color %q: %w", value, err)
		}
		comp[i] = int(n)
	}
	return Color{R: comp[0], G: comp[1], B: comp[2]}, nil
}

// TextStyle describes a paragraph style.
type TextStyle struct {
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Leading float64 `json:"leading"`
	Indent  float64 `json:"indent,omitempty"` // left indent of every line
}

// TextLine is one wrapped line of a paragraph.
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// Point is a position on the page.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis aligned rectangle given by its bottom-left corner.
type Box struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Right() float64 { return b.Left + b.Width }
func (b Box) Top() float64   { return b.Bottom + b.Height }

// Overlaps reports whether two boxes share interior area.
func (b Box) Overlaps(o Box) bool {
	return b.Left < o.Right() && o.Left < b.Right() && b.Bottom < o.Top() && o.Bottom < b.Top()
}

// Area is a page region given by its edges.
type Area struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

func (a Area) Width() float64  { return a.Right - a.Left }
func (a Area) Height() float64 { return a.Top - a.Bottom }

// TimestampStyle controls the generation stamp drawn at the bottom of each page.
type TimestampStyle struct {
	Enabled bool      `json:"enabled"`
	Style   TextStyle `json:"style"`
}

// Config is the immutable rendering configuration threaded through every
// height and draw call.
type Config struct {
	PageSize         [2]float64 `json:"pagesize"`
	PageMargin       float64    `json:"pageMargin"`
	Columns          int        `json:"columns"`
	ColumnMargin     float64    `json:"columnMargin"`
	DebugPageOutline bool       `json:"debugPageOutline"`

	Header             TextStyle      `json:"header"`
	HeaderPad          float64        `json:"headerPad"`
	Title              TextStyle      `json:"title"`
	TitleBackground    Color          `json:"titleBackground"`
	Subtitle           TextStyle      `json:"subtitle"`
	SubtitleBackground Color          `json:"subtitleBackground"`
	Summary            TextStyle      `json:"summary"`
	Candidate          TextStyle      `json:"candidate"`
	Candsub            TextStyle      `json:"candsub"`
	Instruction        TextStyle      `json:"instruction"`
	Timestamp          TimestampStyle `json:"timestamp"`

	WriteInHeight   float64 `json:"writeInHeight"`
	BubbleLeftPad   float64 `json:"bubbleLeftPad"`
	BubbleRightPad  float64 `json:"bubbleRightPad"`
	BubbleWidth     float64 `json:"bubbleWidth"`
	BubbleMaxHeight float64 `json:"bubbleMaxHeight"`
	SelectionPad    float64 `json:"selectionPad"` // below each selection
	ContestGap      float64 `json:"contestGap"`   // between contest header and selections
	ContestPad      float64 `json:"contestPad"`   // below the last selection
	BlockOverlap    float64 `json:"blockOverlap"` // consecutive blocks share border lines
}

// Page sizes in points.
var (
	Letter  = [2]float64{8.5 * Inch, 11 * Inch}
	Legal   = [2]float64{8.5 * Inch, 14 * Inch}
	Tabloid = [2]float64{11 * Inch, 17 * Inch}
	A4      = [2]float64{210 * MM, 297 * MM}
	A3      = [2]float64{297 * MM, 420 * MM}
)

// PaperSize looks up a named page size ("letter", "a4", ...), case insensitive.
func PaperSize(name string) ([2]float64, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "letter":
		return Letter, true
	case "legal":
		return Legal, true
	case "tabloid":
		return Tabloid, true
	case "a4":
		return A4, true
	case "a3":
		return A3, true
	}
	return [2]float64{}, false
}

// DefaultConfig returns the stock ballot configuration.
func DefaultConfig() Config {
	const (
		sans     = "Liberation Sans"
		sansBold = "Liberation Sans Bold"
		indent   = 1 + 0.1*Inch
	)
	return Config{
		PageSize:         Letter,
		PageMargin:       0.5 * Inch,
		Columns:          3,
		ColumnMargin:     0.1 * Inch,
		DebugPageOutline: true,

		Header:             TextStyle{Font: sansBold, Size: 14, Leading: 15.2},
		HeaderPad:          0.1 * Inch,
		Title:              TextStyle{Font: sansBold, Size: 12, Leading: 12 * 1.4, Indent: indent},
		TitleBackground:    Gray(0.85),
		Subtitle:           TextStyle{Font: sansBold, Size: 12, Leading: 12 * 1.4, Indent: indent},
		SubtitleBackground: CMYK(0.1, 0, 0, 0),
		Summary:            TextStyle{Font: sans, Size: 12, Leading: 13, Indent: indent},
		Candidate:          TextStyle{Font: sansBold, Size: 12, Leading: 13},
		Candsub:            TextStyle{Font: sans, Size: 12, Leading: 13},
		Instruction:        TextStyle{Font: sans, Size: 10, Leading: 12},
		Timestamp:          TimestampStyle{Enabled: true, Style: TextStyle{Font: sans, Size: 10, Leading: 12}},

		WriteInHeight:   0.3 * Inch,
		BubbleLeftPad:   0.1 * Inch,
		BubbleRightPad:  0.1 * Inch,
		BubbleWidth:     8 * MM,
		BubbleMaxHeight: 3 * MM,
		SelectionPad:    0.1 * Inch,
		ContestGap:      0.1 * Inch,
		ContestPad:      0.1 * Inch,
		BlockOverlap:    1,
	}
}

// ContentArea returns the page area inside the margins.
func (c *Config) ContentArea() Area {
	return Area{
		Left:   c.PageMargin,
		Bottom: c.PageMargin,
		Right:  c.PageSize[0] - c.PageMargin,
		Top:    c.PageSize[1] - c.PageMargin,
	}
}

// BubbleColumn is the horizontal space taken by the mark target and its padding.
func (c *Config) BubbleColumn() float64 {
	return c.BubbleLeftPad + c.BubbleWidth + c.BubbleRightPad
}

// Validate checks the configuration is usable for layout.
func (c *Config) Validate() error {
	if c.PageSize[0] <= 0 || c.PageSize[1] <= 0 {
		return fmt.Errorf("bad page size %v", c.PageSize)
	}
	if c.Columns < 1 {
		return fmt.Errorf("columns must be positive, got %d", c.Columns)
	}
	area := c.ContentArea()
	if area.Width()-c.ColumnMargin*float64(c.Columns-1) <= 0 || area.Height() <= 0 {
		return fmt.Errorf("page margins leave no content area")
	}
	for name, st := range map[string]TextStyle{
		"header": c.Header, "title": c.Title, "subtitle": c.Subtitle, "summary": c.Summary,
		"candidate": c.Candidate, "candsub": c.Candsub, "instruction": c.Instruction,
	} {
		if st.Font == "" || st.Size <= 0 || st.Leading <= 0 {
			return fmt.Errorf("text style %s is incomplete: %+v", name, st)
		}
	}
	return nil
}
