// Package layouttest provides deterministic typesetting and an instrumented
// surface for layout tests.
package layouttest

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/brianolson/ballotstudio/layout"
)

// Typesetter advances every rune by Advance times the font size and wraps on spaces.
type Typesetter struct {
	Advance float64
	Calls   int
}

var _ layout.Typesetter = (*Typesetter)(nil)

// NewTypesetter returns a stub with half-em advances.
func NewTypesetter() *Typesetter { return &Typesetter{Advance: 0.5} }

func (t *Typesetter) runeWidth(size float64) float64 {
	adv := t.Advance
	if adv <= 0 {
		adv = 0.5
	}
	return adv * size
}

func (t *Typesetter) StringWidth(s string, _ string, size float64) (float64, error) {
	return float64(len([]rune(s))) * t.runeWidth(size), nil
}

func (t *Typesetter) LayoutLines(content string, width float64, style layout.TextStyle) ([]layout.TextLine, error) {
	t.Calls++
	if style.Size <= 0 {
		return nil, fmt.Errorf("bad font size %g", style.Size)
	}
	rw := t.runeWidth(style.Size)
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	var lines []layout.TextLine
	for _, para := range strings.Split(content, "\n") {
		var cur []string
		curLen := 0
		flush := func() {
			s := strings.Join(cur, " ")
			lines = append(lines, layout.TextLine{Content: s, Width: float64(len([]rune(s))) * rw})
			cur, curLen = nil, 0
		}
		for _, word := range strings.Fields(para) {
			n := len([]rune(word))
			next := curLen + n
			if len(cur) > 0 {
				next++
			}
			if len(cur) > 0 && float64(next)*rw > limit {
				flush()
				next = n
			}
			cur = append(cur, word)
			curLen = next
		}
		flush()
	}
	return lines, nil
}

// Fonts reports the same cap height for every font.
type Fonts float64

func (f Fonts) CapHeight(string) (float64, error) { return float64(f), nil }

// Images serves blank images of a fixed size for any name.
type Images struct {
	W, H int
}

func (i Images) Image(string) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, max(i.W, 1), max(i.H, 1))), nil
}

// Op is one recorded drawing primitive.
type Op struct {
	Page   int
	Kind   string
	Text   string
	Filled bool
	Ink    layout.Box
}

// Recorder is a surface that records every primitive with its ink extent.
// Strokes are widened by half the line width; text occupies one font size
// above its baseline.
type Recorder struct {
	Ops       []Op
	Pages     int
	lineWidth float64
	active    bool // ink extents are collected into Extent
	extent    [4]float64
	hasExtent bool
}

var _ layout.Surface = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{lineWidth: 1} }

func (r *Recorder) add(kind string, text string, filled bool, ink layout.Box) {
	r.Ops = append(r.Ops, Op{Page: r.Pages + 1, Kind: kind, Text: text, Filled: filled, Ink: ink})
	if !r.active {
		return
	}
	l, b, rt, t := ink.Left, ink.Bottom, ink.Right(), ink.Top()
	if !r.hasExtent {
		r.extent = [4]float64{l, b, rt, t}
		r.hasExtent = true
		return
	}
	r.extent[0] = math.Min(r.extent[0], l)
	r.extent[1] = math.Min(r.extent[1], b)
	r.extent[2] = math.Max(r.extent[2], rt)
	r.extent[3] = math.Max(r.extent[3], t)
}

// BeginExtent starts collecting the ink extent of subsequent primitives.
func (r *Recorder) BeginExtent() {
	r.active = true
	r.hasExtent = false
}

// Extent stops collecting and returns the union of collected ink, false when nothing was drawn.
func (r *Recorder) Extent() (layout.Area, bool) {
	r.active = false
	if !r.hasExtent {
		return layout.Area{}, false
	}
	return layout.Area{Left: r.extent[0], Bottom: r.extent[1], Right: r.extent[2], Top: r.extent[3]}, true
}

// Texts returns the text runs drawn on a page (1-based).
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.Ops {
		if op.Page == page && op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

func (r *Recorder) SetStrokeColor(layout.Color) {}
func (r *Recorder) SetFillColor(layout.Color)   {}
func (r *Recorder) SetDash(...float64)          {}
func (r *Recorder) SetLineWidth(w float64)      { r.lineWidth = w }

func (r *Recorder) rectInk(x, y, w, h float64, stroke bool) layout.Box {
	if !stroke {
		return layout.Box{Left: x, Bottom: y, Width: w, Height: h}
	}
	hw := r.lineWidth / 2
	return layout.Box{Left: x - hw, Bottom: y - hw, Width: w + 2*hw, Height: h + 2*hw}
}

func (r *Recorder) Rect(x, y, w, h float64, stroke, fill bool) {
	r.add("rect", "", fill, r.rectInk(x, y, w, h, stroke))
}

func (r *Recorder) RoundRect(x, y, w, h, _ float64, stroke, fill bool) {
	r.add("roundrect", "", fill, r.rectInk(x, y, w, h, stroke))
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.Polyline(layout.Point{X: x1, Y: y1}, layout.Point{X: x2, Y: y2})
}

// Polyline ink is the union of its segments with butt caps: a segment is
// widened by half the line width across its direction only.
func (r *Recorder) Polyline(points ...layout.Point) {
	hw := r.lineWidth / 2
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		l, rt := math.Min(a.X, b.X), math.Max(a.X, b.X)
		lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
		switch {
		case lo == hi:
			lo, hi = lo-hw, hi+hw
		case l == rt:
			l, rt = l-hw, rt+hw
		default:
			l, rt, lo, hi = l-hw, rt+hw, lo-hw, hi+hw
		}
		r.add("line", "", false, layout.Box{Left: l, Bottom: lo, Width: rt - l, Height: hi - lo})
	}
}

func (r *Recorder) Text(x, baseline float64, s string, _ string, size float64, align layout.Align) {
	w := float64(len([]rune(s))) * 0.5 * size
	left := x
	switch align {
	case layout.AlignRight:
		left = x - w
	case layout.AlignCenter:
		left = x - w/2
	}
	r.add("text", s, true, layout.Box{Left: left, Bottom: baseline, Width: w, Height: size})
}

func (r *Recorder) Image(_ image.Image, x, y, w, h float64) {
	r.add("image", "", true, layout.Box{Left: x, Bottom: y, Width: w, Height: h})
}

func (r *Recorder) ShowPage() error {
	r.Pages++
	return nil
}
