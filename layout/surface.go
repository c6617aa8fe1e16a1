package layout

import "image"

// Align is the horizontal anchoring of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Surface is the 2-D drawing target. Coordinates are points with the origin
// at the bottom-left of the page. Text is drawn with the fill color.
type Surface interface {
	SetStrokeColor(c Color)
	SetFillColor(c Color)
	SetLineWidth(w float64)
	// SetDash sets the dash pattern for subsequent strokes, no arguments means solid.
	SetDash(pattern ...float64)

	Rect(x, y, w, h float64, stroke, fill bool)
	RoundRect(x, y, w, h, radius float64, stroke, fill bool)
	Line(x1, y1, x2, y2 float64)
	Polyline(points ...Point)
	Text(x, baseline float64, s string, font string, size float64, align Align)
	Image(img image.Image, x, y, w, h float64)

	// ShowPage finishes the current page, drawing continues on a fresh one.
	ShowPage() error
}

// Discard is a surface that draws nothing. It counts finished pages, which
// is all the pagination dry run needs.
type Discard struct {
	Pages int
}

var _ Surface = (*Discard)(nil)

func (d *Discard) SetStrokeColor(Color)                                      {}
func (d *Discard) SetFillColor(Color)                                        {}
func (d *Discard) SetLineWidth(float64)                                      {}
func (d *Discard) SetDash(...float64)                                        {}
func (d *Discard) Rect(_, _, _, _ float64, _, _ bool)                        {}
func (d *Discard) RoundRect(_, _, _, _, _ float64, _, _ bool)                {}
func (d *Discard) Line(_, _, _, _ float64)                                   {}
func (d *Discard) Polyline(...Point)                                         {}
func (d *Discard) Text(_, _ float64, _ string, _ string, _ float64, _ Align) {}
func (d *Discard) Image(image.Image, float64, float64, float64, float64)     {}

func (d *Discard) ShowPage() error {
	d.Pages++
	return nil
}
