package ballot

import (
	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/headertmpl"
	"github.com/brianolson/ballotstudio/layout"
)

var outlineColor = layout.Color{R: 255, G: 153, B: 153}

// pageDecorator draws the debug outline, the generation stamp and the page
// header, and shrinks the content area by what they take.
type pageDecorator struct {
	cfg      *layout.Config
	style    *Style
	election *election.Election
	tmpl     *headertmpl.Template
	stamp    string
}

var _ layout.Decorator = (*pageDecorator)(nil)

func (d *pageDecorator) Decorate(s layout.Surface, page, totalPages int, area layout.Area) (layout.Decoration, error) {
	cfg := d.cfg
	if cfg.DebugPageOutline {
		s.SetLineWidth(0.2)
		s.SetStrokeColor(outlineColor)
		s.Rect(area.Left, area.Bottom, area.Width(), area.Height(), true, false)
		s.SetLineWidth(1)
	}

	if ts := cfg.Timestamp; ts.Enabled {
		s.SetFillColor(layout.Black)
		s.Text(area.Right, area.Bottom+ts.Style.Size*0.2, d.stamp, ts.Style.Font, ts.Style.Size, layout.AlignRight)
		area.Bottom += ts.Style.Size * 1.2
	}

	lines, err := d.tmpl.Lines(d.style.headerVars(d.election, page, totalPages))
	if err != nil {
		return layout.Decoration{}, err
	}
	st := cfg.Header
	s.SetStrokeColor(layout.Black)
	s.SetFillColor(layout.Black)
	s.SetLineWidth(1)
	s.SetDash()
	s.Line(area.Left, area.Top, area.Right, area.Top)
	left := area.Left + cfg.HeaderPad
	for i, ln := range lines {
		s.Text(left, area.Top-st.Size-float64(i)*st.Leading, ln, st.Font, st.Size, layout.AlignLeft)
	}
	height := st.Leading*float64(len(lines)) + cfg.HeaderPad
	header := layout.Box{Left: left, Bottom: area.Top - height, Width: area.Right - left, Height: height}
	area.Top -= height
	return layout.Decoration{Content: area, Header: &header}, nil
}
