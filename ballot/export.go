package ballot

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"github.com/brianolson/ballotstudio/layout"
)

// Rect is a mark target as [left, bottom, width, height].
type Rect [4]float64

// Edges is a page header box as [left, top, right, bottom].
type Edges [4]float64

// Selections maps selection id -> mark target.
type Selections map[string]Rect

// StyleGeometry is the scan calibration data of one ballot style. Maps are
// nil for styles that were not rendered.
type StyleGeometry struct {
	GpUnitIds []string              `json:"GpUnitIds"`
	Bubbles   map[string]Selections `json:"bubbles"` // contest id -> selections
	Headers   map[string]Edges      `json:"headers"` // page number -> header box
}

// Export is the geometry document read by the ballot scanner. Coordinates are
// points with the origin at the bottom-left of the page.
type Export struct {
	DrawSettings layout.Config   `json:"draw_settings"`
	Session      string          `json:"session"`
	BsData       []StyleGeometry `json:"bsdata"`

	// Deprecated: per style copies of BsData[i].Bubbles and BsData[i].Headers.
	Bubbles []map[string]Selections `json:"bubbles"`
	Headers []map[string]Edges      `json:"headers"`

	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Export collects the geometry of every style rendered so far, one entry per
// ballot style in election order. Header boxes that differ between pages or
// styles are reported as diagnostics.
func (p *Printer) Export() *Export {
	ex := &Export{
		DrawSettings: p.cfg,
		Session:      p.session.String(),
	}
	for _, st := range p.styles {
		sg := StyleGeometry{GpUnitIds: st.GpUnitIDs}
		if res := p.results[st.Index]; res != nil {
			sg.Bubbles = bubbles(res.Geometry)
			sg.Headers = headers(res.Geometry)
			for _, d := range res.Diagnostics {
				ex.Diagnostics = append(ex.Diagnostics, fmt.Sprintf("%s page %d column %d block %s: %s",
					st, d.Page, d.Column, d.Block, d.Message))
			}
		}
		ex.BsData = append(ex.BsData, sg)
		ex.Bubbles = append(ex.Bubbles, sg.Bubbles)
		ex.Headers = append(ex.Headers, sg.Headers)
	}
	for _, msg := range checkHeaders(p.styles, ex.BsData) {
		p.log.Warn("Header geometry mismatch", zap.String("diagnostic", msg))
		ex.Diagnostics = append(ex.Diagnostics, msg)
	}
	return ex
}

// Write encodes the export as JSON.
func (e *Export) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("unable to encode geometry: %w", err)
	}
	return nil
}

func bubbles(g layout.Geometry) map[string]Selections {
	out := make(map[string]Selections, len(g.Targets))
	for contest, targets := range g.Targets {
		sels := make(Selections, len(targets))
		for id, b := range targets {
			sels[id] = Rect{b.Left, b.Bottom, b.Width, b.Height}
		}
		out[contest] = sels
	}
	return out
}

func headers(g layout.Geometry) map[string]Edges {
	out := make(map[string]Edges, len(g.Headers))
	for page, b := range g.Headers {
		out[strconv.Itoa(page)] = Edges{b.Left, b.Top(), b.Right(), b.Bottom}
	}
	return out
}

// checkHeaders compares every header box against the first one. The scanner
// assumes a single header geometry for the whole election.
func checkHeaders(styles []*Style, data []StyleGeometry) []string {
	var (
		out   []string
		first *Edges
		where string
	)
	for i, sg := range data {
		pages := make([]string, 0, len(sg.Headers))
		for page := range sg.Headers {
			pages = append(pages, page)
		}
		sort.Sort(natural.StringSlice(pages))
		for _, page := range pages {
			box := sg.Headers[page]
			if first == nil {
				first = &box
				where = fmt.Sprintf("%s page %s", styles[i], page)
				continue
			}
			if box != *first {
				out = append(out, fmt.Sprintf("%s page %s header %v differs from %v on %s",
					styles[i], page, box, *first, where))
			}
		}
	}
	return out
}
