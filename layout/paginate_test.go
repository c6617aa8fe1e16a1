package layout_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brianolson/ballotstudio/layout"
	"github.com/brianolson/ballotstudio/layout/layouttest"
)

// fixedBlock is a block of constant height that fills its box and exposes one target.
type fixedBlock struct {
	id string
	h  float64
}

func (b fixedBlock) ID() string { return b.id }

func (b fixedBlock) Height(*layout.Env, float64) (float64, error) { return b.h, nil }

func (b fixedBlock) Draw(_ *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	if layout.IsBreak(b.h) {
		return nil, nil
	}
	s.Rect(x, yTop-b.h, width, b.h, false, true)
	return layout.Targets{b.id + "-sel": {Left: x, Bottom: yTop - 10, Width: 5, Height: 5}}, nil
}

type errBlock struct{}

func (errBlock) ID() string                                   { return "broken" }
func (errBlock) Height(*layout.Env, float64) (float64, error) { return 0, errors.New("boom") }
func (errBlock) Draw(*layout.Env, layout.Surface, float64, float64, float64) (layout.Targets, error) {
	return nil, nil
}

func testEnv(columns int) *layout.Env {
	cfg := layout.DefaultConfig()
	cfg.Columns = columns
	cfg.PageSize = [2]float64{600, 400}
	cfg.PageMargin = 50 // 300pt of column height
	cfg.ColumnMargin = 10
	cfg.BlockOverlap = 0
	return &layout.Env{
		Config: &cfg,
		Text:   layout.NewTextMetrics(layouttest.NewTypesetter()),
		Fonts:  layouttest.Fonts(0.7),
	}
}

func blocks(heights ...float64) []layout.Block {
	out := make([]layout.Block, len(heights))
	for i, h := range heights {
		out[i] = fixedBlock{id: fmt.Sprintf("b%d", i), h: h}
	}
	return out
}

func TestPaginateSingleColumnFits(t *testing.T) {
	env := testEnv(2)
	rec := layouttest.NewRecorder()
	res, err := layout.Paginate(env, rec, blocks(100, 100), layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if res.Pages != 1 || rec.Pages != 1 {
		t.Fatalf("pages = %d (surface %d), want 1", res.Pages, rec.Pages)
	}
	if want := (500.0 - 10) / 2; res.ColumnWidth != want {
		t.Fatalf("column width = %v, want %v", res.ColumnWidth, want)
	}
	if p := res.Placements[1]; p.Column != 1 || p.YTop != 250 {
		t.Fatalf("second block placed at %+v", p)
	}
	if res.Geometry.TargetCount() != 2 {
		t.Fatalf("targets = %d, want 2", res.Geometry.TargetCount())
	}
}

func TestPaginateAdvancesColumnsAndPages(t *testing.T) {
	env := testEnv(3)
	// 120+120 fit a 300pt column, the third starts a new column.
	res, err := layout.Paginate(env, &layout.Discard{}, blocks(120, 120, 120, 120, 120, 120, 120), layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	want := [][2]int{{1, 1}, {1, 1}, {1, 2}, {1, 2}, {1, 3}, {1, 3}, {2, 1}}
	for i, p := range res.Placements {
		if p.Page != want[i][0] || p.Column != want[i][1] {
			t.Fatalf("block %d at page %d column %d, want %v", i, p.Page, p.Column, want[i])
		}
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	if x := res.Placements[2].X; x != 50+res.ColumnWidth+10 {
		t.Fatalf("column 2 x = %v", x)
	}
}

func TestPaginateBreaksDoNotConsumeSpace(t *testing.T) {
	env := testEnv(2)
	seq := []layout.Block{
		fixedBlock{id: "a", h: 50},
		fixedBlock{id: "col", h: layout.ColumnBreakHeight},
		fixedBlock{id: "b", h: 50},
		fixedBlock{id: "page", h: layout.PageBreakHeight},
		fixedBlock{id: "c", h: 50},
	}
	res, err := layout.Paginate(env, &layout.Discard{}, seq, layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(res.Placements) != 3 {
		t.Fatalf("placements = %d, want 3 (breaks are not placed)", len(res.Placements))
	}
	b, c := res.Placements[1], res.Placements[2]
	if b.Column != 2 || b.YTop != 350 {
		t.Fatalf("block after column break at %+v", b)
	}
	if c.Page != 2 || c.Column != 1 || c.YTop != 350 {
		t.Fatalf("block after page break at %+v", c)
	}
}

func TestPaginateColumnBreakInLastColumnStartsPage(t *testing.T) {
	env := testEnv(1)
	seq := []layout.Block{
		fixedBlock{id: "a", h: 50},
		fixedBlock{id: "col", h: layout.ColumnBreakHeight},
		fixedBlock{id: "b", h: 50},
	}
	res, err := layout.Paginate(env, &layout.Discard{}, seq, layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if res.Pages != 2 || res.Placements[1].Page != 2 {
		t.Fatalf("pages = %d, placement %+v", res.Pages, res.Placements[1])
	}
}

func TestPaginateOverflowIsDiagnosed(t *testing.T) {
	env := testEnv(2)
	res, err := layout.Paginate(env, &layout.Discard{}, blocks(100, 400), layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v, want one", res.Diagnostics)
	}
	// The tall block still moves out of a used column before overflowing.
	if p := res.Placements[1]; p.Column != 2 || p.YTop != 350 {
		t.Fatalf("overflowing block at %+v", p)
	}
	if d := res.Diagnostics[0]; d.Block != "b1" || d.Column != 2 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestPaginateBlockOverlapSharesBorders(t *testing.T) {
	env := testEnv(1)
	env.Config.BlockOverlap = 1
	res, err := layout.Paginate(env, &layout.Discard{}, blocks(100, 100), layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if got := res.Placements[1].YTop; got != 251 {
		t.Fatalf("second block top = %v, want 251", got)
	}
}

func TestPaginateIsDeterministic(t *testing.T) {
	env := testEnv(3)
	seq := blocks(80, 200, 30, 150, 290, 10, 120, 60, 250)
	a, err := layout.Paginate(env, &layout.Discard{}, seq, layout.Options{})
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	b, err := layout.Paginate(env, layouttest.NewRecorder(), seq, layout.Options{TotalPages: a.Pages})
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if err := layout.SameFlow(a, b); err != nil {
		t.Fatalf("passes differ: %v", err)
	}
}

func TestSameFlowReportsDifference(t *testing.T) {
	a := &layout.Result{Pages: 1, Placements: []layout.Placement{{Index: 0, Page: 1, Column: 1}}}
	b := &layout.Result{Pages: 1, Placements: []layout.Placement{{Index: 0, Page: 1, Column: 2}}}
	if err := layout.SameFlow(a, b); !errors.Is(err, layout.ErrUnstableLayout) {
		t.Fatalf("expected unstable layout, got %v", err)
	}
	b.Pages = 2
	if err := layout.SameFlow(a, b); !errors.Is(err, layout.ErrUnstableLayout) {
		t.Fatalf("expected unstable layout on page count, got %v", err)
	}
}

func TestPaginatePropagatesBlockErrors(t *testing.T) {
	env := testEnv(1)
	if _, err := layout.Paginate(env, &layout.Discard{}, []layout.Block{errBlock{}}, layout.Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPaginateRejectsBadConfig(t *testing.T) {
	env := testEnv(0)
	if _, err := layout.Paginate(env, &layout.Discard{}, nil, layout.Options{}); err == nil {
		t.Fatalf("expected config error")
	}
}

type headerDecorator struct {
	seen [][2]int
}

func (d *headerDecorator) Decorate(s layout.Surface, page, total int, area layout.Area) (layout.Decoration, error) {
	d.seen = append(d.seen, [2]int{page, total})
	hdr := layout.Box{Left: area.Left, Bottom: area.Top - 40, Width: area.Width(), Height: 40}
	s.Rect(hdr.Left, hdr.Bottom, hdr.Width, hdr.Height, true, false)
	area.Top -= 40
	return layout.Decoration{Content: area, Header: &hdr}, nil
}

func TestPaginateDecoratorNarrowsContent(t *testing.T) {
	env := testEnv(1)
	dec := &headerDecorator{}
	res, err := layout.Paginate(env, &layout.Discard{}, blocks(200, 200), layout.Options{TotalPages: 2, Decorator: dec})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
	if len(res.Geometry.Headers) != 2 {
		t.Fatalf("headers = %v", res.Geometry.Headers)
	}
	if got := res.Placements[0].YTop; got != 310 {
		t.Fatalf("first block top = %v, want 310", got)
	}
	if dec.seen[1] != [2]int{2, 2} {
		t.Fatalf("decorator calls = %v", dec.seen)
	}
}

func TestTextMetricsMeasureAndDraw(t *testing.T) {
	env := testEnv(1)
	st := layout.TextStyle{Font: "sans", Size: 10, Leading: 12, Indent: 5}
	// 5pt per rune, 55pt usable: "aaaa bbbb" is 45pt, "cccc" wraps.
	w, h, err := env.Text.Measure("aaaa bbbb cccc", st, 60)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if h != 24 || w != 50 {
		t.Fatalf("measure = (%v, %v), want (50, 24)", w, h)
	}
	rec := layouttest.NewRecorder()
	rec.BeginExtent()
	dh, err := env.Text.DrawParagraph(rec, "aaaa bbbb cccc", st, 0, 100, 60)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	ink, _ := rec.Extent()
	if dh != h || ink.Top > 100 || ink.Bottom < 100-h {
		t.Fatalf("drawn height %v ink %+v", dh, ink)
	}
	if lines, _ := env.Text.Lines("", st, 60); lines != nil {
		t.Fatalf("empty text produced lines")
	}
}
