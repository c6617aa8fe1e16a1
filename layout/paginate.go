package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnstableLayout is returned when two passes over the same blocks disagree.
var ErrUnstableLayout = errors.New("layout passes disagree")

// Placement records where one block was drawn.
type Placement struct {
	Index  int     `json:"index"` // position in the block sequence
	ID     string  `json:"id"`
	Page   int     `json:"page"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	YTop   float64 `json:"yTop"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Diagnostic is a non-fatal layout anomaly.
type Diagnostic struct {
	Page    int    `json:"page"`
	Column  int    `json:"column"`
	Block   string `json:"block"`
	Message string `json:"message"`
}

// Geometry is the scan calibration data captured during one pass.
type Geometry struct {
	// Targets maps block (contest) id -> selection id -> mark target box.
	Targets map[string]Targets `json:"targets"`
	// Headers maps page number -> page header box.
	Headers map[int]Box `json:"headers"`
}

func newGeometry() Geometry {
	return Geometry{Targets: make(map[string]Targets), Headers: make(map[int]Box)}
}

func (g Geometry) addTargets(id string, t Targets) {
	if len(t) == 0 {
		return
	}
	dst, ok := g.Targets[id]
	if !ok {
		dst = make(Targets, len(t))
		g.Targets[id] = dst
	}
	for sel, box := range t {
		dst[sel] = box
	}
}

// TargetCount returns the number of captured selection boxes.
func (g Geometry) TargetCount() int {
	n := 0
	for _, t := range g.Targets {
		n += len(t)
	}
	return n
}

// Result is the outcome of one pagination pass.
type Result struct {
	Pages       int          `json:"pages"`
	ColumnWidth float64      `json:"columnWidth"`
	Placements  []Placement  `json:"placements"`
	Geometry    Geometry     `json:"geometry"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// flow is the cursor of a single pass.
type flow struct {
	env    *Env
	s      Surface
	opts   Options
	log    *zap.Logger
	res    *Result
	page   int
	column int
	area   Area
	colW   float64
	x, y   float64
	used   bool // something was drawn in the current column
}

// Paginate flows blocks top to bottom through the columns of as many pages as
// needed, drawing them on s. It is a pure function of its inputs: calling it
// twice with the same blocks and configuration yields the same breaks. Blocks
// are never split; one taller than a column overflows the bottom of the
// column it starts in and is reported as a diagnostic.
func Paginate(env *Env, s Surface, blocks []Block, opts Options) (*Result, error) {
	cfg := env.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &flow{
		env:  env,
		s:    s,
		opts: opts,
		log:  env.Logger(),
		res:  &Result{Geometry: newGeometry()},
	}
	if err := f.startPage(1); err != nil {
		return nil, err
	}
	cols := float64(cfg.Columns)
	f.colW = (f.area.Width() - cfg.ColumnMargin*(cols-1)) / cols
	f.res.ColumnWidth = f.colW

	for i, b := range blocks {
		h, err := b.Height(env, f.colW)
		if err != nil {
			return nil, fmt.Errorf("unable to size block %d (%s): %w", i, b.ID(), err)
		}
		switch h {
		case PageBreakHeight:
			if err := f.newPage(); err != nil {
				return nil, err
			}
			continue
		case ColumnBreakHeight:
			if err := f.nextColumn(); err != nil {
				return nil, err
			}
			continue
		}
		if f.y-h < f.area.Bottom && f.used {
			if err := f.nextColumn(); err != nil {
				return nil, err
			}
		}
		if f.y-h < f.area.Bottom {
			d := Diagnostic{
				Page:    f.page,
				Column:  f.column,
				Block:   b.ID(),
				Message: fmt.Sprintf("block height %.1fpt exceeds column space %.1fpt", h, f.y-f.area.Bottom),
			}
			f.res.Diagnostics = append(f.res.Diagnostics, d)
			f.log.Warn("Block overflows column", zap.String("block", d.Block), zap.Int("page", d.Page),
				zap.Int("column", d.Column), zap.Float64("height", h))
		}
		targets, err := b.Draw(env, s, f.x, f.y, f.colW)
		if err != nil {
			return nil, fmt.Errorf("unable to draw block %d (%s): %w", i, b.ID(), err)
		}
		f.res.Placements = append(f.res.Placements, Placement{
			Index:  i,
			ID:     b.ID(),
			Page:   f.page,
			Column: f.column,
			X:      f.x,
			YTop:   f.y,
			Width:  f.colW,
			Height: h,
		})
		f.res.Geometry.addTargets(b.ID(), targets)
		f.y -= h
		f.y += cfg.BlockOverlap
		f.used = true
	}
	if err := s.ShowPage(); err != nil {
		return nil, err
	}
	f.res.Pages = f.page
	return f.res, nil
}

func (f *flow) startPage(page int) error {
	f.page = page
	area := f.env.Config.ContentArea()
	dec := Decoration{Content: area}
	if f.opts.Decorator != nil {
		var err error
		if dec, err = f.opts.Decorator.Decorate(f.s, page, f.opts.TotalPages, area); err != nil {
			return fmt.Errorf("unable to decorate page %d: %w", page, err)
		}
	}
	if dec.Header != nil {
		f.res.Geometry.Headers[page] = *dec.Header
	}
	f.area = dec.Content
	f.column = 1
	f.x = f.area.Left
	f.y = f.area.Top
	f.used = false
	return nil
}

func (f *flow) newPage() error {
	if err := f.s.ShowPage(); err != nil {
		return err
	}
	return f.startPage(f.page + 1)
}

func (f *flow) nextColumn() error {
	if f.column >= f.env.Config.Columns {
		return f.newPage()
	}
	f.column++
	f.x += f.colW + f.env.Config.ColumnMargin
	f.y = f.area.Top
	f.used = false
	return nil
}

// SameFlow checks that two passes placed the same blocks on the same pages and columns.
func SameFlow(a, b *Result) error {
	if a.Pages != b.Pages {
		return fmt.Errorf("%w: %d pages vs %d pages", ErrUnstableLayout, a.Pages, b.Pages)
	}
	if len(a.Placements) != len(b.Placements) {
		return fmt.Errorf("%w: %d placements vs %d", ErrUnstableLayout, len(a.Placements), len(b.Placements))
	}
	for i := range a.Placements {
		pa, pb := a.Placements[i], b.Placements[i]
		if pa.Index != pb.Index || pa.Page != pb.Page || pa.Column != pb.Column {
			return fmt.Errorf("%w: block %d (%s) at page %d column %d vs page %d column %d",
				ErrUnstableLayout, pa.Index, pa.ID, pa.Page, pa.Column, pb.Page, pb.Column)
		}
	}
	return nil
}
