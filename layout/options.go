package layout

import (
	"image"

	"go.uber.org/zap"
)

// Typesetter breaks text into lines for a style and width constraint. Widths are points.
type Typesetter interface {
	LayoutLines(content string, width float64, style TextStyle) ([]TextLine, error)
	StringWidth(s string, font string, size float64) (float64, error)
}

// FontMetrics answers font questions that are not about wrapping.
type FontMetrics interface {
	// CapHeight returns the cap height per point of font size.
	CapHeight(font string) (float64, error)
}

// ImageSource provides the illustrations used by instruction blocks.
type ImageSource interface {
	Image(name string) (image.Image, error)
}

// Marker tells whether a selection should be drawn filled.
type Marker interface {
	IsMarked(selectionID string) bool
}

// Env is everything a block needs to size and draw itself. It is built once
// per ballot style render and shared by both passes.
type Env struct {
	Config *Config
	Text   *TextMetrics
	Fonts  FontMetrics
	Images ImageSource
	Marks  Marker
	Log    *zap.Logger
}

// IsMarked is false when there is no mark overlay.
func (e *Env) IsMarked(selectionID string) bool {
	return e.Marks != nil && e.Marks.IsMarked(selectionID)
}

// Logger never returns nil.
func (e *Env) Logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Options configures one pagination pass.
type Options struct {
	// TotalPages is the page count learned by a previous pass, 0 when unknown.
	TotalPages int
	// Decorator draws per-page furniture and narrows the content area, may be nil.
	Decorator Decorator
}

// Decoration is what a decorator leaves on a page.
type Decoration struct {
	Content Area // area left for flowed blocks
	Header  *Box // page header box, nil when the page has none
}

// Decorator draws everything a page carries besides flowed content.
type Decorator interface {
	Decorate(s Surface, page, totalPages int, area Area) (Decoration, error)
}
