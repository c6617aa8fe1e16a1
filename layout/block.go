package layout

// Sentinel heights reported by forced break markers. They are flow directives,
// never real content height, and must not be added to a running position.
const (
	ColumnBreakHeight = 999999997
	PageBreakHeight   = 999999999
)

// IsBreak reports whether a height is one of the forced break sentinels.
func IsBreak(h float64) bool {
	return h == ColumnBreakHeight || h == PageBreakHeight
}

// Targets maps selection identifiers to their scan target boxes.
type Targets map[string]Box

// Block is a drawable piece of ballot content.
//
// Height must be a pure function of the width: it is queried before drawing
// and again on the second pass. Draw places the block with its top-left
// corner at (x, yTop), must not ink outside the box implied by Height for the
// same width, and returns the scan targets it drew, nil when it has none.
type Block interface {
	ID() string
	Height(env *Env, width float64) (float64, error)
	Draw(env *Env, s Surface, x, yTop, width float64) (Targets, error)
}
