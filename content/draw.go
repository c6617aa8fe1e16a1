package content

import (
	"fmt"

	"github.com/brianolson/ballotstudio/layout"
)

const (
	separatorWidth = 0.25
	topBorder      = 3 // contest top rule
	bottomBorder   = 1 // left and bottom rule
)

// bubbleBox returns the mark target of a row whose text box starts at yTop.
// The capsule is centered on the cap height of the candidate font.
func bubbleBox(env *layout.Env, x, yTop float64) (layout.Box, error) {
	cfg := env.Config
	if env.Fonts == nil {
		return layout.Box{}, fmt.Errorf("no font metrics")
	}
	ratio, err := env.Fonts.CapHeight(cfg.Candidate.Font)
	if err != nil {
		return layout.Box{}, err
	}
	capHeight := ratio * cfg.Candidate.Size
	bh := min(cfg.BubbleMaxHeight, capHeight)
	return layout.Box{
		Left:   x + cfg.BubbleLeftPad,
		Bottom: yTop - cfg.Candidate.Size + (capHeight-bh)/2,
		Width:  cfg.BubbleWidth,
		Height: bh,
	}, nil
}

func drawBubble(env *layout.Env, s layout.Surface, selectionID string, x, yTop float64) (layout.Box, error) {
	b, err := bubbleBox(env, x, yTop)
	if err != nil {
		return b, err
	}
	marked := env.IsMarked(selectionID)
	s.SetStrokeColor(layout.Black)
	s.SetLineWidth(1)
	if marked {
		s.SetFillColor(layout.Black)
	}
	s.RoundRect(b.Left, b.Bottom, b.Width, b.Height, b.Height/2, true, marked)
	return b, nil
}

// drawSeparator draws the hairline under a selection with its ink resting on bottom.
func drawSeparator(s layout.Surface, x1, bottom, x2 float64) {
	s.SetStrokeColor(layout.Black)
	s.SetLineWidth(separatorWidth)
	y := bottom + separatorWidth/2
	s.Line(x1, y, x2, y)
}

// drawFrame draws the heavy top rule and the left and bottom rules of a block
// spanning yTop to bottom.
func drawFrame(s layout.Surface, x, yTop, bottom, width float64) {
	s.SetStrokeColor(layout.Black)
	s.SetLineWidth(topBorder)
	s.Line(x, yTop-topBorder/2.0, x+width, yTop-topBorder/2.0)
	s.SetLineWidth(bottomBorder)
	s.Polyline(
		layout.Point{X: x + bottomBorder/2.0, Y: yTop - topBorder/2.0},
		layout.Point{X: x + bottomBorder/2.0, Y: bottom + bottomBorder/2.0},
		layout.Point{X: x + width, Y: bottom + bottomBorder/2.0},
	)
}

// drawBand fills a full width background band.
func drawBand(s layout.Surface, c layout.Color, x, top, width, height float64) {
	s.SetFillColor(c)
	s.Rect(x, top-height, width, height, false, true)
	s.SetFillColor(layout.Black)
}
