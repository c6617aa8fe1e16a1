package content

import (
	"fmt"

	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/layout"
)

// Header names with a meaning of their own.
const (
	HeaderInstructions = "Instructions"
	HeaderColumnBreak  = "ColumnBreak"
	HeaderPageBreak    = "PageBreak"
)

// Illustrations used by the instructions block.
const (
	ImageFilledBubble = "filled-bubble"
	ImageWriteIn      = "write-in"
)

// Instruction texts.
const (
	instructionsTitle = "Instructions"
	instruction1      = "Fill in the oval to the left of the name of your choice. You must blacken the oval completely, and do not make any marks outside of the oval. You do not have to vote in every race."
	warning1          = "Do not cross out or erase, or your vote may not count. If you make a mistake or a stray mark, ask for a new ballot from the poll workers."
	instruction2      = "To add a candidate, fill in the oval to the left of “or write-in” and print the name clearly on the dotted line."
)

func newHeader(rec *election.Record) (layout.Block, error) {
	name, err := rec.RequiredStr("Name")
	if err != nil {
		return nil, err
	}
	switch name {
	case HeaderInstructions:
		return &Instructions{id: rec.ID}, nil
	case HeaderColumnBreak:
		return &Break{id: rec.ID}, nil
	case HeaderPageBreak:
		return &Break{id: rec.ID, page: true}, nil
	default:
		return &SectionHeading{id: rec.ID, text: name}, nil
	}
}

// Break forces the flow to the next column or page. It draws nothing.
type Break struct {
	id   string
	page bool
}

func (b *Break) ID() string { return b.id }

// Page reports whether this is a page break.
func (b *Break) Page() bool { return b.page }

func (b *Break) Height(*layout.Env, float64) (float64, error) {
	if b.page {
		return layout.PageBreakHeight, nil
	}
	return layout.ColumnBreakHeight, nil
}

func (b *Break) Draw(*layout.Env, layout.Surface, float64, float64, float64) (layout.Targets, error) {
	return nil, nil
}

// Instructions is the fixed voter instruction block with its two illustrations.
type Instructions struct {
	id string
}

func (in *Instructions) ID() string { return in.id }

// Height lays the block out on a surface that keeps nothing.
func (in *Instructions) Height(env *layout.Env, width float64) (float64, error) {
	return in.layout(env, &layout.Discard{}, 0, 0, width)
}

func (in *Instructions) Draw(env *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	_, err := in.layout(env, s, x, yTop, width)
	return nil, err
}

// layout draws the block and returns its height, so the measurement and the
// drawing can not drift apart.
func (in *Instructions) layout(env *layout.Env, s layout.Surface, x, yTop, width float64) (float64, error) {
	cfg := env.Config
	if env.Images == nil {
		return 0, fmt.Errorf("instructions: no image source")
	}
	pos := yTop - topBorder

	drawBand(s, cfg.TitleBackground, x, pos, width, cfg.Title.Leading)
	s.Text(x+cfg.Title.Indent, pos-cfg.Title.Size, instructionsTitle, cfg.Title.Font, cfg.Title.Size, layout.AlignLeft)
	pos -= cfg.Title.Leading

	textX := x + cfg.Title.Indent
	avail := width - cfg.Title.Indent

	image := func(name string) error {
		img, err := env.Images.Image(name)
		if err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
		b := img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return fmt.Errorf("instructions: image %s is empty", name)
		}
		h := float64(b.Dy()) * avail / float64(b.Dx())
		s.Image(img, textX, pos-h, avail, h)
		pos -= h
		return nil
	}
	text := func(t string) error {
		h, err := env.Text.DrawParagraph(s, t, cfg.Instruction, textX, pos, avail)
		pos -= h
		return err
	}

	if err := image(ImageFilledBubble); err != nil {
		return 0, err
	}
	if err := text(instruction1); err != nil {
		return 0, err
	}
	if err := text(warning1); err != nil {
		return 0, err
	}
	pos -= cfg.Candsub.Leading
	if err := image(ImageWriteIn); err != nil {
		return 0, err
	}
	if err := text(instruction2); err != nil {
		return 0, err
	}
	pos -= cfg.ContestPad

	drawFrame(s, x, yTop, pos-bottomBorder, width)
	return yTop - (pos - bottomBorder), nil
}

// SectionHeading is a header with a name of no special meaning: a title band
// carrying the name.
type SectionHeading struct {
	id   string
	text string
}

func (sh *SectionHeading) ID() string   { return sh.id }
func (sh *SectionHeading) Text() string { return sh.text }

func (sh *SectionHeading) Height(env *layout.Env, width float64) (float64, error) {
	h, err := env.Text.Height(sh.text, env.Config.Title, width)
	if err != nil {
		return 0, err
	}
	return topBorder + h + bottomBorder, nil
}

func (sh *SectionHeading) Draw(env *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	cfg := env.Config
	pos := yTop - topBorder
	h, err := env.Text.Height(sh.text, cfg.Title, width)
	if err != nil {
		return nil, err
	}
	drawBand(s, cfg.TitleBackground, x, pos, width, h)
	if _, err := env.Text.DrawParagraph(s, sh.text, cfg.Title, x, pos, width); err != nil {
		return nil, err
	}
	drawFrame(s, x, yTop, pos-h-bottomBorder, width)
	return nil, nil
}
