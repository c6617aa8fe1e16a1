package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/brianolson/ballotstudio/fonts"
	"github.com/brianolson/ballotstudio/layout"
	"github.com/brianolson/ballotstudio/renderer"
)

// Renderer measures and draws text via github.com/tdewolff/canvas using the
// fonts of a registry.
type Renderer struct {
	fonts *fonts.Registry

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Surface    = (*Document)(nil)
)

// NewRenderer creates a renderer drawing with the registered fonts.
func NewRenderer(reg *fonts.Registry) *Renderer {
	return &Renderer{
		fonts:        reg,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

func (r *Renderer) fontFamily(name string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[name]; ok {
		return family, nil
	}
	if r.fonts == nil {
		return nil, fmt.Errorf("no fonts registered")
	}
	f, err := r.fonts.Get(name)
	if err != nil {
		return nil, err
	}
	// every font file is its own family, bold faces are picked by name
	family := canvas.NewFontFamily(f.Name)
	if err := family.LoadFont(f.Data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("unable to load font %s: %w", f.Name, err)
	}
	r.fontFamilies[name] = family
	return family, nil
}

func (r *Renderer) fontFace(name string, size float64, col layout.Color) (*canvas.FontFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("bad font size %g", size)
	}
	family, err := r.fontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

// StringWidth implements layout.Typesetter.
func (r *Renderer) StringWidth(s string, font string, size float64) (float64, error) {
	face, err := r.fontFace(font, size, layout.Black)
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(s)), nil
}

// LayoutLines implements layout.Typesetter with a greedy wrap. Lines break at
// whitespace, words wider than the limit are split, "\n" forces a break.
func (r *Renderer) LayoutLines(content string, width float64, style layout.TextStyle) ([]layout.TextLine, error) {
	face, err := r.fontFace(style.Font, style.Size, layout.Black)
	if err != nil {
		return nil, err
	}
	// canvas measures in mm
	measure := func(s string) float64 { return toPt(face.TextWidth(s)) }
	return greedyWrapTokens(content, width, measure), nil
}

// NewDocument starts an empty document of the given page size.
func (r *Renderer) NewDocument(width, height float64) renderer.Document {
	return &Document{r: r, width: width, height: height, lineWidth: 1}
}

// Document collects canvas pages and writes them as one PDF.
type Document struct {
	r             *Renderer
	width, height float64

	pages []*canvas.Canvas
	cur   *canvas.Canvas
	ctx   *canvas.Context

	stroke, fill layout.Color
	lineWidth    float64
	dash         []float64

	// first drawing error, reported by ShowPage
	err error
}

func (d *Document) context() *canvas.Context {
	if d.ctx == nil {
		d.cur = canvas.New(toMm(d.width), toMm(d.height))
		d.ctx = canvas.NewContext(d.cur)
		d.ctx.SetStrokeCapper(canvas.ButtCap)
	}
	return d.ctx
}

func (d *Document) SetStrokeColor(c layout.Color) { d.stroke = c }
func (d *Document) SetFillColor(c layout.Color)   { d.fill = c }
func (d *Document) SetLineWidth(w float64)        { d.lineWidth = w }

func (d *Document) SetDash(pattern ...float64) {
	d.dash = d.dash[:0]
	for _, p := range pattern {
		d.dash = append(d.dash, toMm(p))
	}
}

func (d *Document) paint(stroke, fill bool) *canvas.Context {
	ctx := d.context()
	if fill {
		ctx.SetFillColor(colorFromLayout(d.fill))
	} else {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if stroke {
		ctx.SetStrokeColor(colorFromLayout(d.stroke))
		ctx.SetStrokeWidth(toMm(d.lineWidth))
		ctx.SetDashes(0, d.dash...)
	} else {
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	}
	return ctx
}

func (d *Document) Rect(x, y, w, h float64, stroke, fill bool) {
	ctx := d.paint(stroke, fill)
	ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

func (d *Document) RoundRect(x, y, w, h, radius float64, stroke, fill bool) {
	ctx := d.paint(stroke, fill)
	ctx.DrawPath(toMm(x), toMm(y), canvas.RoundedRectangle(toMm(w), toMm(h), toMm(radius)))
}

func (d *Document) Line(x1, y1, x2, y2 float64) {
	d.Polyline(layout.Point{X: x1, Y: y1}, layout.Point{X: x2, Y: y2})
}

func (d *Document) Polyline(points ...layout.Point) {
	if len(points) < 2 {
		return
	}
	p := &canvas.Path{}
	p.MoveTo(toMm(points[0].X), toMm(points[0].Y))
	for _, pt := range points[1:] {
		p.LineTo(toMm(pt.X), toMm(pt.Y))
	}
	ctx := d.paint(true, false)
	ctx.DrawPath(0, 0, p)
}

// Text draws s with its baseline at the given height. x is the left edge,
// the right edge or the center depending on align.
func (d *Document) Text(x, baseline float64, s string, font string, size float64, align layout.Align) {
	face, err := d.r.fontFace(font, size, d.fill)
	if err != nil {
		if d.err == nil {
			d.err = fmt.Errorf("unable to draw %q: %w", s, err)
		}
		return
	}
	var textAlign canvas.TextAlign
	switch align {
	case layout.AlignRight:
		textAlign = canvas.Right
	case layout.AlignCenter:
		textAlign = canvas.Center
	default:
		textAlign = canvas.Left
	}
	d.context().DrawText(toMm(x), toMm(baseline), canvas.NewTextLine(face, s, textAlign))
}

// Image draws img scaled to width w with its bottom-left corner at (x, y).
func (d *Document) Image(img image.Image, x, y, w, _ float64) {
	px := img.Bounds().Dx()
	if px <= 0 || w <= 0 {
		return
	}
	dpmm := float64(px) / toMm(w)
	d.context().DrawImage(toMm(x), toMm(y), img, canvas.DPMM(dpmm))
}

// ShowPage implements layout.Surface.
func (d *Document) ShowPage() error {
	if d.err != nil {
		return d.err
	}
	d.context()
	d.pages = append(d.pages, d.cur)
	d.cur, d.ctx = nil, nil
	return nil
}

func (d *Document) Pages() int { return len(d.pages) }

// Write renders the finished pages into a PDF.
func (d *Document) Write(w io.Writer, info renderer.DocumentInfo) error {
	if d.err != nil {
		return d.err
	}
	if len(d.pages) == 0 {
		return fmt.Errorf("document has no pages")
	}
	writer := pdf.New(w, toMm(d.width), toMm(d.height), nil)
	writer.SetInfo(info.Title, info.Subject, strings.Join(info.Keywords, ", "), info.Author, info.Creator)
	for i, c := range d.pages {
		if i > 0 {
			writer.NewPage(toMm(d.width), toMm(d.height))
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("unable to write PDF: %w", err)
	}
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func toPt(mm float64) float64 { return mm * layout.MmToPt }
func toMm(pt float64) float64 { return pt * layout.PtToMm }

func greedyWrapTokens(content string, width float64, measure func(string) float64) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		lineStr := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		builder.Reset()
		currentWidth = 0
		if lineStr == "" {
			if force {
				lines = append(lines, layout.TextLine{Content: "", Width: 0})
			}
			return
		}
		lines = append(lines, layout.TextLine{
			Content: lineStr,
			Width:   measure(lineStr),
		})
	}

	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += measure(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		// a wrapped line never starts with whitespace
		if builder.Len() == 0 && isSpaceToken(token) {
			continue
		}

		tokenWidth := measure(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit && !isSpaceToken(token) {
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth > limit {
				emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, measure) {
			chunkWidth := measure(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
			if currentWidth > limit {
				emit(false)
			}
		}
	}

	emit(true)
	return lines
}

func isSpaceToken(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, measure func(string) float64) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if measure(builder.String()) > limit && utf8.RuneCountInString(builder.String()) > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
