// Package fonts loads font files and answers the metric questions layout asks
// outside of text wrapping.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	ErrUnknownFont = errors.New("unknown font")
	ErrNotAFont    = errors.New("not a TrueType or OpenType font")
)

// Font is a parsed font file.
type Font struct {
	Name string // full name, e.g. "Liberation Sans Bold"
	Data []byte
	// CapHeightPerPt is the cap height as a fraction of the font size.
	CapHeightPerPt float64
}

// capLetters are the capitals measured for cap height. Q has a descender.
const capLetters = "ABCDEFGHIJKLMNOPRSTUVWXYZ"

// Parse reads the font name and measures its cap height.
func Parse(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font: %w", err)
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFull)
	if err != nil {
		return nil, fmt.Errorf("unable to read font name: %w", err)
	}
	ratio, err := capHeight(f, &buf)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", name, err)
	}
	return &Font{Name: name, Data: data, CapHeightPerPt: ratio}, nil
}

// capHeight takes the median top and the median bottom of the capital
// letters, so a single odd glyph does not move the result.
func capHeight(f *sfnt.Font, buf *sfnt.Buffer) (float64, error) {
	upem := f.UnitsPerEm()
	if upem == 0 {
		return 0, fmt.Errorf("zero units per em")
	}
	ppem := fixed.I(int(upem))
	var tops, bottoms []float64
	for _, r := range capLetters {
		gi, err := f.GlyphIndex(buf, r)
		if err != nil {
			return 0, err
		}
		if gi == 0 {
			continue
		}
		b, _, err := f.GlyphBounds(buf, gi, ppem, font.HintingNone)
		if err != nil {
			return 0, err
		}
		// y grows downwards in sfnt bounds
		tops = append(tops, -float64(b.Min.Y)/64)
		bottoms = append(bottoms, -float64(b.Max.Y)/64)
	}
	if len(tops) == 0 {
		return 0, fmt.Errorf("no capital letters")
	}
	return (median(tops) - median(bottoms)) / float64(upem), nil
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Load reads a font file.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read font %s: %w", path, err)
	}
	if !filetype.Is(data, "ttf") && !filetype.Is(data, "otf") {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAFont)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Registry is the set of fonts of one render session, keyed by full name.
type Registry struct {
	byName map[string]*Font
}

// NewRegistry returns a registry holding the built-in fonts.
func NewRegistry() (*Registry, error) {
	r := &Registry{byName: make(map[string]*Font)}
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, f := range builtin {
		r.Add(f)
	}
	return r, nil
}

// Add registers a font, replacing one of the same name.
func (r *Registry) Add(f *Font) { r.byName[f.Name] = f }

// LoadFile loads and registers a font file, returning its name.
func (r *Registry) LoadFile(path string) (string, error) {
	f, err := Load(path)
	if err != nil {
		return "", err
	}
	r.Add(f)
	return f.Name, nil
}

func (r *Registry) Get(name string) (*Font, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	return f, nil
}

// CapHeight returns the cap height per point of a registered font.
func (r *Registry) CapHeight(name string) (float64, error) {
	f, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	return f.CapHeightPerPt, nil
}

// Names lists registered fonts in natural order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Require checks that every named font is registered.
func (r *Registry) Require(names ...string) error {
	for _, n := range names {
		if _, err := r.Get(n); err != nil {
			return err
		}
	}
	return nil
}
