// Package assets provides the illustrations drawn by the instructions block.
// Built-in images are SVG files rasterized at load time; any of them can be
// replaced by an image file.
package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterWidth is the pixel width built-in SVGs are rasterized to.
const RasterWidth = 1600

var (
	ErrUnknownImage = errors.New("unknown image")
	ErrNotAnImage   = errors.New("not an image")
)

//go:embed builtin/*.svg
var builtinFS embed.FS

// Set is the image source of a render session. It is filled at startup so a
// missing or broken asset fails before any page is drawn.
type Set struct {
	images map[string]image.Image
}

// New loads the built-in images, then the overrides (name -> file path).
func New(overrides map[string]string) (*Set, error) {
	s := &Set{images: make(map[string]image.Image)}
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return nil, err
		}
		img, err := RasterizeSVG(data, RasterWidth)
		if err != nil {
			return nil, fmt.Errorf("built-in image %s: %w", e.Name(), err)
		}
		s.images[strings.TrimSuffix(e.Name(), ".svg")] = img
	}
	for name, p := range overrides {
		if _, ok := s.images[name]; !ok {
			return nil, fmt.Errorf("override %s: %w", name, ErrUnknownImage)
		}
		img, err := LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", name, err)
		}
		s.images[name] = img
	}
	return s, nil
}

// Image implements layout.ImageSource.
func (s *Set) Image(name string) (image.Image, error) {
	img, ok := s.images[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownImage, name)
	}
	return img, nil
}

// Names lists the available images.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.images))
	for n := range s.images {
		out = append(out, n)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}

// LoadFile reads a raster image or an SVG file.
func LoadFile(p string) (image.Image, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("unable to read image %s: %w", p, err)
	}
	if strings.EqualFold(filepath.Ext(p), ".svg") {
		return RasterizeSVG(data, RasterWidth)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotAnImage)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image %s: %w", p, err)
	}
	return img, nil
}

// RasterizeSVG renders an SVG on white at the given pixel width, keeping the
// aspect ratio of its view box.
func RasterizeSVG(data []byte, width int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has no view box size")
	}
	w := max(width, 1)
	h := max(int(math.Round(float64(w)*vh/vw)), 1)
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}
