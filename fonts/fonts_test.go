package fonts_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-fonts/liberation/liberationsansbold"

	"github.com/brianolson/ballotstudio/fonts"
)

func TestBuiltinFonts(t *testing.T) {
	reg, err := fonts.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if got := strings.Join(reg.Names(), ","); got != "Liberation Sans,Liberation Sans Bold" {
		t.Fatalf("names = %s", got)
	}
	for _, name := range reg.Names() {
		ratio, err := reg.CapHeight(name)
		if err != nil {
			t.Fatalf("cap height %s: %v", name, err)
		}
		// Liberation Sans capitals are 1409 of 2048 units tall.
		if ratio < 0.65 || ratio > 0.72 {
			t.Fatalf("%s cap height ratio %v out of range", name, ratio)
		}
	}
	if err := reg.Require("Liberation Sans", "Nope Sans"); !errors.Is(err, fonts.ErrUnknownFont) {
		t.Fatalf("expected ErrUnknownFont, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "bold.ttf")
	if err := os.WriteFile(good, liberationsansbold.TTF, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err := fonts.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	name, err := reg.LoadFile(good)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "Liberation Sans Bold" {
		t.Fatalf("name = %q", name)
	}

	bad := filepath.Join(dir, "notes.ttf")
	if err := os.WriteFile(bad, []byte("definitely not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fonts.Load(bad); !errors.Is(err, fonts.ErrNotAFont) {
		t.Fatalf("expected ErrNotAFont, got %v", err)
	}
	if _, err := fonts.Load(filepath.Join(dir, "missing.ttf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
