package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianolson/ballotstudio/layout"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("Default config version = %d, want 1", cfg.Version)
	}

	got, err := cfg.LayoutSettings()
	if err != nil {
		t.Fatalf("LayoutSettings() error = %v", err)
	}
	want := layout.DefaultConfig()
	if got.PageSize != want.PageSize || got.Columns != want.Columns || got.DebugPageOutline != want.DebugPageOutline {
		t.Fatalf("page settings differ: %+v", got)
	}
	if got.TitleBackground != want.TitleBackground || got.SubtitleBackground != want.SubtitleBackground {
		t.Fatalf("colors differ: %v %v", got.TitleBackground, got.SubtitleBackground)
	}
	for name, pair := range map[string][2]float64{
		"page margin":   {got.PageMargin, want.PageMargin},
		"column margin": {got.ColumnMargin, want.ColumnMargin},
		"header pad":    {got.HeaderPad, want.HeaderPad},
		"bubble width":  {got.BubbleWidth, want.BubbleWidth},
		"bubble height": {got.BubbleMaxHeight, want.BubbleMaxHeight},
		"write-in":      {got.WriteInHeight, want.WriteInHeight},
		"contest pad":   {got.ContestPad, want.ContestPad},
		"overlap":       {got.BlockOverlap, want.BlockOverlap},
	} {
		if !near(pair[0], pair[1]) {
			t.Fatalf("%s = %g, want %g", name, pair[0], pair[1])
		}
	}
	for name, pair := range map[string][2]layout.TextStyle{
		"header":    {got.Header, want.Header},
		"title":     {got.Title, want.Title},
		"summary":   {got.Summary, want.Summary},
		"candidate": {got.Candidate, want.Candidate},
		"timestamp": {got.Timestamp.Style, want.Timestamp.Style},
	} {
		g, w := pair[0], pair[1]
		if g.Font != w.Font || !near(g.Size, w.Size) || !near(g.Leading, w.Leading) || !near(g.Indent, w.Indent) {
			t.Fatalf("style %s = %+v, want %+v", name, g, w)
		}
	}

	tmpl, err := cfg.HeaderTemplate()
	if err != nil {
		t.Fatalf("HeaderTemplate() error = %v", err)
	}
	if tmpl.String() != "{TYPE}, {DATE}\n{PLACES} page {PAGE} of {PAGES}" {
		t.Fatalf("header template = %q", tmpl.String())
	}
	if got := strings.Join(cfg.StyleFonts(), ","); got != "Liberation Sans Bold,Liberation Sans" {
		t.Fatalf("StyleFonts() = %s", got)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
layout:
  page_size: 8.5in x 14in
  columns: 2
  timestamp: false
  styles:
    candidate: { font: Liberation Sans Bold, size: 10pt, leading: 1.2x }
header:
  template: "{ELECTION} {{draft}} {PAGE}/{PAGES}"
logging:
  console:
    level: none
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	lc, err := cfg.LayoutSettings()
	if err != nil {
		t.Fatalf("LayoutSettings() error = %v", err)
	}
	if lc.PageSize != layout.Legal {
		t.Fatalf("PageSize = %v, want legal", lc.PageSize)
	}
	if lc.Columns != 2 || lc.Timestamp.Enabled {
		t.Fatalf("file values not applied: %+v", lc)
	}
	if !near(lc.Candidate.Leading, 12) {
		t.Fatalf("candidate leading = %g, want 12", lc.Candidate.Leading)
	}
	// untouched values keep their defaults
	if !near(lc.PageMargin, 36) || lc.Title.Font != "Liberation Sans Bold" {
		t.Fatalf("defaults lost: margin %g title %+v", lc.PageMargin, lc.Title)
	}
	tmpl, err := cfg.HeaderTemplate()
	if err != nil {
		t.Fatalf("HeaderTemplate() error = %v", err)
	}
	if got := strings.Join(tmpl.Names(), ","); got != "ELECTION,PAGE,PAGES" {
		t.Fatalf("template names = %s", got)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	for name, content := range map[string]string{
		"unknown field": "version: 1\nlayout:\n  colums: 2\n",
		"bad version":   "version: 2\n",
		"bad level":     "version: 1\nlogging:\n  console:\n    level: loud\n",
	} {
		p := filepath.Join(tmpDir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfiguration(p); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadConfiguration(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLayoutSettingsReportsEveryBadField(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Layout.PageMargin = "half an inch"
	cfg.Layout.Styles.Title.Leading = "wide"
	cfg.Layout.TitleBackground = "grey"
	_, err = cfg.LayoutSettings()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, field := range []string{"page_margin", "styles.title.leading", "title_background"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error does not mention %s: %v", field, err)
		}
	}

	cfg.Layout.PageMargin = "5in"
	cfg.Layout.Styles.Title.Leading = "1.4x"
	cfg.Layout.TitleBackground = "#ccc"
	if _, err := cfg.LayoutSettings(); err == nil {
		t.Fatalf("expected error for margins leaving no content area")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	p := filepath.Join(t.TempDir(), "dump.yaml")
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	again, err := LoadConfiguration(p)
	if err != nil {
		t.Fatalf("reload of dumped configuration: %v", err)
	}
	if again.Header.Template != cfg.Header.Template || again.Layout.Columns != cfg.Layout.Columns {
		t.Fatalf("dumped configuration differs")
	}
}

func TestLoggerToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "ballotstudio.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("Layout pass done")
	_ = log.Sync()
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "Layout pass done") {
		t.Fatalf("log file misses entry: %q", data)
	}

	conf.FileLogger.Destination = filepath.Join(t.TempDir(), "missing", "dir", "x.log")
	if _, err := conf.Prepare(); err == nil {
		t.Fatalf("expected error for unreachable destination")
	}
}
