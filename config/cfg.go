// Package config loads the YAML configuration of the ballot renderer.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"github.com/brianolson/ballotstudio/headertmpl"
	"github.com/brianolson/ballotstudio/layout"
)

// AppName names the program in logs and document metadata.
const AppName = "ballotstudio"

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TextStyleConfig struct {
		Font    string `yaml:"font" validate:"required"`
		Size    string `yaml:"size" validate:"required"`
		Leading string `yaml:"leading" validate:"required"`
		Indent  string `yaml:"indent,omitempty"`
	}

	StylesConfig struct {
		Header      TextStyleConfig `yaml:"header"`
		Title       TextStyleConfig `yaml:"title"`
		Subtitle    TextStyleConfig `yaml:"subtitle"`
		Summary     TextStyleConfig `yaml:"summary"`
		Candidate   TextStyleConfig `yaml:"candidate"`
		Candsub     TextStyleConfig `yaml:"candsub"`
		Instruction TextStyleConfig `yaml:"instruction"`
		Timestamp   TextStyleConfig `yaml:"timestamp"`
	}

	BubbleConfig struct {
		Width     string `yaml:"width" validate:"required"`
		MaxHeight string `yaml:"max_height" validate:"required"`
		LeftPad   string `yaml:"left_pad"`
		RightPad  string `yaml:"right_pad"`
	}

	LayoutConfig struct {
		PageSize           string       `yaml:"page_size" validate:"required"`
		PageMargin         string       `yaml:"page_margin" validate:"required"`
		Columns            int          `yaml:"columns" validate:"min=1,max=12"`
		ColumnMargin       string       `yaml:"column_margin"`
		DebugPageOutline   bool         `yaml:"debug_page_outline"`
		BlockOverlap       string       `yaml:"block_overlap"`
		TitleBackground    string       `yaml:"title_background" validate:"required"`
		SubtitleBackground string       `yaml:"subtitle_background" validate:"required"`
		HeaderPad          string       `yaml:"header_pad"`
		WriteInHeight      string       `yaml:"write_in_height" validate:"required"`
		SelectionPad       string       `yaml:"selection_pad"`
		ContestGap         string       `yaml:"contest_gap"`
		ContestPad         string       `yaml:"contest_pad"`
		Bubble             BubbleConfig `yaml:"bubble"`
		Timestamp          bool         `yaml:"timestamp"`
		Styles             StylesConfig `yaml:"styles"`
	}

	HeaderConfig struct {
		Template string `yaml:"template"`
	}

	AssetsConfig struct {
		Images map[string]string `yaml:"images" validate:"dive,required"`
		Fonts  []string          `yaml:"fonts" validate:"dive,required"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Layout  LayoutConfig  `yaml:"layout"`
		Header  HeaderConfig  `yaml:"header"`
		Assets  AssetsConfig  `yaml:"assets"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

// NOTE: must match yaml field name above
const headerTemplateFieldName = "template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(headerTemplateFieldName),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the expanded configuration template and
// performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates the default configuration from the template.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// HeaderTemplate parses the page header template.
func (c *Config) HeaderTemplate() (*headertmpl.Template, error) {
	return headertmpl.Parse(c.Header.Template)
}

// LayoutSettings converts the layout section into the values used by drawing code.
// Every malformed field is reported.
func (c *Config) LayoutSettings() (layout.Config, error) {
	lc := c.Layout
	p := &parser{}

	out := layout.Config{
		PageSize:         p.pageSize(lc.PageSize),
		PageMargin:       p.length("page_margin", lc.PageMargin),
		Columns:          lc.Columns,
		ColumnMargin:     p.length("column_margin", lc.ColumnMargin),
		DebugPageOutline: lc.DebugPageOutline,

		Header:             p.style("header", lc.Styles.Header),
		HeaderPad:          p.length("header_pad", lc.HeaderPad),
		Title:              p.style("title", lc.Styles.Title),
		TitleBackground:    p.color("title_background", lc.TitleBackground),
		Subtitle:           p.style("subtitle", lc.Styles.Subtitle),
		SubtitleBackground: p.color("subtitle_background", lc.SubtitleBackground),
		Summary:            p.style("summary", lc.Styles.Summary),
		Candidate:          p.style("candidate", lc.Styles.Candidate),
		Candsub:            p.style("candsub", lc.Styles.Candsub),
		Instruction:        p.style("instruction", lc.Styles.Instruction),
		Timestamp:          layout.TimestampStyle{Enabled: lc.Timestamp, Style: p.style("timestamp", lc.Styles.Timestamp)},

		WriteInHeight:   p.length("write_in_height", lc.WriteInHeight),
		BubbleLeftPad:   p.length("bubble.left_pad", lc.Bubble.LeftPad),
		BubbleRightPad:  p.length("bubble.right_pad", lc.Bubble.RightPad),
		BubbleWidth:     p.length("bubble.width", lc.Bubble.Width),
		BubbleMaxHeight: p.length("bubble.max_height", lc.Bubble.MaxHeight),
		SelectionPad:    p.length("selection_pad", lc.SelectionPad),
		ContestGap:      p.length("contest_gap", lc.ContestGap),
		ContestPad:      p.length("contest_pad", lc.ContestPad),
		BlockOverlap:    p.length("block_overlap", lc.BlockOverlap),
	}
	if p.err != nil {
		return layout.Config{}, p.err
	}
	if err := out.Validate(); err != nil {
		return layout.Config{}, fmt.Errorf("layout configuration: %w", err)
	}
	return out, nil
}

// StyleFonts lists every font the layout styles refer to.
func (c *Config) StyleFonts() []string {
	st := c.Layout.Styles
	seen := map[string]bool{}
	var out []string
	for _, s := range []TextStyleConfig{st.Header, st.Title, st.Subtitle, st.Summary, st.Candidate, st.Candsub, st.Instruction, st.Timestamp} {
		if !seen[s.Font] {
			seen[s.Font] = true
			out = append(out, s.Font)
		}
	}
	return out
}

// parser collects conversion errors of the layout section.
type parser struct {
	err error
}

func (p *parser) fail(field string, err error) {
	p.err = multierr.Append(p.err, fmt.Errorf("layout.%s: %w", field, err))
}

// length returns points, empty means zero.
func (p *parser) length(field, value string) float64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	l, err := layout.ParseLength(value)
	if err != nil {
		p.fail(field, err)
		return 0
	}
	return l.ToPT()
}

func (p *parser) pageSize(value string) [2]float64 {
	if size, ok := layout.PaperSize(value); ok {
		return size
	}
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		p.fail("page_size", fmt.Errorf("unknown page size %q", value))
		return [2]float64{}
	}
	return [2]float64{p.length("page_size", w), p.length("page_size", h)}
}

func (p *parser) color(field, value string) layout.Color {
	c, err := layout.ParseColor(value)
	if err != nil {
		p.fail(field, err)
	}
	return c
}

func (p *parser) style(name string, s TextStyleConfig) layout.TextStyle {
	field := "styles." + name
	size := p.length(field+".size", s.Size)
	lh, err := layout.ParseLineHeight(s.Leading)
	if err != nil {
		p.fail(field+".leading", err)
	}
	return layout.TextStyle{
		Font:    s.Font,
		Size:    size,
		Leading: lh.Resolve(size),
		Indent:  p.length(field+".indent", s.Indent),
	}
}
