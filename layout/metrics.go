package layout

import "fmt"

// TextMetrics turns (text, style, width) into wrapped lines and the space they
// consume. Results depend only on the inputs, so it memoizes per instance;
// a fresh instance belongs to each ballot style render.
type TextMetrics struct {
	ts   Typesetter
	memo map[metricsKey][]TextLine
}

type metricsKey struct {
	text  string
	style TextStyle
	width float64
}

// NewTextMetrics wraps a typesetter.
func NewTextMetrics(ts Typesetter) *TextMetrics {
	return &TextMetrics{ts: ts, memo: make(map[metricsKey][]TextLine)}
}

// Lines wraps text into the width left after the style indent. Empty text has no lines.
func (m *TextMetrics) Lines(text string, style TextStyle, width float64) ([]TextLine, error) {
	if text == "" {
		return nil, nil
	}
	key := metricsKey{text: text, style: style, width: width}
	if lines, ok := m.memo[key]; ok {
		return lines, nil
	}
	if m.ts == nil {
		return nil, fmt.Errorf("no typesetter")
	}
	lines, err := m.ts.LayoutLines(text, width-style.Indent, style)
	if err != nil {
		return nil, fmt.Errorf("unable to wrap %q: %w", text, err)
	}
	m.memo[key] = lines
	return lines, nil
}

// Measure returns the widest line (indent included) and the paragraph height,
// line count times leading.
func (m *TextMetrics) Measure(text string, style TextStyle, width float64) (float64, float64, error) {
	lines, err := m.Lines(text, style, width)
	if err != nil {
		return 0, 0, err
	}
	w := 0.0
	for _, ln := range lines {
		w = max(w, ln.Width)
	}
	if len(lines) > 0 {
		w += style.Indent
	}
	return w, float64(len(lines)) * style.Leading, nil
}

// Height is Measure without the width.
func (m *TextMetrics) Height(text string, style TextStyle, width float64) (float64, error) {
	_, h, err := m.Measure(text, style, width)
	return h, err
}

// StringWidth measures a single unwrapped run.
func (m *TextMetrics) StringWidth(s string, font string, size float64) (float64, error) {
	if m.ts == nil {
		return 0, fmt.Errorf("no typesetter")
	}
	return m.ts.StringWidth(s, font, size)
}

// DrawParagraph draws wrapped text whose box top edge is yTop and returns the
// height consumed, identical to Measure. Each line sits on a baseline one
// font size below its line box top.
func (m *TextMetrics) DrawParagraph(s Surface, text string, style TextStyle, x, yTop, width float64) (float64, error) {
	lines, err := m.Lines(text, style, width)
	if err != nil {
		return 0, err
	}
	for i, ln := range lines {
		baseline := yTop - float64(i)*style.Leading - style.Size
		s.Text(x+style.Indent, baseline, ln.Content, style.Font, style.Size, AlignLeft)
	}
	return float64(len(lines)) * style.Leading, nil
}
