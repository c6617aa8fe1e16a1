// Package headertmpl parses the page header template, plain text with
// {NAME} placeholders. "{{" and "}}" stand for literal braces.
package headertmpl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrUnknownVariable = errors.New("unknown template variable")
	ErrMissingValue    = errors.New("no value for template variable")
)

var (
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Escape", Pattern: `\{\{|\}\}`},
		{Name: "Placeholder", Pattern: `\{[A-Za-z_][A-Za-z0-9_]*\}`},
		{Name: "Text", Pattern: `[^{}]+`},
	})

	templateParser = participle.MustBuild[document](
		participle.Lexer(templateLexer),
	)
)

type document struct {
	Parts []*Part `parser:"@@*"`
}

// Template is a parsed header template.
type Template struct {
	Parts  []*Part
	source string
}

// Part is one run of literal text or a placeholder.
type Part struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Escape *Escape        `parser:"  @Escape"`
	Var    *Variable      `parser:"| @Placeholder"`
	Text   *string        `parser:"| @Text"`
}

// Escape is a doubled brace standing for a single one.
type Escape string

// Capture implements participle.Capture.
func (e *Escape) Capture(values []string) error {
	if len(values) == 0 || len(values[0]) != 2 {
		return fmt.Errorf("escape capture requires a doubled brace")
	}
	*e = Escape(values[0][:1])
	return nil
}

// Variable is the name inside a placeholder.
type Variable string

// Capture implements participle.Capture.
func (v *Variable) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("placeholder capture requires value")
	}
	*v = Variable(strings.TrimSuffix(strings.TrimPrefix(values[0], "{"), "}"))
	return nil
}

// Parse parses a template.
func Parse(src string) (*Template, error) {
	doc, err := templateParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("unable to parse header template: %w", err)
	}
	return &Template{Parts: doc.Parts, source: src}, nil
}

// MustParse is Parse for templates known to be valid.
func MustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) String() string { return t.source }

// Names lists the placeholders in order of first use.
func (t *Template) Names() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range t.Parts {
		if p.Var == nil || seen[string(*p.Var)] {
			continue
		}
		seen[string(*p.Var)] = true
		out = append(out, string(*p.Var))
	}
	return out
}

// Validate checks that every placeholder is one of the known names.
func (t *Template) Validate(known []string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	for _, p := range t.Parts {
		if p.Var != nil && !allowed[string(*p.Var)] {
			return fmt.Errorf("%w {%s} at %s", ErrUnknownVariable, *p.Var, p.Pos)
		}
	}
	return nil
}

// Execute substitutes placeholders.
func (t *Template) Execute(vars map[string]string) (string, error) {
	var sb strings.Builder
	for _, p := range t.Parts {
		switch {
		case p.Escape != nil:
			sb.WriteString(string(*p.Escape))
		case p.Var != nil:
			v, ok := vars[string(*p.Var)]
			if !ok {
				return "", fmt.Errorf("%w {%s}", ErrMissingValue, *p.Var)
			}
			sb.WriteString(v)
		case p.Text != nil:
			sb.WriteString(*p.Text)
		}
	}
	return sb.String(), nil
}

// Lines executes the template and splits the result into lines.
func (t *Template) Lines(vars map[string]string) ([]string, error) {
	s, err := t.Execute(vars)
	if err != nil {
		return nil, err
	}
	return strings.Split(s, "\n"), nil
}
