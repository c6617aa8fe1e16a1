// Package ballot renders the ballot styles of an election: two pagination
// passes per style, page furniture, output files and the scan geometry export.
package ballot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/brianolson/ballotstudio/content"
	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/headertmpl"
	"github.com/brianolson/ballotstudio/layout"
)

// HeaderVariables are the placeholders a page header template may use.
var HeaderVariables = []string{"PAGE", "PAGES", "DATE", "DATES", "PLACES", "PLACE", "ELECTION", "TYPE"}

// DefaultHeaderTemplate is used when neither the configuration nor the
// ballot style provides one.
const DefaultHeaderTemplate = "{TYPE}, {DATE}\n{PLACES} page {PAGE} of {PAGES}"

// unknownPages stands in for the page count before it is known.
const unknownPages = "X"

// Style is one ballot style of an election.
type Style struct {
	Index     int // position among the election's ballot styles
	Record    *election.Record
	GpUnitIDs []string
	Names     []string // display names of the geo units

	ext      []string
	imageURI []string
	// header overrides the printer template, from the PageHeader extension field
	header *headertmpl.Template
}

func newStyle(index int, rec *election.Record, ix *election.Index) (*Style, error) {
	st := &Style{
		Index:     index,
		Record:    rec,
		GpUnitIDs: rec.Strs("GpUnitIds"),
		ext:       rec.Strs("ExternalIdentifier"),
		imageURI:  rec.Strs("ImageUri"),
	}
	gps, err := ix.GetAll(st.GpUnitIDs)
	if err != nil {
		return nil, err
	}
	for _, gp := range gps {
		name, err := election.GpUnitName(gp)
		if err != nil {
			return nil, err
		}
		st.Names = append(st.Names, name)
	}
	if rec.Has("PageHeader") {
		tmpl, err := headertmpl.Parse(rec.Str("PageHeader"))
		if err != nil {
			return nil, err
		}
		if err := tmpl.Validate(HeaderVariables); err != nil {
			return nil, err
		}
		st.header = tmpl
	}
	return st, nil
}

// Name joins the geo unit names.
func (s *Style) Name() string { return strings.Join(s.Names, ",") }

// Select reports whether any selector matches an external identifier or an
// image URI of the style.
func (s *Style) Select(selectors []string) bool {
	for _, sel := range selectors {
		if slices.Contains(s.ext, sel) || slices.Contains(s.imageURI, sel) {
			return true
		}
	}
	return false
}

// Blocks resolves the ordered content of the style.
func (s *Style) Blocks(r *content.Resolver) ([]layout.Block, error) {
	return r.BallotStyleBlocks(s.Record)
}

// headerVars returns the template values for a page. total is 0 before the
// page count is known.
func (s *Style) headerVars(e *election.Election, page, total int) map[string]string {
	pages := unknownPages
	if total > 0 {
		pages = strconv.Itoa(total)
	}
	place := ""
	if len(s.Names) > 0 {
		place = s.Names[len(s.Names)-1]
	}
	return map[string]string{
		"PAGE":     strconv.Itoa(page),
		"PAGES":    pages,
		"DATE":     e.Date(),
		"DATES":    e.Dates(),
		"PLACES":   strings.Join(s.Names, ", "),
		"PLACE":    place,
		"ELECTION": e.Name,
		"TYPE":     e.TypeTitle(),
	}
}

func (s *Style) String() string {
	return fmt.Sprintf("ballot style %d (%s)", s.Index, s.Name())
}
