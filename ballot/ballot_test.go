package ballot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/brianolson/ballotstudio/content"
	"github.com/brianolson/ballotstudio/election"
	et "github.com/brianolson/ballotstudio/election/electiontest"
	"github.com/brianolson/ballotstudio/headertmpl"
	"github.com/brianolson/ballotstudio/layout"
	"github.com/brianolson/ballotstudio/layout/layouttest"
	"github.com/brianolson/ballotstudio/renderer"
)

type stubDoc struct {
	*layouttest.Recorder
	info renderer.DocumentInfo
}

func (d *stubDoc) Pages() int { return d.Recorder.Pages }

func (d *stubDoc) Write(w io.Writer, info renderer.DocumentInfo) error {
	d.info = info
	_, err := fmt.Fprintf(w, "%%PDF-stub %d\n", d.Recorder.Pages)
	return err
}

type stubRenderer struct {
	*layouttest.Typesetter
	docs []*stubDoc
}

func (r *stubRenderer) NewDocument(_, _ float64) renderer.Document {
	d := &stubDoc{Recorder: layouttest.NewRecorder()}
	r.docs = append(r.docs, d)
	return d
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var fixedNow = time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)

func report() *et.Builder {
	return et.New("Springfield Municipal").
		AddRoot("GpUnit", et.ReportingUnit("gp-shelby", "Shelbyville")).
		Add("Candidate",
			et.Candidate("c-1", "Alice Able", ""),
			et.Candidate("c-2", "Bob Baker", ""),
		).
		Add("Contest",
			et.CandidateContest("mayor", "Mayor",
				et.CandidateSelection("sel-1", "c-1"),
				et.CandidateSelection("sel-2", "c-2"),
				et.WriteIn("sel-w"),
			),
			et.MeasureContest("measure-a", "Measure A",
				et.MeasureSelection("yes", "Yes"),
				et.MeasureSelection("no", "No"),
			),
		).
		Add("Header", et.Header("h-page", content.HeaderPageBreak))
}

func options(r *stubRenderer) Options {
	cfg := layout.DefaultConfig()
	cfg.Timestamp.Enabled = true
	return Options{
		Config:   cfg,
		Renderer: r,
		Fonts:    layouttest.Fonts(0.7),
		Images:   layouttest.Images{W: 400, H: 90},
		Creator:  "ballotstudio",
		Now:      fixedNow,
	}
}

func newPrinter(t *testing.T, b *et.Builder, opts Options) *Printer {
	t.Helper()
	rep := b.Report(t)
	p, err := NewPrinter(rep, rep.Elections[0], opts)
	if err != nil {
		t.Fatalf("NewPrinter() error = %v", err)
	}
	return p
}

func twoPages() *et.Builder {
	return report().Style([]string{"gp-city"}, []string{"s1"},
		et.OrderedContest("mayor"),
		et.OrderedHeader("h-page"),
		et.OrderedContest("measure-a"),
	)
}

func TestHeaderCarriesPageCount(t *testing.T) {
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	p := newPrinter(t, twoPages(), options(r))

	var buf bytes.Buffer
	if err := p.DrawToWriter(&buf, nil); err != nil {
		t.Fatalf("DrawToWriter() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF-stub 2") {
		t.Fatalf("output = %q", buf.String())
	}
	doc := r.docs[0]
	for page := 1; page <= 2; page++ {
		texts := doc.Texts(page)
		want := fmt.Sprintf("Springfield page %d of 2", page)
		if !slices.Contains(texts, want) {
			t.Fatalf("page %d texts %q miss %q", page, texts, want)
		}
		if !slices.Contains(texts, "generated 2026-10-18 12:30:00 UTC") {
			t.Fatalf("page %d has no timestamp: %q", page, texts)
		}
	}
	if doc.info.Title != "Springfield Municipal" || doc.info.Creator != "ballotstudio" {
		t.Fatalf("document info = %+v", doc.info)
	}
	if !slices.Contains(doc.info.Keywords, "Springfield") {
		t.Fatalf("keywords %q miss the style name", doc.info.Keywords)
	}
	if res := p.Result(p.Styles()[0]); res == nil || res.Pages != 2 {
		t.Fatalf("result = %+v", res)
	}
}

func TestHeaderVarsBeforePageCount(t *testing.T) {
	rep := twoPages().Report(t)
	el := rep.Elections[0]
	st, err := newStyle(0, el.BallotStyles[0], rep.Index)
	if err != nil {
		t.Fatalf("newStyle() error = %v", err)
	}
	vars := st.headerVars(el, 1, 0)
	if vars["PAGES"] != "X" || vars["PAGE"] != "1" {
		t.Fatalf("dry run vars = %v", vars)
	}
	if vars = st.headerVars(el, 2, 3); vars["PAGES"] != "3" || vars["PLACE"] != "Springfield" {
		t.Fatalf("vars = %v", vars)
	}
	if vars["ELECTION"] != "Springfield Municipal" || vars["DATE"] != "2026-11-03" {
		t.Fatalf("vars = %v", vars)
	}
}

func TestFileNames(t *testing.T) {
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	one := newPrinter(t, twoPages(), options(r))
	if got := one.FileName(one.Styles()[0], "b_"); got != "b_springfield.pdf" {
		t.Fatalf("single style file name = %s", got)
	}

	two := newPrinter(t, twoPages().Style([]string{"gp-city", "gp-shelby"}, []string{"s2"}, et.OrderedContest("mayor")),
		options(r))
	if got := two.FileName(two.Styles()[0], "b_"); got != "b_0_springfield.pdf" {
		t.Fatalf("first file name = %s", got)
	}
	if got := two.FileName(two.Styles()[1], ""); got != "1_springfield-shelbyville.pdf" {
		t.Fatalf("second file name = %s", got)
	}
}

func TestDrawToDir(t *testing.T) {
	b := twoPages().Style([]string{"gp-shelby"}, []string{"s2"}, et.OrderedContest("measure-a"))
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	p := newPrinter(t, b, options(r))
	dir := t.TempDir()

	paths, err := p.DrawToDir(dir, "", []string{"s2"})
	if err != nil {
		t.Fatalf("DrawToDir() error = %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "1_shelbyville.pdf" {
		t.Fatalf("paths = %v", paths)
	}
	if p.Result(p.Styles()[0]) != nil {
		t.Fatalf("unselected style was rendered")
	}

	paths, err = p.DrawToDir(dir, "", nil)
	if err != nil {
		t.Fatalf("DrawToDir() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Fatalf("%s is not a document: %q", path, data)
		}
	}

	if paths, err := p.DrawToDir(dir, "", []string{"nope"}); err != nil || len(paths) != 0 {
		t.Fatalf("unmatched selector: paths %v err %v", paths, err)
	}
	if err := p.DrawToWriter(io.Discard, []string{"nope"}); !errors.Is(err, ErrNoStyles) {
		t.Fatalf("expected ErrNoStyles, got %v", err)
	}
}

func TestFailedStyleLeavesNoFile(t *testing.T) {
	b := twoPages().Style([]string{"gp-shelby"}, []string{"bad"}, et.OrderedContest("mayor", "sel-1", "nope"))
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	p := newPrinter(t, b, options(r))
	dir := t.TempDir()

	paths, err := p.DrawToDir(dir, "", nil)
	if err == nil {
		t.Fatalf("expected error for the broken style")
	}
	if len(paths) != 1 {
		t.Fatalf("paths = %v", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "1_shelbyville.pdf")); !os.IsNotExist(err) {
		t.Fatalf("broken style left a file: %v", err)
	}
	ex := p.Export()
	if len(ex.BsData) != 2 || ex.BsData[0].Bubbles == nil || ex.BsData[1].Bubbles != nil {
		t.Fatalf("export = %+v", ex.BsData)
	}
}

func TestExport(t *testing.T) {
	b := twoPages().Style([]string{"gp-shelby"}, []string{"s2"}, et.OrderedContest("measure-a"))
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	opts := options(r)
	p := newPrinter(t, b, opts)
	if _, err := p.DrawToDir(t.TempDir(), "", nil); err != nil {
		t.Fatalf("DrawToDir() error = %v", err)
	}

	ex := p.Export()
	if ex.Session != p.Session().String() || len(ex.BsData) != 2 || len(ex.Bubbles) != 2 || len(ex.Headers) != 2 {
		t.Fatalf("export = %+v", ex)
	}
	if len(ex.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %q", ex.Diagnostics)
	}
	first := ex.BsData[0]
	if got := strings.Join(first.GpUnitIds, ","); got != "gp-city" {
		t.Fatalf("GpUnitIds = %s", got)
	}
	if len(first.Headers) != 2 || len(ex.BsData[1].Headers) != 1 {
		t.Fatalf("headers = %v / %v", first.Headers, ex.BsData[1].Headers)
	}
	cfg := opts.Config
	h := first.Headers["1"]
	if !near(h[1], cfg.PageSize[1]-cfg.PageMargin) || !near(h[2], cfg.PageSize[0]-cfg.PageMargin) || !near(h[0], cfg.PageMargin+cfg.HeaderPad) {
		t.Fatalf("header edges = %v", h)
	}
	if h[3] >= h[1] {
		t.Fatalf("header bottom %g not below top %g", h[3], h[1])
	}
	for _, sel := range []string{"sel-1", "sel-2", "sel-w"} {
		box, ok := first.Bubbles["mayor"][sel]
		if !ok || box[2] <= 0 || box[3] <= 0 {
			t.Fatalf("target %s = %v", sel, box)
		}
		if box[0] < cfg.PageMargin || box[1] < cfg.PageMargin {
			t.Fatalf("target %s outside content area: %v", sel, box)
		}
	}
	if len(ex.BsData[1].Bubbles["measure-a"]) != 2 {
		t.Fatalf("second style targets = %v", ex.BsData[1].Bubbles)
	}

	var buf bytes.Buffer
	if err := ex.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	for _, key := range []string{"draw_settings", "bsdata", "bubbles", "headers", "session"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("export misses %s", key)
		}
	}
	settings := doc["draw_settings"].(map[string]any)
	if _, ok := settings["pagesize"]; !ok {
		t.Fatalf("draw_settings = %v", settings)
	}
}

func TestCheckHeaders(t *testing.T) {
	styles := []*Style{{Index: 0, Names: []string{"A"}}, {Index: 1, Names: []string{"B"}}}
	same := Edges{40, 756, 576, 720}
	data := []StyleGeometry{
		{Headers: map[string]Edges{"1": same, "2": same, "10": same}},
		{Headers: map[string]Edges{"1": same, "2": {40, 756, 576, 708}}},
	}
	got := checkHeaders(styles, data)
	if len(got) != 1 {
		t.Fatalf("diagnostics = %q", got)
	}
	if !strings.Contains(got[0], "ballot style 1 (B) page 2") || !strings.Contains(got[0], "ballot style 0 (A) page 1") {
		t.Fatalf("diagnostic = %s", got[0])
	}
	if got := checkHeaders(styles, []StyleGeometry{{}, {}}); len(got) != 0 {
		t.Fatalf("no headers: %q", got)
	}
}

func TestStyleHeaderOverride(t *testing.T) {
	b := report().Add("BallotStyle", et.Object{
		"@type":          election.TypeBallotStyle,
		"GpUnitIds":      []any{"gp-city"},
		"PageHeader":     "{ELECTION}\n{PLACE} {PAGE}/{PAGES}",
		"OrderedContent": []any{et.OrderedContest("mayor")},
	})
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	p := newPrinter(t, b, options(r))
	if err := p.DrawToWriter(io.Discard, nil); err != nil {
		t.Fatalf("DrawToWriter() error = %v", err)
	}
	texts := r.docs[0].Texts(1)
	if !slices.Contains(texts, "Springfield Municipal") || !slices.Contains(texts, "Springfield 1/1") {
		t.Fatalf("texts = %q", texts)
	}

	bad := report().Add("BallotStyle", et.Object{
		"@type":      election.TypeBallotStyle,
		"GpUnitIds":  []any{"gp-city"},
		"PageHeader": "{SHOE_SIZE}",
	})
	rep := bad.Report(t)
	if _, err := NewPrinter(rep, rep.Elections[0], options(r)); err == nil {
		t.Fatalf("expected error for unknown header variable")
	}
}

func TestNewPrinterChecks(t *testing.T) {
	rep := twoPages().Report(t)
	el := rep.Elections[0]
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}

	opts := options(r)
	opts.Renderer = nil
	if _, err := NewPrinter(rep, el, opts); err == nil {
		t.Fatalf("expected error without renderer")
	}

	opts = options(r)
	opts.HeaderTemplate = headertmpl.MustParse("{PAGE} {WEATHER}")
	if _, err := NewPrinter(rep, el, opts); err == nil {
		t.Fatalf("expected error for unknown template variable")
	}

	opts = options(r)
	opts.Config.Columns = 0
	if _, err := NewPrinter(rep, el, opts); err == nil {
		t.Fatalf("expected error for invalid configuration")
	}

	unknown := report().Style([]string{"gp-nowhere"}, nil, et.OrderedContest("mayor"))
	rep = unknown.Report(t)
	if _, err := NewPrinter(rep, rep.Elections[0], options(r)); err == nil {
		t.Fatalf("expected error for unknown geo unit")
	}
}

func threeCandidates() *et.Builder {
	return report().
		Add("Candidate", et.Candidate("c-3", "Carol Cooper", "")).
		Add("Contest", et.CandidateContest("council", "City Council",
			et.CandidateSelection("cc-1", "c-1"),
			et.CandidateSelection("cc-2", "c-2"),
			et.CandidateSelection("cc-3", "c-3"),
		)).
		Add("Header", et.Header("h-col", content.HeaderColumnBreak))
}

func TestSingleContestFitsOnePage(t *testing.T) {
	b := threeCandidates().Style([]string{"gp-city"}, nil, et.OrderedContest("council"))
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	opts := options(r)
	opts.Config.Columns = 2
	p := newPrinter(t, b, opts)
	if err := p.DrawToWriter(io.Discard, nil); err != nil {
		t.Fatalf("DrawToWriter() error = %v", err)
	}
	if pages := r.docs[0].Pages(); pages != 1 {
		t.Fatalf("pages = %d, want 1", pages)
	}
	targets := p.Export().BsData[0].Bubbles["council"]
	if len(targets) != 3 {
		t.Fatalf("targets = %v", targets)
	}
	h := targets["cc-1"][3]
	for id, box := range targets {
		if !near(box[3], h) {
			t.Fatalf("target %s height %g, want %g", id, box[3], h)
		}
	}
}

func TestColumnBreakMovesContest(t *testing.T) {
	b := threeCandidates().Style([]string{"gp-city"}, nil, et.OrderedHeader("h-col"), et.OrderedContest("council"))
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	opts := options(r)
	opts.Config.Columns = 2
	p := newPrinter(t, b, opts)
	if err := p.DrawToWriter(io.Discard, nil); err != nil {
		t.Fatalf("DrawToWriter() error = %v", err)
	}
	res := p.Result(p.Styles()[0])
	if res.Pages != 1 || len(res.Placements) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if pl := res.Placements[0]; pl.ID != "council" || pl.Column != 2 {
		t.Fatalf("placement = %+v", pl)
	}
}

func TestOverflowStartsSecondPage(t *testing.T) {
	b := report()
	var refs []et.Object
	for i := range 40 {
		id := fmt.Sprintf("race-%d", i)
		b.Add("Contest", et.CandidateContest(id, "Race "+id,
			et.CandidateSelection(id+"-1", "c-1"),
			et.CandidateSelection(id+"-2", "c-2"),
			et.WriteIn(id+"-w"),
		))
		refs = append(refs, et.OrderedContest(id))
	}
	b.Style([]string{"gp-city"}, nil, refs...)
	r := &stubRenderer{Typesetter: layouttest.NewTypesetter()}
	p := newPrinter(t, b, options(r))
	if err := p.DrawToWriter(io.Discard, nil); err != nil {
		t.Fatalf("DrawToWriter() error = %v", err)
	}
	res := p.Result(p.Styles()[0])
	if res.Pages < 2 {
		t.Fatalf("pages = %d, want at least 2", res.Pages)
	}
	columns := map[int]bool{}
	for _, pl := range res.Placements {
		if pl.Page == 1 {
			columns[pl.Column] = true
		}
	}
	if len(columns) != 3 {
		t.Fatalf("page 1 used columns %v", columns)
	}
	doc := r.docs[0]
	for page := 1; page <= res.Pages; page++ {
		want := fmt.Sprintf("Springfield page %d of %d", page, res.Pages)
		if !slices.Contains(doc.Texts(page), want) {
			t.Fatalf("page %d misses %q", page, want)
		}
	}
	if got := len(p.Export().BsData[0].Headers); got != res.Pages {
		t.Fatalf("header boxes = %d, want %d", got, res.Pages)
	}
}
