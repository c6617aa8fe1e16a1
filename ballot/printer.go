package ballot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/brianolson/ballotstudio/content"
	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/headertmpl"
	"github.com/brianolson/ballotstudio/layout"
	"github.com/brianolson/ballotstudio/renderer"
)

// ErrNoStyles is returned when selectors match no ballot style.
var ErrNoStyles = errors.New("no ballot styles selected")

// Options configures a Printer.
type Options struct {
	Config   layout.Config
	Renderer renderer.Renderer
	Fonts    layout.FontMetrics
	Images   layout.ImageSource
	Marks    election.Marks
	// HeaderTemplate is the page header, nil means DefaultHeaderTemplate.
	HeaderTemplate *headertmpl.Template
	// Creator is written into document metadata.
	Creator string
	Log     *zap.Logger
	// Now is the generation time stamped on pages, zero means time.Now.
	Now time.Time
}

// Printer renders the ballot styles of one election. It is a render session:
// every style drawn through it shares the resolver, the configuration and the
// session id, and its geometry is collected for Export.
type Printer struct {
	election *election.Election
	resolver *content.Resolver
	styles   []*Style
	cfg      layout.Config
	opts     Options
	tmpl     *headertmpl.Template
	log      *zap.Logger
	session  uuid.UUID
	stamp    string

	results map[int]*layout.Result // by style index
}

// NewPrinter checks the configuration and resolves the ballot styles of el.
// Everything that can be wrong with the inputs is reported here, before any
// page is drawn.
func NewPrinter(rep *election.Report, el *election.Election, opts Options) (*Printer, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("no renderer")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("layout configuration: %w", err)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	tmpl := opts.HeaderTemplate
	if tmpl == nil {
		tmpl = headertmpl.MustParse(DefaultHeaderTemplate)
	}
	if err := tmpl.Validate(HeaderVariables); err != nil {
		return nil, err
	}
	if err := checkFonts(&opts.Config, opts.Fonts); err != nil {
		return nil, err
	}
	session, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to create session id: %w", err)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	p := &Printer{
		election: el,
		resolver: content.NewResolverForIndex(rep.Index, log),
		cfg:      opts.Config,
		opts:     opts,
		tmpl:     tmpl,
		log:      log,
		session:  session,
		stamp:    now.UTC().Format("generated 2006-01-02 15:04:05 UTC"),
		results:  make(map[int]*layout.Result),
	}
	p.resolver.SetMarks(opts.Marks)

	var errs error
	for i, rec := range el.BallotStyles {
		st, err := newStyle(i, rec, rep.Index)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ballot style %d: %w", i, err))
			continue
		}
		p.styles = append(p.styles, st)
	}
	if errs != nil {
		return nil, errs
	}
	log.Debug("Render session", zap.String("session", session.String()), zap.String("election", el.Name),
		zap.Int("styles", len(p.styles)))
	return p, nil
}

// checkFonts makes sure every text style uses a known font.
func checkFonts(cfg *layout.Config, fonts layout.FontMetrics) error {
	if fonts == nil {
		return fmt.Errorf("no font metrics")
	}
	for _, st := range []layout.TextStyle{cfg.Header, cfg.Title, cfg.Subtitle, cfg.Summary,
		cfg.Candidate, cfg.Candsub, cfg.Instruction, cfg.Timestamp.Style} {
		if _, err := fonts.CapHeight(st.Font); err != nil {
			return err
		}
	}
	return nil
}

// Styles returns the ballot styles in election order.
func (p *Printer) Styles() []*Style { return p.styles }

// Session identifies this render session.
func (p *Printer) Session() uuid.UUID { return p.session }

// Result returns the layout of a rendered style, nil if it was not rendered.
func (p *Printer) Result(st *Style) *layout.Result { return p.results[st.Index] }

func (p *Printer) selected(selectors []string) []*Style {
	if len(selectors) == 0 {
		return p.styles
	}
	var out []*Style
	for _, st := range p.styles {
		if st.Select(selectors) {
			out = append(out, st)
		}
	}
	return out
}

// FileName is the output file name of a style: "<prefix><index>_<names>.pdf"
// when the election has several styles, "<prefix><names>.pdf" otherwise.
func (p *Printer) FileName(st *Style, prefix string) string {
	names := slug.Make(st.Name())
	if len(p.styles) > 1 {
		return fmt.Sprintf("%s%d_%s.pdf", prefix, st.Index, names)
	}
	return prefix + names + ".pdf"
}

// draw lays a style out twice: a dry run learns the page count, the real
// pass draws on s. Both passes must break identically.
func (p *Printer) draw(st *Style, s layout.Surface) (*layout.Result, error) {
	blocks, err := st.Blocks(p.resolver)
	if err != nil {
		return nil, err
	}
	tmpl := p.tmpl
	if st.header != nil {
		tmpl = st.header
	}
	env := &layout.Env{
		Config: &p.cfg,
		Text:   layout.NewTextMetrics(p.opts.Renderer),
		Fonts:  p.opts.Fonts,
		Images: p.opts.Images,
		Marks:  p.resolver,
		Log:    p.log.With(zap.Int("style", st.Index)),
	}
	dec := &pageDecorator{cfg: &p.cfg, style: st, election: p.election, tmpl: tmpl, stamp: p.stamp}

	dry, err := layout.Paginate(env, &layout.Discard{}, blocks, layout.Options{Decorator: dec})
	if err != nil {
		return nil, err
	}
	res, err := layout.Paginate(env, s, blocks, layout.Options{TotalPages: dry.Pages, Decorator: dec})
	if err != nil {
		return nil, err
	}
	if err := layout.SameFlow(dry, res); err != nil {
		return nil, err
	}
	p.results[st.Index] = res
	p.log.Debug("Ballot style laid out", zap.Int("style", st.Index), zap.String("names", st.Name()),
		zap.Int("pages", res.Pages), zap.Int("targets", res.Geometry.TargetCount()),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

func (p *Printer) info(styles ...*Style) renderer.DocumentInfo {
	info := renderer.DocumentInfo{
		Title:   p.election.Name,
		Subject: p.election.TypeTitle() + ", " + p.election.Dates(),
		Creator: p.opts.Creator,
	}
	for _, st := range styles {
		info.Keywords = append(info.Keywords, st.Names...)
	}
	info.Keywords = append(info.Keywords, p.stamp, "session "+p.session.String())
	return info
}

// DrawToDir writes one PDF per selected ballot style into dir and returns the
// written paths. No selectors means every style. A style that fails is
// reported and leaves no file behind; the others are still written.
func (p *Printer) DrawToDir(dir, prefix string, selectors []string) ([]string, error) {
	var (
		paths []string
		errs  error
	)
	for _, st := range p.selected(selectors) {
		path := filepath.Join(dir, p.FileName(st, prefix))
		size, err := p.drawFile(st, path)
		if err != nil {
			delete(p.results, st.Index)
			p.log.Error("Ballot style failed", zap.Int("style", st.Index), zap.String("names", st.Name()), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", st, err))
			continue
		}
		p.log.Info("Ballot written", zap.String("file", path), zap.Int("pages", p.results[st.Index].Pages),
			zap.String("size", humanize.Bytes(uint64(size))))
		paths = append(paths, path)
	}
	return paths, errs
}

func (p *Printer) drawFile(st *Style, path string) (int, error) {
	doc := p.opts.Renderer.NewDocument(p.cfg.PageSize[0], p.cfg.PageSize[1])
	if _, err := p.draw(st, doc); err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf, p.info(st)); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("unable to write %s: %w", path, err)
	}
	return buf.Len(), nil
}

// DrawToWriter renders every selected style into a single PDF. Each style
// starts on a new page.
func (p *Printer) DrawToWriter(w io.Writer, selectors []string) error {
	styles := p.selected(selectors)
	if len(styles) == 0 {
		return fmt.Errorf("%w by %q", ErrNoStyles, selectors)
	}
	doc := p.opts.Renderer.NewDocument(p.cfg.PageSize[0], p.cfg.PageSize[1])
	for _, st := range styles {
		if _, err := p.draw(st, doc); err != nil {
			return fmt.Errorf("%s: %w", st, err)
		}
	}
	return doc.Write(w, p.info(styles...))
}
