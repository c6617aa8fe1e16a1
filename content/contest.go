package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/layout"
)

// Contest draws a candidate, ballot measure or retention contest: a title
// band, a subtitle band, an optional summary and one row per selection.
type Contest struct {
	id         string
	kind       election.Kind
	title      string
	subtitle   string
	summary    string
	selections []selection
}

var _ layout.Block = (*Contest)(nil)

var voteVariationText = map[string]string{
	election.VoteApproval:  "Vote for as many as you like",
	election.VotePlurality: "Vote for one",
	election.VoteNofM:      "Vote for up to {VotesAllowed}",
}

func (r *Resolver) newContest(rec *election.Record) (*Contest, error) {
	c := &Contest{
		id:       rec.ID,
		kind:     rec.Kind(),
		title:    rec.Str("BallotTitle"),
		subtitle: rec.Str("BallotSubTitle"),
	}
	if c.title == "" && c.kind == election.KindRetentionContest {
		t, err := r.retentionTitle(rec)
		if err != nil {
			return nil, err
		}
		c.title = t
	}
	if c.title == "" {
		name, err := rec.RequiredStr("Name")
		if err != nil {
			return nil, err
		}
		c.title = name
	}
	if c.subtitle == "" {
		c.subtitle = voteInstruction(rec)
	}
	if c.kind == election.KindRetentionContest {
		c.summary = rec.Str("SummaryText")
	}
	for _, sr := range rec.Objects("ContestSelection") {
		b, err := r.DrawableForRecord(sr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rec, err)
		}
		sel, ok := b.(selection)
		if !ok {
			return nil, fmt.Errorf("%s: selection %s: %w", rec, sr, election.ErrWrongType)
		}
		c.selections = append(c.selections, sel)
	}
	return c, nil
}

func (r *Resolver) retentionTitle(rec *election.Record) (string, error) {
	var names []string
	for _, id := range rec.Strs("OfficeIds") {
		o, err := r.ix.GetKind(id, election.KindOffice)
		if err != nil {
			return "", fmt.Errorf("%s: %w", rec, err)
		}
		if n := o.Str("Name"); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "Judge Retention", nil
	}
	return "Judge Retention:\n" + strings.Join(names, ", "), nil
}

func voteInstruction(rec *election.Record) string {
	text := voteVariationText[rec.Str("VoteVariation")]
	if n, ok := rec.Int("VotesAllowed"); ok {
		text = strings.ReplaceAll(text, "{VotesAllowed}", strconv.Itoa(n))
	}
	return text
}

func (c *Contest) ID() string          { return c.id }
func (c *Contest) Kind() election.Kind { return c.kind }
func (c *Contest) Title() string       { return c.title }
func (c *Contest) Subtitle() string    { return c.subtitle }

// SelectionIDs lists the selections in presentation order.
func (c *Contest) SelectionIDs() []string {
	out := make([]string, len(c.selections))
	for i, s := range c.selections {
		out[i] = s.ID()
	}
	return out
}

// withOrder returns the contest with its selections presented in the given order.
func (c *Contest) withOrder(ids []string) (*Contest, error) {
	byID := make(map[string]selection, len(c.selections))
	for _, s := range c.selections {
		byID[s.ID()] = s
	}
	out := *c
	out.selections = make([]selection, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("contest %s has no selection %q: %w", c.id, id, election.ErrNotFound)
		}
		out.selections = append(out.selections, s)
	}
	return &out, nil
}

// rowHeights returns the height each selection row advances. Non write-in rows
// share the tallest non write-in height; write-ins use the larger of that and
// their own. A contest of only write-ins has no common height.
func (c *Contest) rowHeights(env *layout.Env, width float64) ([]float64, error) {
	own := make([]float64, len(c.selections))
	common := 0.0
	for i, s := range c.selections {
		h, err := s.Height(env, width)
		if err != nil {
			return nil, err
		}
		own[i] = h
		if !s.IsWriteIn() {
			common = max(common, h)
		}
	}
	for i := range own {
		own[i] = max(common, own[i])
	}
	return own, nil
}

// headHeight is everything above the first selection row, top rule included.
func (c *Contest) headHeight(env *layout.Env, width float64) (float64, error) {
	cfg := env.Config
	titleH, err := env.Text.Height(c.title, cfg.Title, width)
	if err != nil {
		return 0, err
	}
	summaryH, err := env.Text.Height(c.summary, cfg.Summary, width)
	if err != nil {
		return 0, err
	}
	return topBorder + titleH + cfg.Subtitle.Leading + summaryH + cfg.ContestGap, nil
}

func (c *Contest) Height(env *layout.Env, width float64) (float64, error) {
	h, err := c.headHeight(env, width)
	if err != nil {
		return 0, err
	}
	rows, err := c.rowHeights(env, width-bottomBorder)
	if err != nil {
		return 0, err
	}
	for _, rh := range rows {
		h += rh
	}
	return h + env.Config.ContestPad + bottomBorder, nil
}

func (c *Contest) Draw(env *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	cfg := env.Config
	pos := yTop - topBorder

	titleH, err := env.Text.Height(c.title, cfg.Title, width)
	if err != nil {
		return nil, err
	}
	drawBand(s, cfg.TitleBackground, x, pos, width, titleH)
	if _, err := env.Text.DrawParagraph(s, c.title, cfg.Title, x, pos, width); err != nil {
		return nil, err
	}
	pos -= titleH

	drawBand(s, cfg.SubtitleBackground, x, pos, width, cfg.Subtitle.Leading)
	if c.subtitle != "" {
		s.Text(x+cfg.Subtitle.Indent, pos-cfg.Subtitle.Size, c.subtitle, cfg.Subtitle.Font, cfg.Subtitle.Size, layout.AlignLeft)
	}
	pos -= cfg.Subtitle.Leading

	if c.summary != "" {
		h, err := env.Text.DrawParagraph(s, c.summary, cfg.Summary, x, pos, width)
		if err != nil {
			return nil, err
		}
		pos -= h
	}
	pos -= cfg.ContestGap

	rows, err := c.rowHeights(env, width-bottomBorder)
	if err != nil {
		return nil, err
	}
	targets := make(layout.Targets, len(c.selections))
	for i, sel := range c.selections {
		t, err := sel.Draw(env, s, x+bottomBorder, pos, width-bottomBorder)
		if err != nil {
			return nil, fmt.Errorf("contest %s: %w", c.id, err)
		}
		for id, box := range t {
			targets[id] = box
		}
		pos -= rows[i]
	}
	pos -= cfg.ContestPad
	drawFrame(s, x, yTop, pos-bottomBorder, width)
	return targets, nil
}

func (r *Resolver) newOrderedContest(rec *election.Record) (*Contest, error) {
	id, err := rec.RequiredStr("ContestId")
	if err != nil {
		return nil, err
	}
	if _, err := r.ix.GetKind(id, election.KindCandidateContest, election.KindBallotMeasureContest,
		election.KindRetentionContest); err != nil {
		return nil, err
	}
	b, err := r.DrawableFor(id)
	if err != nil {
		return nil, err
	}
	c := b.(*Contest)
	order := rec.Strs("OrderedContestSelectionIds")
	if len(order) == 0 {
		return c, nil
	}
	return c.withOrder(order)
}
