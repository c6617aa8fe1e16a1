package content

import (
	"fmt"
	"strings"

	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/layout"
)

// selection is a drawable row of a contest.
type selection interface {
	layout.Block
	IsWriteIn() bool
}

// CandidateSelection is a candidate row: bubble, ballot name, party subtext
// and, for write-ins, a label and a dashed line to write on.
type CandidateSelection struct {
	id      string
	name    string
	subtext string
	writeIn bool
}

var _ selection = (*CandidateSelection)(nil)

func (r *Resolver) newCandidateSelection(rec *election.Record) (*CandidateSelection, error) {
	cs := &CandidateSelection{id: rec.ID, writeIn: rec.Bool("IsWriteIn")}
	candidates := make([]*election.Record, 0)
	for _, cid := range rec.Strs("CandidateIds") {
		c, err := r.ix.GetKind(cid, election.KindCandidate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rec, err)
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 && !cs.writeIn {
		return nil, fmt.Errorf("%s: %q: %w", rec, "CandidateIds", election.ErrMissingField)
	}
	if len(candidates) > 0 {
		name, err := candidates[0].RequiredStr("BallotName")
		if err != nil {
			return nil, err
		}
		cs.name = name
	}
	sub, err := r.candidateSubtext(rec, candidates)
	if err != nil {
		return nil, err
	}
	cs.subtext = sub
	return cs, nil
}

// candidateSubtext names the endorsing parties, or else the parties of the
// candidates' persons.
func (r *Resolver) candidateSubtext(rec *election.Record, candidates []*election.Record) (string, error) {
	var names []string
	if ids := rec.Strs("EndorsementPartyIds"); len(ids) > 0 {
		for _, id := range ids {
			p, err := r.ix.GetKind(id, election.KindParty, election.KindCoalition)
			if err != nil {
				return "", fmt.Errorf("%s: endorsement: %w", rec, err)
			}
			names = append(names, p.Str("Name"))
		}
		return strings.Join(names, ", "), nil
	}
	for _, c := range candidates {
		pid := c.Str("PersonId")
		if pid == "" {
			continue
		}
		person, err := r.ix.GetKind(pid, election.KindPerson)
		if err != nil {
			return "", fmt.Errorf("%s: %w", c, err)
		}
		partyID := person.Str("PartyId")
		if partyID == "" {
			continue
		}
		party, err := r.ix.GetKind(partyID, election.KindParty, election.KindCoalition)
		if err != nil {
			return "", fmt.Errorf("%s: %w", person, err)
		}
		if n := party.Str("Name"); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", "), nil
}

func (cs *CandidateSelection) ID() string      { return cs.id }
func (cs *CandidateSelection) IsWriteIn() bool { return cs.writeIn }
func (cs *CandidateSelection) Name() string    { return cs.name }
func (cs *CandidateSelection) Subtext() string { return cs.subtext }

func (cs *CandidateSelection) Height(env *layout.Env, width float64) (float64, error) {
	cfg := env.Config
	textW := width - cfg.BubbleColumn()
	nameH, err := env.Text.Height(cs.name, cfg.Candidate, textW)
	if err != nil {
		return 0, err
	}
	subH, err := env.Text.Height(cs.subtext, cfg.Candsub, textW)
	if err != nil {
		return 0, err
	}
	h := nameH + subH + cfg.SelectionPad
	if cs.writeIn {
		h += cfg.Candsub.Leading + cfg.WriteInHeight
	}
	return h, nil
}

func (cs *CandidateSelection) Draw(env *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	cfg := env.Config
	target, err := drawBubble(env, s, cs.id, x, yTop)
	if err != nil {
		return nil, err
	}
	textX := x + cfg.BubbleColumn()
	textW := width - cfg.BubbleColumn()
	pos := yTop
	s.SetFillColor(layout.Black)
	h, err := env.Text.DrawParagraph(s, cs.name, cfg.Candidate, textX, pos, textW)
	if err != nil {
		return nil, err
	}
	pos -= h
	if h, err = env.Text.DrawParagraph(s, cs.subtext, cfg.Candsub, textX, pos, textW); err != nil {
		return nil, err
	}
	pos -= h
	if cs.writeIn {
		s.Text(textX, pos-cfg.Candsub.Size, "write-in:", cfg.Candsub.Font, cfg.Candsub.Size, layout.AlignLeft)
		pos -= cfg.Candsub.Leading + cfg.WriteInHeight
		s.SetStrokeColor(layout.Black)
		s.SetLineWidth(0.5)
		s.SetDash(4, 4)
		s.Line(textX, pos+0.25, x+width, pos+0.25)
		s.SetDash()
	}
	drawSeparator(s, textX, pos-cfg.SelectionPad, x+width)
	return layout.Targets{cs.id: target}, nil
}

// MeasureSelection is a ballot measure choice such as "Yes" or "No".
type MeasureSelection struct {
	id   string
	text string
}

var _ selection = (*MeasureSelection)(nil)

func newMeasureSelection(rec *election.Record) (*MeasureSelection, error) {
	text, err := rec.RequiredStr("Selection")
	if err != nil {
		return nil, err
	}
	return &MeasureSelection{id: rec.ID, text: text}, nil
}

func (ms *MeasureSelection) ID() string      { return ms.id }
func (ms *MeasureSelection) IsWriteIn() bool { return false }
func (ms *MeasureSelection) Text() string    { return ms.text }

func (ms *MeasureSelection) Height(env *layout.Env, width float64) (float64, error) {
	h, err := env.Text.Height(ms.text, env.Config.Candidate, width-env.Config.BubbleColumn())
	if err != nil {
		return 0, err
	}
	return h + env.Config.SelectionPad, nil
}

func (ms *MeasureSelection) Draw(env *layout.Env, s layout.Surface, x, yTop, width float64) (layout.Targets, error) {
	cfg := env.Config
	target, err := drawBubble(env, s, ms.id, x, yTop)
	if err != nil {
		return nil, err
	}
	textX := x + cfg.BubbleColumn()
	s.SetFillColor(layout.Black)
	h, err := env.Text.DrawParagraph(s, ms.text, cfg.Candidate, textX, yTop, width-cfg.BubbleColumn())
	if err != nil {
		return nil, err
	}
	drawSeparator(s, textX, yTop-h-cfg.SelectionPad, x+width)
	return layout.Targets{ms.id: target}, nil
}
