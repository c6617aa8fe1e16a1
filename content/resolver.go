// Package content turns election report records into drawable layout blocks.
package content

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/brianolson/ballotstudio/election"
	"github.com/brianolson/ballotstudio/layout"
)

// ErrUnsupportedType is returned for record types that are known but have no
// drawable form (party contests and selections) and for unknown types.
var ErrUnsupportedType = election.ErrUnsupportedType

// Resolver builds drawables from report records. Drawables are memoized by
// @id, so content shared between ballot styles is built once per session.
// A Resolver belongs to one render session and is not safe for concurrent use.
type Resolver struct {
	ix    *election.Index
	log   *zap.Logger
	cache map[string]layout.Block
	marks election.Marks
}

// NewResolver indexes a decoded report. Duplicate identifiers are fatal.
func NewResolver(root any, log *zap.Logger) (*Resolver, error) {
	ix, err := election.NewIndex(root)
	if err != nil {
		return nil, err
	}
	return NewResolverForIndex(ix, log), nil
}

// NewResolverForIndex starts a session over an existing index.
func NewResolverForIndex(ix *election.Index, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{ix: ix, log: log, cache: make(map[string]layout.Block)}
}

// Index returns the identifier index of the session.
func (r *Resolver) Index() *election.Index { return r.ix }

// Resolve returns the raw record for an identifier.
func (r *Resolver) Resolve(id string) (*election.Record, error) {
	return r.ix.Get(id)
}

// SetMarks installs the mark overlay, nil clears it.
func (r *Resolver) SetMarks(m election.Marks) { r.marks = m }

// IsMarked reports whether a selection is drawn filled.
func (r *Resolver) IsMarked(selectionID string) bool {
	return r.marks != nil && r.marks.IsMarked(selectionID)
}

// DrawableFor resolves an identifier to its drawable.
func (r *Resolver) DrawableFor(id string) (layout.Block, error) {
	if b, ok := r.cache[id]; ok {
		return b, nil
	}
	rec, err := r.ix.Get(id)
	if err != nil {
		return nil, err
	}
	return r.DrawableForRecord(rec)
}

// DrawableForRecord builds the drawable for a record. Records without an @id
// (ordered content wrappers) are built on every call.
func (r *Resolver) DrawableForRecord(rec *election.Record) (layout.Block, error) {
	if rec.ID != "" {
		if b, ok := r.cache[rec.ID]; ok {
			return b, nil
		}
	}
	b, err := r.build(rec)
	if err != nil {
		return nil, err
	}
	if rec.ID != "" {
		r.cache[rec.ID] = b
		r.log.Debug("Built drawable", zap.String("id", rec.ID), zap.String("type", rec.Type))
	}
	return b, nil
}

func (r *Resolver) build(rec *election.Record) (layout.Block, error) {
	switch k := rec.Kind(); k {
	case election.KindCandidateContest, election.KindBallotMeasureContest, election.KindRetentionContest:
		return r.newContest(rec)
	case election.KindCandidateSelection:
		return r.newCandidateSelection(rec)
	case election.KindBallotMeasureSelection:
		return newMeasureSelection(rec)
	case election.KindHeader:
		return newHeader(rec)
	case election.KindOrderedContest:
		return r.newOrderedContest(rec)
	case election.KindOrderedHeader:
		id, err := rec.RequiredStr("HeaderId")
		if err != nil {
			return nil, err
		}
		if _, err := r.ix.GetKind(id, election.KindHeader); err != nil {
			return nil, err
		}
		return r.DrawableFor(id)
	case election.KindPartyContest, election.KindPartySelection:
		return nil, fmt.Errorf("%s: %w", rec, ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("%s: no drawable for %v: %w", rec, k, ErrUnsupportedType)
	}
}

// BallotStyleBlocks resolves the ordered content of a ballot style.
func (r *Resolver) BallotStyleBlocks(style *election.Record) ([]layout.Block, error) {
	items := style.Objects("OrderedContent")
	out := make([]layout.Block, 0, len(items))
	for i, it := range items {
		switch it.Kind() {
		case election.KindOrderedContest, election.KindOrderedHeader:
		default:
			return nil, fmt.Errorf("ordered content %d: %s: %w", i, it, ErrUnsupportedType)
		}
		b, err := r.DrawableForRecord(it)
		if err != nil {
			return nil, fmt.Errorf("ordered content %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
