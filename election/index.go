package election

import (
	"fmt"
	"sort"
	"strings"
)

// Index is the arena of every referenceable record of a report, keyed by @id.
type Index struct {
	byID map[string]*Record
}

// NewIndex walks the decoded report and indexes every object carrying both
// @id and @type. Two records sharing an @id is a fatal consistency error.
func NewIndex(root any) (*Index, error) {
	ix := &Index{byID: make(map[string]*Record)}
	if err := ix.gather(root); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) gather(v any) error {
	switch ob := v.(type) {
	case map[string]any:
		id, _ := ob["@id"].(string)
		typ, _ := ob["@type"].(string)
		if id != "" && typ != "" {
			if prev, ok := ix.byID[id]; ok {
				return fmt.Errorf("%w %q shared by %s and %s", ErrDuplicateID, id, prev.Type, typ)
			}
			ix.byID[id] = NewRecord(ob)
		}
		// deterministic walk so that collision messages are stable
		keys := make([]string, 0, len(ob))
		for k := range ob {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := ix.gather(ob[k]); err != nil {
				return err
			}
		}
	case []any:
		for _, x := range ob {
			if err := ix.gather(x); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.byID) }

// Get resolves an identifier.
func (ix *Index) Get(id string) (*Record, error) {
	rec, ok := ix.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return rec, nil
}

// GetKind resolves an identifier and checks the kind of the record.
func (ix *Index) GetKind(id string, kinds ...Kind) (*Record, error) {
	rec, err := ix.Get(id)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if rec.Kind() == k {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", rec, ErrWrongType)
}

// GetAll resolves a list of identifiers, failing on the first missing one.
func (ix *Index) GetAll(ids []string) ([]*Record, error) {
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := ix.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GpUnitName returns the display name of a geo-political unit: its Name, or
// its external identifiers joined by commas.
func GpUnitName(gp *Record) (string, error) {
	if name := gp.Str("Name"); name != "" {
		return name, nil
	}
	if ext := gp.Strs("ExternalIdentifier"); len(ext) > 0 {
		return strings.Join(ext, ","), nil
	}
	switch gp.Kind() {
	case KindReportingUnit:
		return "", fmt.Errorf("%s: %q: %w", gp, "Name", ErrMissingField)
	case KindReportingDevice:
		return "", fmt.Errorf("%s: reporting device without name: %w", gp, ErrUnsupportedType)
	default:
		return "", fmt.Errorf("%s: not a gpunit: %w", gp, ErrWrongType)
	}
}
