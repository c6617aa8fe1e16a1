package election

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Report is a decoded ElectionReport with its identifier index.
type Report struct {
	Root      *Record
	Index     *Index
	Elections []*Election
}

// Election is one ElectionResults.Election of a report.
type Election struct {
	Record       *Record
	Name         string
	StartDate    string
	EndDate      string
	Type         string
	OtherType    string
	BallotStyles []*Record
}

// Decode parses an election report.
func Decode(r io.Reader) (*Report, error) {
	var root map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("unable to decode election report: %w", err)
	}
	ix, err := NewIndex(root)
	if err != nil {
		return nil, err
	}
	rep := &Report{Root: NewRecord(root), Index: ix}
	for _, el := range rep.Root.Objects("Election") {
		e, err := newElection(el)
		if err != nil {
			return nil, err
		}
		rep.Elections = append(rep.Elections, e)
	}
	return rep, nil
}

// Load reads an election report from a file, "-" means stdin. Files ending
// in .gz are decompressed.
func Load(path string) (*Report, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return Decode(in)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to read gzip %s: %w", path, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{zr, f}, nil
}

func newElection(rec *Record) (*Election, error) {
	e := &Election{
		Record:       rec,
		Name:         rec.Str("Name"),
		StartDate:    rec.Str("StartDate"),
		EndDate:      rec.Str("EndDate"),
		Type:         rec.Str("Type"),
		OtherType:    rec.Str("OtherType"),
		BallotStyles: rec.Objects("BallotStyle"),
	}
	if e.Type == "" {
		return nil, fmt.Errorf("election %q: %q: %w", e.Name, "Type", ErrMissingField)
	}
	return e, nil
}

// TypeTitle returns the human readable election type, e.g. "General Election".
func (e *Election) TypeTitle() string {
	if e.Type == ElectionOther {
		return e.OtherType
	}
	if t, ok := electionTypeTitles[e.Type]; ok {
		return t
	}
	return e.Type
}

// Date returns the end date, or the start date when there is no end date.
func (e *Election) Date() string {
	if e.EndDate != "" {
		return e.EndDate
	}
	return e.StartDate
}

// Dates returns "start - end" when they differ, the start date otherwise.
func (e *Election) Dates() string {
	if e.EndDate != "" && e.StartDate != e.EndDate {
		return e.StartDate + " - " + e.EndDate
	}
	return e.StartDate
}

// Marks is the scanner's two level map: contest @id -> selection @id -> marked.
type Marks map[string]map[string]bool

// IsMarked reports whether a selection is marked in any contest. The scanner
// output may use a placeholder contest key, so all contests are searched.
func (m Marks) IsMarked(selectionID string) bool {
	for _, sels := range m {
		if sels[selectionID] {
			return true
		}
	}
	return false
}

// DecodeMarks parses a marks document.
func DecodeMarks(data []byte) (Marks, error) {
	var m Marks
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("unable to decode marks: %w", err)
	}
	return m, nil
}

// LoadMarks reads a marks document from a file, "-" means stdin.
func LoadMarks(path string) (Marks, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("unable to read marks: %w", err)
	}
	return DecodeMarks(data)
}
