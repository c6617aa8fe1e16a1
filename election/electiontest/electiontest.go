// Package electiontest builds small election reports for tests.
package electiontest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/brianolson/ballotstudio/election"
)

// Object is one JSON object of a report.
type Object = map[string]any

// Builder assembles an ElectionReport document.
type Builder struct {
	root     Object
	election Object
}

// New starts a general election report with one reporting unit "gp-city".
func New(name string) *Builder {
	el := Object{
		"@type":     election.TypeElection,
		"Name":      name,
		"Type":      election.ElectionGeneral,
		"StartDate": "2026-11-03",
		"EndDate":   "2026-11-03",
	}
	root := Object{
		"@type":    election.TypeElectionReport,
		"Election": []any{el},
		"GpUnit":   []any{ReportingUnit("gp-city", "Springfield")},
	}
	return &Builder{root: root, election: el}
}

func appendTo(ob Object, key string, items ...Object) {
	list, _ := ob[key].([]any)
	for _, it := range items {
		list = append(list, it)
	}
	ob[key] = list
}

// Set assigns an election field.
func (b *Builder) Set(key string, v any) *Builder {
	b.election[key] = v
	return b
}

// Add appends objects to a list field of the election (Contest, Candidate, Header, BallotStyle).
func (b *Builder) Add(key string, items ...Object) *Builder {
	appendTo(b.election, key, items...)
	return b
}

// AddRoot appends objects to a list field of the report (GpUnit, Party, Person).
func (b *Builder) AddRoot(key string, items ...Object) *Builder {
	appendTo(b.root, key, items...)
	return b
}

// Style adds a ballot style for the given geo units.
func (b *Builder) Style(gpUnits []string, ext []string, content ...Object) *Builder {
	bs := Object{
		"@type":              election.TypeBallotStyle,
		"GpUnitIds":          strs(gpUnits),
		"ExternalIdentifier": strs(ext),
	}
	list := make([]any, len(content))
	for i, c := range content {
		list[i] = c
	}
	bs["OrderedContent"] = list
	return b.Add("BallotStyle", bs)
}

// Map returns the raw document.
func (b *Builder) Map() Object { return b.root }

// JSON encodes the document.
func (b *Builder) JSON(t testing.TB) []byte {
	t.Helper()
	data, err := json.Marshal(b.root)
	if err != nil {
		t.Fatalf("unable to encode report: %v", err)
	}
	return data
}

// Report decodes the document the way a report file is read.
func (b *Builder) Report(t testing.TB) *election.Report {
	t.Helper()
	rep, err := election.Decode(bytes.NewReader(b.JSON(t)))
	if err != nil {
		t.Fatalf("unable to decode report: %v", err)
	}
	return rep
}

func strs(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

func ReportingUnit(id, name string) Object {
	return Object{"@id": id, "@type": election.TypeReportingUnit, "Name": name}
}

func Party(id, name string) Object {
	return Object{"@id": id, "@type": election.TypeParty, "Name": name}
}

func Person(id, partyID string) Object {
	p := Object{"@id": id, "@type": election.TypePerson}
	if partyID != "" {
		p["PartyId"] = partyID
	}
	return p
}

func Office(id, name string) Object {
	return Object{"@id": id, "@type": election.TypeOffice, "Name": name}
}

// Candidate with a ballot name; personID may be empty.
func Candidate(id, ballotName, personID string) Object {
	c := Object{"@id": id, "@type": election.TypeCandidate, "BallotName": ballotName}
	if personID != "" {
		c["PersonId"] = personID
	}
	return c
}

func CandidateSelection(id string, candidateIDs ...string) Object {
	return Object{"@id": id, "@type": election.TypeCandidateSelection, "CandidateIds": strs(candidateIDs)}
}

func WriteIn(id string) Object {
	return Object{"@id": id, "@type": election.TypeCandidateSelection, "IsWriteIn": true}
}

func MeasureSelection(id, text string) Object {
	return Object{"@id": id, "@type": election.TypeBallotMeasureSelection, "Selection": text}
}

// CandidateContest with a plurality vote.
func CandidateContest(id, title string, selections ...Object) Object {
	return contest(id, election.TypeCandidateContest, title, selections, Object{
		"VoteVariation": election.VotePlurality,
		"VotesAllowed":  1,
	})
}

func MeasureContest(id, title string, selections ...Object) Object {
	return contest(id, election.TypeBallotMeasureContest, title, selections, nil)
}

func RetentionContest(id, candidateID string, selections ...Object) Object {
	return contest(id, election.TypeRetentionContest, "", selections, Object{"CandidateId": candidateID})
}

func contest(id, typ, title string, selections []Object, extra Object) Object {
	c := Object{
		"@id":                id,
		"@type":              typ,
		"Name":               id,
		"ElectionDistrictId": "gp-city",
	}
	if title != "" {
		c["BallotTitle"] = title
	}
	sels := make([]any, len(selections))
	for i, s := range selections {
		sels[i] = s
	}
	c["ContestSelection"] = sels
	for k, v := range extra {
		c[k] = v
	}
	return c
}

func Header(id, name string) Object {
	return Object{"@id": id, "@type": election.TypeHeader, "Name": name}
}

// OrderedContest references a contest, optionally reordering its selections.
func OrderedContest(contestID string, selectionIDs ...string) Object {
	o := Object{"@type": election.TypeOrderedContest, "ContestId": contestID}
	if len(selectionIDs) > 0 {
		o["OrderedContestSelectionIds"] = strs(selectionIDs)
	}
	return o
}

func OrderedHeader(headerID string) Object {
	return Object{"@type": election.TypeOrderedHeader, "HeaderId": headerID}
}
