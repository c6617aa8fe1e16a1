package election

// Type discriminators used in the @type field of election report records.
const (
	TypeBallotMeasureContest   = "ElectionResults.BallotMeasureContest"
	TypeBallotMeasureSelection = "ElectionResults.BallotMeasureSelection"
	TypeBallotStyle            = "ElectionResults.BallotStyle"
	TypeCandidate              = "ElectionResults.Candidate"
	TypeCandidateContest       = "ElectionResults.CandidateContest"
	TypeCandidateSelection     = "ElectionResults.CandidateSelection"
	TypeCoalition              = "ElectionResults.Coalition"
	TypeElection               = "ElectionResults.Election"
	TypeElectionReport         = "ElectionResults.ElectionReport"
	TypeHeader                 = "ElectionResults.Header"
	TypeOffice                 = "ElectionResults.Office"
	TypeOrderedContest         = "ElectionResults.OrderedContest"
	TypeOrderedHeader          = "ElectionResults.OrderedHeader"
	TypeParty                  = "ElectionResults.Party"
	TypePartyContest           = "ElectionResults.PartyContest"
	TypePartySelection         = "ElectionResults.PartySelection"
	TypePerson                 = "ElectionResults.Person"
	TypeReportingDevice        = "ElectionResults.ReportingDevice"
	TypeReportingUnit          = "ElectionResults.ReportingUnit"
	TypeRetentionContest       = "ElectionResults.RetentionContest"
)

// Kind is the closed set of record kinds the layout code knows about.
type Kind int

const (
	KindUnknown Kind = iota
	KindBallotMeasureContest
	KindBallotMeasureSelection
	KindBallotStyle
	KindCandidate
	KindCandidateContest
	KindCandidateSelection
	KindCoalition
	KindElection
	KindElectionReport
	KindHeader
	KindOffice
	KindOrderedContest
	KindOrderedHeader
	KindParty
	KindPartyContest
	KindPartySelection
	KindPerson
	KindReportingDevice
	KindReportingUnit
	KindRetentionContest
)

var kindByType = map[string]Kind{
	TypeBallotMeasureContest:   KindBallotMeasureContest,
	TypeBallotMeasureSelection: KindBallotMeasureSelection,
	TypeBallotStyle:            KindBallotStyle,
	TypeCandidate:              KindCandidate,
	TypeCandidateContest:       KindCandidateContest,
	TypeCandidateSelection:     KindCandidateSelection,
	TypeCoalition:              KindCoalition,
	TypeElection:               KindElection,
	TypeElectionReport:         KindElectionReport,
	TypeHeader:                 KindHeader,
	TypeOffice:                 KindOffice,
	TypeOrderedContest:         KindOrderedContest,
	TypeOrderedHeader:          KindOrderedHeader,
	TypeParty:                  KindParty,
	TypePartyContest:           KindPartyContest,
	TypePartySelection:         KindPartySelection,
	TypePerson:                 KindPerson,
	TypeReportingDevice:        KindReportingDevice,
	TypeReportingUnit:          KindReportingUnit,
	TypeRetentionContest:       KindRetentionContest,
}

// KindOf maps a @type discriminator to its Kind, KindUnknown when not recognized.
func KindOf(typ string) Kind {
	return kindByType[typ]
}

func (k Kind) String() string {
	for typ, kind := range kindByType {
		if kind == k {
			return typ
		}
	}
	return "unknown"
}

// Election types, see NIST 1500-100 ElectionType.
const (
	ElectionGeneral               = "general"
	ElectionOther                 = "other"
	ElectionPartisanPrimaryClosed = "partisan-primary-closed"
	ElectionPartisanPrimaryOpen   = "partisan-primary-open"
	ElectionPrimary               = "primary"
	ElectionRunoff                = "runoff"
	ElectionSpecial               = "special"
)

var electionTypeTitles = map[string]string{
	ElectionGeneral:               "General Election",
	ElectionPartisanPrimaryClosed: "Primary Election",
	ElectionPartisanPrimaryOpen:   "Primary Election",
	ElectionPrimary:               "Primary Election",
	ElectionRunoff:                "Runoff Election",
	ElectionSpecial:               "Special Election",
}

// Vote variations with a canned ballot instruction.
const (
	VoteApproval  = "approval"
	VotePlurality = "plurality"
	VoteNofM      = "n-of-m"
)
