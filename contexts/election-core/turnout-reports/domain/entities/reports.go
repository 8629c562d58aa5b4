package entities

// CandidateTally is one row of an election summary.
type CandidateTally struct {
	CandidateID string
	Name        string
	Position    string
	Active      bool
	WriteIn     bool
	VoteCount   int
}

// ElectionSummary is the read model served to dashboards. TurnoutPct is 0
// when no voters are enrolled; LeadingCandidate is nil when no active
// candidate has received a vote tally yet.
type ElectionSummary struct {
	ElectionID       string
	OrganizationID   string
	Title            string
	Status           string
	TotalVotes       int
	TotalVoters      int
	TurnoutPct       int
	LeadingCandidate *CandidateTally
	Candidates       []CandidateTally
	ResultsPublished bool
}

// RegistrySummary aggregates enrollment state for one organization.
type RegistrySummary struct {
	OrganizationID  string
	TotalVoters     int
	VotedCount      int
	RemainingVoters int
	TurnoutPct      int
	LockedVoters    int
}
