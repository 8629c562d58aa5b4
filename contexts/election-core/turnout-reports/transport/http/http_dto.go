package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateTallyResponse struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	Active      bool   `json:"active"`
	WriteIn     bool   `json:"write_in"`
	VoteCount   int    `json:"vote_count"`
}

type ElectionSummaryResponse struct {
	ElectionID       string                   `json:"election_id"`
	OrganizationID   string                   `json:"organization_id"`
	Title            string                   `json:"title"`
	Status           string                   `json:"status"`
	TotalVotes       int                      `json:"total_votes"`
	TotalVoters      int                      `json:"total_voters"`
	TurnoutPct       int                      `json:"turnout_pct"`
	LeadingCandidate *CandidateTallyResponse  `json:"leading_candidate,omitempty"`
	Candidates       []CandidateTallyResponse `json:"candidates"`
	ResultsPublished bool                     `json:"results_published"`
}

type RegistrySummaryResponse struct {
	OrganizationID  string `json:"organization_id"`
	TotalVoters     int    `json:"total_voters"`
	VotedCount      int    `json:"voted_count"`
	RemainingVoters int    `json:"remaining_voters"`
	TurnoutPct      int    `json:"turnout_pct"`
	LockedVoters    int    `json:"locked_voters"`
}
