package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	OrganizationID   string    `json:"organization_id" validate:"required"`
	Title            string    `json:"title" validate:"required"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required"`
	MaxVotesPerVoter int       `json:"max_votes_per_voter" validate:"gte=0"`
	AllowWriteIn     bool      `json:"allow_write_in"`
}

type UpdateElectionRequest struct {
	Title            string    `json:"title" validate:"required"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required"`
	MaxVotesPerVoter int       `json:"max_votes_per_voter" validate:"gte=0"`
	AllowWriteIn     bool      `json:"allow_write_in"`
}

type SetTotalVotersRequest struct {
	TotalVoters int `json:"total_voters" validate:"gte=0"`
}

type ElectionResponse struct {
	ElectionID       string    `json:"election_id"`
	OrganizationID   string    `json:"organization_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Status           string    `json:"status"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	TotalVoters      int       `json:"total_voters"`
	VoterTurnout     int       `json:"voter_turnout"`
	MaxVotesPerVoter int       `json:"max_votes_per_voter"`
	AllowWriteIn     bool      `json:"allow_write_in"`
	ResultsPublished bool      `json:"results_published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type AddCandidateRequest struct {
	Name     string `json:"name" validate:"required"`
	Position string `json:"position"`
	WriteIn  bool   `json:"write_in"`
}

type UpdateCandidateRequest struct {
	Name     string `json:"name" validate:"required"`
	Position string `json:"position"`
}

type CandidateResponse struct {
	CandidateID string    `json:"candidate_id"`
	ElectionID  string    `json:"election_id"`
	Name        string    `json:"name"`
	Position    string    `json:"position,omitempty"`
	Active      bool      `json:"active"`
	WriteIn     bool      `json:"write_in"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}
