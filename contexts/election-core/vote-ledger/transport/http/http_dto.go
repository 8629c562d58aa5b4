package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	ElectionID         string `json:"election_id" validate:"required"`
	CandidateID        string `json:"candidate_id" validate:"required"`
	VoterRegistryID    string `json:"voter_registry_id" validate:"required"`
	OrganizationID     string `json:"organization_id" validate:"required"`
	VerificationMethod string `json:"verification_method"`
	IPAddress          string `json:"ip_address"`
	UserAgent          string `json:"user_agent"`
	Anonymous          bool   `json:"anonymous"`
	WriteInName        string `json:"write_in_name"`
}

type VoteResponse struct {
	VoteID             string    `json:"vote_id"`
	ElectionID         string    `json:"election_id"`
	CandidateID        string    `json:"candidate_id"`
	VoterRegistryID    string    `json:"voter_registry_id,omitempty"`
	CastAt             time.Time `json:"cast_at"`
	Anonymous          bool      `json:"anonymous"`
	WriteInName        string    `json:"write_in_name,omitempty"`
	VerificationMethod string    `json:"verification_method,omitempty"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
	Total int            `json:"total"`
}

type HasVotedResponse struct {
	ElectionID      string `json:"election_id"`
	VoterRegistryID string `json:"voter_registry_id"`
	HasVoted        bool   `json:"has_voted"`
}
