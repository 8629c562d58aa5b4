package errors

import "errors"

var (
	ErrInvalidVoteInput = errors.New("vote input is invalid")

	ErrElectionNotFound = errors.New("election not found")
	ErrElectionNotOpen  = errors.New("election not open")

	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrCandidateNotInElection = errors.New("candidate does not belong to this election")
	ErrCandidateInactive      = errors.New("candidate is not active")
	ErrWriteInNotAllowed      = errors.New("write-in votes are not allowed")

	ErrVoterNotFound = errors.New("voter registry entry not found")
	ErrCrossTenant   = errors.New("voter and election belong to different organizations")
	ErrVoterLocked   = errors.New("voter is locked out of verification")

	ErrAlreadyVoted   = errors.New("voter has already voted in this election")
	ErrNoActivePolicy = errors.New("no active identity policy for organization")

	ErrVoteNotFound = errors.New("vote not found")
	ErrConflict     = errors.New("vote ledger conflict")
)
