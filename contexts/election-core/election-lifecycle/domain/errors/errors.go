package errors

import "errors"

var (
	ErrInvalidElectionInput  = errors.New("invalid election input")
	ErrInvalidCandidateInput = errors.New("invalid candidate input")
	ErrElectionNotFound      = errors.New("election not found")
	ErrCandidateNotFound     = errors.New("candidate not found")

	ErrElectionAlreadyActive    = errors.New("election is already active")
	ErrElectionCompleted        = errors.New("election already completed")
	ErrElectionNotActive        = errors.New("election is not active")
	ErrActivateBeforeStart      = errors.New("cannot activate election before its start time")
	ErrActivateAfterEnd         = errors.New("election end time has already passed")
	ErrCompleteBeforeEnd        = errors.New("cannot complete election before its end time")
	ErrElectionNotCompleted     = errors.New("only completed elections can have results published")
	ErrResultsAlreadyPublished  = errors.New("results are already published")
	ErrElectionNotDraft         = errors.New("only draft elections can be modified")
	ErrWriteInNotAllowed        = errors.New("election does not allow write-in candidates")
	ErrElectionWindowInvalid    = errors.New("election window is invalid")
	ErrElectionDurationTooShort = errors.New("election must last at least 1 hour")
	ErrElectionDurationTooLong  = errors.New("election cannot last more than 30 days")

	// ErrConflict covers lost optimistic-lock races with a concurrent
	// transition (manual action vs sweep).
	ErrConflict = errors.New("election state conflict")
)
