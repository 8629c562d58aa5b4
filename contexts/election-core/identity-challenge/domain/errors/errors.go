package errors

import "errors"

var (
	ErrInvalidPolicyInput    = errors.New("invalid identity policy input")
	ErrPolicyNotFound        = errors.New("identity policy not found")
	ErrPolicyLocked          = errors.New("identity policy is locked")
	ErrNoActivePolicy        = errors.New("no active identity policy for organization")
	ErrMissingIdentifier     = errors.New("required identifier field is missing")
	ErrInvalidChallengeInput = errors.New("invalid challenge input")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeLocked       = errors.New("challenge attempt limit exceeded")
	ErrChallengeExpired      = errors.New("challenge has expired")
	ErrChallengeUsed         = errors.New("challenge already used")
	ErrCodeMismatch          = errors.New("invalid verification code")
	ErrVoterNotFound         = errors.New("no matching voter for identifiers")
	ErrVoterAlreadyVoted     = errors.New("voter has already voted")
	ErrVoterLocked           = errors.New("voter is locked out by verification attempts")
	ErrConflict              = errors.New("identity challenge conflict")
)
