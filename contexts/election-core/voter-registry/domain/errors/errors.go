package errors

import "errors"

var (
	ErrInvalidEntryInput     = errors.New("invalid voter registry input")
	ErrNoIdentifier          = errors.New("at least one identifier is required")
	ErrEntryNotFound         = errors.New("voter registry entry not found")
	ErrDuplicateMatricNumber = errors.New("matric_number already exists for organization")
	ErrDuplicateEmail        = errors.New("email already exists for organization")
	ErrDuplicatePhone        = errors.New("phone already exists for organization")
	ErrEntryAlreadyUsed      = errors.New("voter has already voted")
	ErrVoterLocked           = errors.New("voter is locked out by verification attempts")
	ErrConflict              = errors.New("voter registry conflict")
)
