package errors

import "errors"

var (
	ErrInvalidReportInput = errors.New("report input is invalid")
	ErrElectionNotFound   = errors.New("election not found")
)
