package entities

import (
	"strings"
	"time"

	"ballotcore/internal/shared/record"
)

// LockoutThreshold is the voter-level verification attempt ceiling. Entries at
// or above it are ineligible until an admin resets their counter.
const LockoutThreshold = 5

// IdentifierField names the enrollable identifier columns.
type IdentifierField string

const (
	IdentifierMatricNumber IdentifierField = "matric_number"
	IdentifierEmail        IdentifierField = "email"
	IdentifierPhone        IdentifierField = "phone"
)

// Identifiers carries the lookup fields supplied at enrollment or
// verification time. At least one field must be populated.
type Identifiers struct {
	MatricNumber string
	Email        string
	Phone        string
}

func (i Identifiers) Normalized() Identifiers {
	return Identifiers{
		MatricNumber: strings.TrimSpace(i.MatricNumber),
		Email:        strings.ToLower(strings.TrimSpace(i.Email)),
		Phone:        strings.TrimSpace(i.Phone),
	}
}

func (i Identifiers) Empty() bool {
	normalized := i.Normalized()
	return normalized.MatricNumber == "" && normalized.Email == "" && normalized.Phone == ""
}

// VoterRegistryEntry is one enrolled voter within an organization. The used
// flag flips to true at most once, together with a committed vote.
type VoterRegistryEntry struct {
	record.Record
	OrganizationID          string
	MatricNumber            string
	Email                   string
	Phone                   string
	FullName                string
	Used                    bool
	VotedAt                 *time.Time
	VerificationAttempts    int
	LastVerificationAttempt *time.Time
}

func (e VoterRegistryEntry) Locked() bool {
	return e.VerificationAttempts >= LockoutThreshold
}

func (e VoterRegistryEntry) Identifiers() Identifiers {
	return Identifiers{
		MatricNumber: e.MatricNumber,
		Email:        e.Email,
		Phone:        e.Phone,
	}
}
