package entities

import (
	"time"

	"ballotcore/internal/shared/record"
)

// Vote is an immutable ledger row linking one registry entry to one candidate
// within one election. Uniqueness of (ElectionID, VoterRegistryID) is carried
// by the storage layer, not by application checks alone.
type Vote struct {
	record.Record
	ElectionID         string
	CandidateID        string
	VoterRegistryID    string
	CastAt             time.Time
	IPAddress          string
	UserAgent          string
	Anonymous          bool
	WriteInName        string
	VerificationMethod string
}
