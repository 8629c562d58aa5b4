package entities

import (
	"time"

	"ballotcore/internal/shared/record"
)

type ElectionStatus string

const (
	ElectionStatusDraft     ElectionStatus = "DRAFT"
	ElectionStatusActive    ElectionStatus = "ACTIVE"
	ElectionStatusPaused    ElectionStatus = "PAUSED"
	ElectionStatusCompleted ElectionStatus = "COMPLETED"
)

const (
	// Window bounds enforced at creation and update time.
	MinElectionDuration = time.Hour
	MaxElectionDuration = 720 * time.Hour
)

type Election struct {
	record.Record
	OrganizationID   string
	Title            string
	Description      string
	Status           ElectionStatus
	StartTime        time.Time
	EndTime          time.Time
	TotalVoters      int
	VoterTurnout     int
	MaxVotesPerVoter int
	AllowWriteIn     bool
	ResultsPublished bool
}

func (e Election) IsDraft() bool     { return e.Status == ElectionStatusDraft }
func (e Election) IsActive() bool    { return e.Status == ElectionStatusActive }
func (e Election) IsPaused() bool    { return e.Status == ElectionStatusPaused }
func (e Election) IsCompleted() bool { return e.Status == ElectionStatusCompleted }

func (e Election) HasStarted(now time.Time) bool {
	return !now.UTC().Before(e.StartTime.UTC())
}

func (e Election) HasEnded(now time.Time) bool {
	return !now.UTC().Before(e.EndTime.UTC())
}

// WindowOpen reports whether now falls inside [StartTime, EndTime).
func (e Election) WindowOpen(now time.Time) bool {
	return e.HasStarted(now) && !e.HasEnded(now)
}

// Ongoing reports whether votes may be accepted right now.
func (e Election) Ongoing(now time.Time) bool {
	return e.IsActive() && e.WindowOpen(now)
}

type Candidate struct {
	record.Record
	ElectionID string
	Name       string
	Position   string
	Active     bool
	WriteIn    bool
	VoteCount  int
}
