package entities

import (
	"strings"
	"time"

	"ballotcore/internal/shared/record"
)

// OTPChannel is the delivery channel configured by the identity policy.
type OTPChannel string

const (
	ChannelEmail OTPChannel = "EMAIL"
	ChannelSMS   OTPChannel = "SMS"
	ChannelNone  OTPChannel = "NONE"
)

// PurposeVoterVerification is the challenge purpose used by the voting flow.
const PurposeVoterVerification = "voter_verification"

const (
	DefaultOTPExpiryMinutes = 5
	DefaultMaxOTPAttempts   = 3
	DefaultCodeLength       = 6
)

// DefaultCodeAlphabet keeps codes numeric so they survive voice and SMS
// delivery unambiguously.
const DefaultCodeAlphabet = "0123456789"

// IdentityPolicy is the per-organization verification configuration. Exactly
// one policy is active per organization; locked policies are immutable and
// can only be superseded.
type IdentityPolicy struct {
	record.Record
	OrganizationID   string
	Name             string
	Description      string
	IdentifierFields []string
	OTPChannel       OTPChannel
	Locked           bool
	Active           bool
	OTPExpiryMinutes int
	MaxOTPAttempts   int
	CodeLength       int
}

func (p IdentityPolicy) RequiresOTP() bool {
	return p.OTPChannel != ChannelNone
}

func (p IdentityPolicy) Expiry() time.Duration {
	minutes := p.OTPExpiryMinutes
	if minutes <= 0 {
		minutes = DefaultOTPExpiryMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func (p IdentityPolicy) AttemptCeiling() int {
	if p.MaxOTPAttempts <= 0 {
		return DefaultMaxOTPAttempts
	}
	return p.MaxOTPAttempts
}

func (p IdentityPolicy) RequiresField(field string) bool {
	for _, candidate := range p.IdentifierFields {
		if strings.EqualFold(strings.TrimSpace(candidate), field) {
			return true
		}
	}
	return false
}

// OTPChallenge is a short-lived one-time code bound to an identifier and
// purpose. At most one unused, unexpired challenge exists per pair; issuing
// a new one invalidates prior ones.
type OTPChallenge struct {
	record.Record
	Identifier      string
	Code            string
	Channel         OTPChannel
	Purpose         string
	Attempts        int
	MaxAttempts     int
	Used            bool
	ExpiresAt       time.Time
	UsedAt          *time.Time
	OrganizationID  string
	VoterRegistryID string
}

func (c OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// LockedOut reports whether the attempt counter has passed the ceiling. The
// counter is incremented before this check, so "attempts > max" is the locked
// condition.
func (c OTPChallenge) LockedOut() bool {
	return c.Attempts > c.MaxAttempts
}

func (c OTPChallenge) Live(now time.Time) bool {
	return !c.Used && !c.Expired(now)
}
