package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePolicyRequest struct {
	OrganizationID   string   `json:"organization_id" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description"`
	IdentifierFields []string `json:"identifier_fields" validate:"required,min=1"`
	OTPChannel       string   `json:"otp_channel" validate:"required,oneof=EMAIL SMS NONE"`
	OTPExpiryMinutes int      `json:"otp_expiry_minutes" validate:"gte=0"`
	MaxOTPAttempts   int      `json:"max_otp_attempts" validate:"gte=0"`
	CodeLength       int      `json:"code_length" validate:"gte=0"`
}

type UpdatePolicyRequest struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description"`
	IdentifierFields []string `json:"identifier_fields" validate:"required,min=1"`
	OTPChannel       string   `json:"otp_channel" validate:"required,oneof=EMAIL SMS NONE"`
	OTPExpiryMinutes int      `json:"otp_expiry_minutes" validate:"gte=0"`
	MaxOTPAttempts   int      `json:"max_otp_attempts" validate:"gte=0"`
	CodeLength       int      `json:"code_length" validate:"gte=0"`
}

type PolicyResponse struct {
	PolicyID         string    `json:"policy_id"`
	OrganizationID   string    `json:"organization_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	IdentifierFields []string  `json:"identifier_fields"`
	OTPChannel       string    `json:"otp_channel"`
	Locked           bool      `json:"locked"`
	Active           bool      `json:"active"`
	OTPExpiryMinutes int       `json:"otp_expiry_minutes"`
	MaxOTPAttempts   int       `json:"max_otp_attempts"`
	CodeLength       int       `json:"code_length"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PolicyListResponse struct {
	Items []PolicyResponse `json:"items"`
}

type VerifyVoterRequest struct {
	OrganizationID string            `json:"organization_id" validate:"required"`
	Identifiers    map[string]string `json:"identifiers" validate:"required,min=1"`
}

type PendingVerificationResponse struct {
	VoterRegistryID string `json:"voter_registry_id"`
	Identifier      string `json:"identifier"`
	OTPRequired     bool   `json:"otp_required"`
	Channel         string `json:"channel"`
}

type ConfirmOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required"`
}

type VerifiedVoterResponse struct {
	VoterRegistryID    string `json:"voter_registry_id"`
	OrganizationID     string `json:"organization_id"`
	VerificationMethod string `json:"verification_method"`
}

type ResendRequest struct {
	OrganizationID string `json:"organization_id"`
	Identifier     string `json:"identifier" validate:"required"`
}

type ChallengeResponse struct {
	ChallengeID string    `json:"challenge_id"`
	Identifier  string    `json:"identifier"`
	Channel     string    `json:"channel"`
	Purpose     string    `json:"purpose"`
	ExpiresAt   time.Time `json:"expires_at"`
}
