package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EnrollRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	MatricNumber   string `json:"matric_number"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	FullName       string `json:"full_name"`
}

type UpdateEntryRequest struct {
	MatricNumber string `json:"matric_number"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	FullName     string `json:"full_name"`
}

type EligibilityRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	MatricNumber   string `json:"matric_number"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
}

type EntryResponse struct {
	EntryID              string     `json:"entry_id"`
	OrganizationID       string     `json:"organization_id"`
	MatricNumber         string     `json:"matric_number,omitempty"`
	Email                string     `json:"email,omitempty"`
	Phone                string     `json:"phone,omitempty"`
	FullName             string     `json:"full_name,omitempty"`
	Used                 bool       `json:"used"`
	VotedAt              *time.Time `json:"voted_at,omitempty"`
	VerificationAttempts int        `json:"verification_attempts"`
	Locked               bool       `json:"locked"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
}
