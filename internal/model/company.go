// Package model defines domain entities for the application.
package model

import "time"

// EmailStatus represents the outreach state of a company record.
type EmailStatus string

const (
	EmailStatusNotSent EmailStatus = "not_sent"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// IsValid checks if the email status is a known value.
func (s EmailStatus) IsValid() bool {
	return s == EmailStatusNotSent || s == EmailStatusSent || s == EmailStatusFailed
}

// Company is a prospect record produced by a search.
// Only EmailStatus and EmailSentAt change after creation.
type Company struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	SearchHistoryID *string     `json:"search_history_id,omitempty"`
	CompanyName     string      `json:"company_name"`
	Phone           *string     `json:"phone,omitempty"`
	Email           *string     `json:"email,omitempty"`
	Website         *string     `json:"website,omitempty"`
	Country         string      `json:"country"`
	Keywords        string      `json:"keywords"`
	EmailStatus     EmailStatus `json:"email_status"`
	EmailSentAt     *time.Time  `json:"email_sent_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Candidate is a company proposed by the search provider before
// duplicate checking and persistence.
type Candidate struct {
	CompanyName string
	Phone       *string
	Email       *string
	Website     *string
	Country     string
	Keywords    string
}

// CompanyFilter narrows company listings and exports.
// All queries are additionally scoped by owning user.
type CompanyFilter struct {
	Country     string
	Keywords    string
	EmailStatus EmailStatus
}
