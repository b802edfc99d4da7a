// Package model defines domain entities for the application.
package model

import "time"

// EmailTemplate is a reusable outreach email with placeholder tokens.
// At most one template per user has IsDefault set; the repository
// enforces the swap transactionally.
type EmailTemplate struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
