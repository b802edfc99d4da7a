// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account that owns companies,
// search history and email templates.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext holds authenticated request context.
// Populated by the auth middleware from validated token claims.
type AuthContext struct {
	UserID   string
	Email    string
	Username string
}
