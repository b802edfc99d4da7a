package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/leadlens/leadlens/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:       "3f6f33a0-5a41-4f0e-9a64-2b012cf64cf1",
		Email:    "owner@example.com",
		Username: "owner",
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	authCtx, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if authCtx.UserID != testUser().ID {
		t.Errorf("expected user ID %s, got %s", testUser().ID, authCtx.UserID)
	}
	if authCtx.Email != "owner@example.com" {
		t.Errorf("expected email to round-trip, got %s", authCtx.Email)
	}
	if authCtx.Username != "owner" {
		t.Errorf("expected username to round-trip, got %s", authCtx.Username)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenManager("secret-a", time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = NewTokenManager("secret-b", time.Hour).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", -time.Minute)
	// NewTokenManager clamps non-positive TTLs, so build one directly.
	m.ttl = -time.Minute

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
