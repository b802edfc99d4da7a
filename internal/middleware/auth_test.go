package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/model"
)

func newAuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return Auth(AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: tokens,
	})
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Issue(&model.User{ID: "user-1", Email: "a@b.com", Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var captured *model.AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	newAuthMiddleware(tokens)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if captured == nil {
		t.Fatal("auth context not injected")
	}
	if captured.UserID != "user-1" || captured.Username != "alice" {
		t.Errorf("auth context = %+v", captured)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	otherTokens := auth.NewTokenManager("other-secret", time.Hour)
	foreign, err := otherTokens.Issue(&model.User{ID: "user-1", Email: "a@b.com", Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached without valid credentials")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			newAuthMiddleware(tokens)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("WWW-Authenticate header not set")
			}
		})
	}
}
