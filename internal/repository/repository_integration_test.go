//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/testutil"
)

// newTestEnv connects to the test database, serializes access and
// resets the schema.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

// createTestUser persists a user and returns its generated ID.
func createTestUser(t *testing.T, ctx context.Context, repo *Repository, username string) string {
	t.Helper()
	user := testutil.NewTestUser(t, username)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return user.ID
}

// seedSearch persists a history row and its companies for one search.
func seedSearch(t *testing.T, ctx context.Context, repo *Repository, userID, country, keywords string, names ...string) *model.SearchHistory {
	t.Helper()

	candidates := make([]model.Candidate, 0, len(names))
	for _, name := range names {
		c := testutil.NewTestCandidate(t, name)
		c.Country = country
		c.Keywords = keywords
		candidates = append(candidates, c)
	}

	h := &model.SearchHistory{
		UserID:      userID,
		Keywords:    keywords,
		Country:     country,
		ResultCount: len(candidates),
	}
	if err := repo.CreateSearchHistory(ctx, h); err != nil {
		t.Fatalf("create history: %v", err)
	}
	if _, err := repo.CreateCompanies(ctx, userID, h.ID, candidates); err != nil {
		t.Fatalf("create companies: %v", err)
	}
	return h
}
