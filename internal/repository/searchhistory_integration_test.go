//go:build integration

package repository

import (
	"errors"
	"sort"
	"testing"

	"github.com/leadlens/leadlens/internal/model"
)

func TestIntegrationKeywordRollups(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	// Two searches for "solar" across two countries, one for "wind".
	seedSearch(t, ctx, repo, userID, "Germany", "solar", "a", "b")
	seedSearch(t, ctx, repo, userID, "France", "solar", "c")
	seedSearch(t, ctx, repo, userID, "Germany", "wind", "d")

	rollups, total, err := repo.ListKeywordRollups(ctx, userID, 1, 10)
	if err != nil {
		t.Fatalf("ListKeywordRollups failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total groups = %d, want 2", total)
	}
	// Most recently searched keyword first.
	if rollups[0].Keywords != "wind" {
		t.Errorf("first rollup = %q, want wind (most recent)", rollups[0].Keywords)
	}

	var solar *model.KeywordRollup
	for i := range rollups {
		if rollups[i].Keywords == "solar" {
			solar = &rollups[i]
		}
	}
	if solar == nil {
		t.Fatal("no rollup for solar")
	}

	if solar.TotalSearches != 2 {
		t.Errorf("TotalSearches = %d, want 2", solar.TotalSearches)
	}
	if solar.TotalCompanies != 3 {
		t.Errorf("TotalCompanies = %d, want 3", solar.TotalCompanies)
	}
	countries := append([]string(nil), solar.Countries...)
	sort.Strings(countries)
	if len(countries) != 2 || countries[0] != "France" || countries[1] != "Germany" {
		t.Errorf("Countries = %v, want distinct France+Germany", solar.Countries)
	}
	if len(solar.SearchHistoryIDs) != 2 {
		t.Errorf("SearchHistoryIDs = %d entries, want 2", len(solar.SearchHistoryIDs))
	}
	if solar.LastSearchTime.Before(solar.FirstSearchTime) {
		t.Error("LastSearchTime before FirstSearchTime")
	}
}

func TestIntegrationHistoryStatistics(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	stats, err := repo.GetHistoryStatistics(ctx, userID)
	if err != nil {
		t.Fatalf("GetHistoryStatistics failed: %v", err)
	}
	if stats.TotalSearches != 0 || stats.LastSearchTime != nil {
		t.Errorf("empty stats = %+v", stats)
	}

	seedSearch(t, ctx, repo, userID, "Germany", "solar", "a", "b")
	seedSearch(t, ctx, repo, userID, "Germany", "solar", "c")
	seedSearch(t, ctx, repo, userID, "Germany", "wind", "d")

	stats, err = repo.GetHistoryStatistics(ctx, userID)
	if err != nil {
		t.Fatalf("GetHistoryStatistics failed: %v", err)
	}

	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.TotalCompanies != 4 {
		t.Errorf("TotalCompanies = %d, want 4", stats.TotalCompanies)
	}
	if stats.LastSearchTime == nil {
		t.Error("LastSearchTime not set")
	}
	if len(stats.TopKeywords) != 2 {
		t.Fatalf("TopKeywords = %d entries, want 2", len(stats.TopKeywords))
	}
	if stats.TopKeywords[0].Keyword != "solar" || stats.TopKeywords[0].Count != 2 {
		t.Errorf("top keyword = %+v, want solar/2", stats.TopKeywords[0])
	}
}

func TestIntegrationHasSearchHistory(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")
	otherID := createTestUser(t, ctx, repo, "other")

	seedSearch(t, ctx, repo, userID, "Germany", "solar", "a")

	has, err := repo.HasSearchHistory(ctx, userID, "solar")
	if err != nil || !has {
		t.Errorf("HasSearchHistory = %v, %v; want true", has, err)
	}
	has, err = repo.HasSearchHistory(ctx, userID, "Solar")
	if err != nil || has {
		t.Errorf("keyword match is exact-string; got %v for different case", has)
	}
	has, err = repo.HasSearchHistory(ctx, otherID, "solar")
	if err != nil || has {
		t.Errorf("cross-user HasSearchHistory = %v, want false", has)
	}
}

func TestIntegrationDeleteHistoryByKeywords(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")

	seedSearch(t, ctx, repo, userID, "Germany", "solar", "a")
	seedSearch(t, ctx, repo, userID, "France", "solar", "b")
	seedSearch(t, ctx, repo, userID, "Germany", "wind", "c")

	if err := repo.DeleteSearchHistoryByKeywords(ctx, userID, "solar"); err != nil {
		t.Fatalf("DeleteSearchHistoryByKeywords failed: %v", err)
	}

	_, total, err := repo.ListKeywordRollups(ctx, userID, 1, 10)
	if err != nil {
		t.Fatalf("ListKeywordRollups failed: %v", err)
	}
	if total != 1 {
		t.Errorf("remaining groups = %d, want 1", total)
	}

	err = repo.DeleteSearchHistoryByKeywords(ctx, userID, "missing")
	if !errors.Is(err, ErrSearchHistoryNotFound) {
		t.Errorf("delete of unknown keywords error = %v, want ErrSearchHistoryNotFound", err)
	}
}

func TestIntegrationClearSearchHistory(t *testing.T) {
	ctx, repo := newTestEnv(t)
	userID := createTestUser(t, ctx, repo, "owner")
	otherID := createTestUser(t, ctx, repo, "other")

	seedSearch(t, ctx, repo, userID, "Germany", "solar", "a")
	seedSearch(t, ctx, repo, otherID, "Germany", "solar", "b")

	if err := repo.ClearSearchHistory(ctx, userID); err != nil {
		t.Fatalf("ClearSearchHistory failed: %v", err)
	}

	_, total, err := repo.ListKeywordRollups(ctx, userID, 1, 10)
	if err != nil || total != 0 {
		t.Errorf("owner groups after clear = %d, err = %v", total, err)
	}
	_, total, err = repo.ListKeywordRollups(ctx, otherID, 1, 10)
	if err != nil || total != 1 {
		t.Errorf("other user's history affected by clear: %d groups, err = %v", total, err)
	}
}
