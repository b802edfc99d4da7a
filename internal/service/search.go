package service

import (
	"context"
	"errors"
	"time"

	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/provider"
)

// Search service errors.
var (
	ErrSearchFailed      = errors.New("search failed")
	ErrInvalidSearchTerm = errors.New("keywords and country are required")
)

// Search limits.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// Provider produces company candidates for a country/keyword pair.
type Provider interface {
	SearchCompanies(ctx context.Context, country, keywords string, limit int) ([]model.Candidate, error)
}

// HistoryWriter is the slice of the history store the orchestrator needs.
type HistoryWriter interface {
	HasSearchHistory(ctx context.Context, userID, keywords string) (bool, error)
	CreateSearchHistory(ctx context.Context, h *model.SearchHistory) error
}

// SearchResult is the outcome of one end-to-end search.
type SearchResult struct {
	Companies []model.Company `json:"companies"`
	Total     int             `json:"total"`
	// HasMore is a heuristic: true iff the number of persisted rows
	// reached the requested limit. It can both under- and over-claim
	// that more results exist.
	HasMore           bool   `json:"has_more"`
	SearchHistoryID   string `json:"search_history_id"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	HasHistory        bool   `json:"has_history"`
}

// SearchService runs the search-dedupe-persist pipeline.
type SearchService struct {
	provider  Provider
	companies CompanyStore
	history   HistoryWriter
	metrics   metrics.Recorder
}

// NewSearchService creates a new SearchService.
func NewSearchService(p Provider, companies CompanyStore, history HistoryWriter, recorder metrics.Recorder) *SearchService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SearchService{
		provider:  p,
		companies: companies,
		history:   history,
		metrics:   recorder,
	}
}

// Search executes one search request end to end:
// provider query, per-candidate duplicate check, history row, batch
// persist. A provider failure aborts before any write; zero accepted
// candidates still records a history row with result count zero.
func (s *SearchService) Search(ctx context.Context, userID, country, keywords string, limit int) (*SearchResult, error) {
	if country == "" || keywords == "" {
		return nil, ErrInvalidSearchTerm
	}
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	start := time.Now()

	hasHistory, err := s.history.HasSearchHistory(ctx, userID, keywords)
	if err != nil {
		return nil, err
	}

	candidates, err := s.provider.SearchCompanies(ctx, country, keywords, limit)
	if err != nil {
		s.metrics.IncSearchExecuted("failed")
		if errors.Is(err, provider.ErrSearchFailed) {
			return nil, errors.Join(ErrSearchFailed, err)
		}
		return nil, err
	}
	s.metrics.AddCandidatesReturned(len(candidates))

	accepted := make([]model.Candidate, 0, len(candidates))
	duplicates := 0
	for _, candidate := range candidates {
		exists, err := s.companies.CompanyExists(ctx, userID, candidate.CompanyName, candidate.Email, candidate.Website)
		if err != nil {
			return nil, err
		}
		if exists {
			duplicates++
			continue
		}
		accepted = append(accepted, candidate)
	}
	s.metrics.AddDuplicatesRemoved(duplicates)

	// A zero-result or all-duplicate search is still a recorded
	// search event.
	historyRow := &model.SearchHistory{
		UserID:      userID,
		Keywords:    keywords,
		Country:     country,
		ResultCount: len(accepted),
		SearchParams: map[string]any{
			"limit": limit,
		},
	}
	if err := s.history.CreateSearchHistory(ctx, historyRow); err != nil {
		return nil, err
	}

	persisted, err := s.companies.CreateCompanies(ctx, userID, historyRow.ID, accepted)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSearchExecuted("success")
	s.metrics.ObserveSearchDuration(time.Since(start))

	return &SearchResult{
		Companies:         persisted,
		Total:             len(persisted),
		HasMore:           len(persisted) >= limit,
		SearchHistoryID:   historyRow.ID,
		DuplicatesRemoved: duplicates,
		HasHistory:        hasHistory,
	}, nil
}
