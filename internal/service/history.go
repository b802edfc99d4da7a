package service

import (
	"context"
	"errors"

	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/repository"
)

// ErrHistoryNotFound indicates the history entry does not exist for the caller.
var ErrHistoryNotFound = errors.New("search history not found")

// HistoryStore is the persistence surface for history operations.
// *repository.Repository satisfies it.
type HistoryStore interface {
	HasSearchHistory(ctx context.Context, userID, keywords string) (bool, error)
	GetSearchHistoryByID(ctx context.Context, userID, id string) (*model.SearchHistory, error)
	ListKeywordRollups(ctx context.Context, userID string, page, limit int) ([]model.KeywordRollup, int, error)
	GetHistoryStatistics(ctx context.Context, userID string) (*model.HistoryStatistics, error)
	DeleteSearchHistory(ctx context.Context, userID, id string) error
	DeleteSearchHistoryByKeywords(ctx context.Context, userID, keywords string) error
	ClearSearchHistory(ctx context.Context, userID string) error
	ListCompaniesByKeywords(ctx context.Context, userID, keywords string, page, limit int) ([]model.Company, int, error)
}

// RollupPage is one page of keyword rollups plus paging metadata.
// Total counts distinct keyword groups, not underlying rows.
type RollupPage struct {
	Data       []model.KeywordRollup `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// HistoryService exposes the search-history read and delete surface.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// ListRollups returns a page of per-keyword history aggregations,
// most recently searched keyword first.
func (s *HistoryService) ListRollups(ctx context.Context, userID string, page, limit int) (*RollupPage, error) {
	page, limit = normalizePaging(page, limit)

	rollups, total, err := s.store.ListKeywordRollups(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	return &RollupPage{
		Data:       rollups,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Get returns one raw history row owned by the user.
func (s *HistoryService) Get(ctx context.Context, userID, id string) (*model.SearchHistory, error) {
	h, err := s.store.GetSearchHistoryByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrSearchHistoryNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return h, nil
}

// Statistics summarizes the user's entire search history.
func (s *HistoryService) Statistics(ctx context.Context, userID string) (*model.HistoryStatistics, error) {
	return s.store.GetHistoryStatistics(ctx, userID)
}

// CompaniesByKeywords returns the companies found by past searches
// for an exact keyword string. The keyword must have been searched
// before; an unknown keyword is a not-found, even though a company
// page for it would merely be empty.
func (s *HistoryService) CompaniesByKeywords(ctx context.Context, userID, keywords string, page, limit int) (*CompanyPage, error) {
	hasHistory, err := s.store.HasSearchHistory(ctx, userID, keywords)
	if err != nil {
		return nil, err
	}
	if !hasHistory {
		return nil, ErrHistoryNotFound
	}

	page, limit = normalizePaging(page, limit)

	companies, total, err := s.store.ListCompaniesByKeywords(ctx, userID, keywords, page, limit)
	if err != nil {
		return nil, err
	}

	return &CompanyPage{
		Data:       companies,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Delete removes one history row. Companies created by that search
// are kept and detached.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteSearchHistory(ctx, userID, id)
	if errors.Is(err, repository.ErrSearchHistoryNotFound) {
		return ErrHistoryNotFound
	}
	return err
}

// DeleteByKeywords removes every history row for an exact keyword string.
func (s *HistoryService) DeleteByKeywords(ctx context.Context, userID, keywords string) error {
	err := s.store.DeleteSearchHistoryByKeywords(ctx, userID, keywords)
	if errors.Is(err, repository.ErrSearchHistoryNotFound) {
		return ErrHistoryNotFound
	}
	return err
}

// Clear removes the user's entire search history.
func (s *HistoryService) Clear(ctx context.Context, userID string) error {
	return s.store.ClearSearchHistory(ctx, userID)
}
