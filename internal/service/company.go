package service

import (
	"context"
	"errors"
	"time"

	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/repository"
)

// ErrCompanyNotFound indicates the company does not exist for the caller.
var ErrCompanyNotFound = errors.New("company not found")

// Listing defaults and caps shared by companies and history pages.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// CompanyStore is the persistence surface for company operations.
// *repository.Repository satisfies it.
type CompanyStore interface {
	CreateCompanies(ctx context.Context, userID, searchHistoryID string, candidates []model.Candidate) ([]model.Company, error)
	CompanyExists(ctx context.Context, userID, companyName string, email, website *string) (bool, error)
	GetCompanyByID(ctx context.Context, userID, id string) (*model.Company, error)
	ListCompanies(ctx context.Context, userID string, filter model.CompanyFilter, page, limit int) ([]model.Company, int, error)
	UpdateCompanyEmailStatus(ctx context.Context, userID, id string, status model.EmailStatus, sentAt *time.Time) error
	DeleteCompany(ctx context.Context, userID, id string) error
	DeleteCompanies(ctx context.Context, userID string, ids []string) (int, error)
}

// CompanyPage is one page of companies plus paging metadata.
type CompanyPage struct {
	Data       []model.Company `json:"data"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// CompanyService handles listing and deletion of prospect records.
type CompanyService struct {
	store CompanyStore
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(store CompanyStore) *CompanyService {
	return &CompanyService{store: store}
}

// List returns a page of the user's companies matching the filter.
func (s *CompanyService) List(ctx context.Context, userID string, filter model.CompanyFilter, page, limit int) (*CompanyPage, error) {
	page, limit = normalizePaging(page, limit)

	companies, total, err := s.store.ListCompanies(ctx, userID, filter, page, limit)
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

// Get returns one company owned by the user.
func (s *CompanyService) Get(ctx context.Context, userID, id string) (*model.Company, error) {
	company, err := s.store.GetCompanyByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// Delete removes one company owned by the user.
func (s *CompanyService) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteCompany(ctx, userID, id)
	if errors.Is(err, repository.ErrCompanyNotFound) {
		return ErrCompanyNotFound
	}
	return err
}

// DeleteBatch removes a batch of companies owned by the user and
// reports how many rows were actually removed. IDs the user does not
// own are silently skipped.
func (s *CompanyService) DeleteBatch(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.DeleteCompanies(ctx, userID, ids)
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
