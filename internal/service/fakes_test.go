package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/leadlens/leadlens/internal/mailer"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/repository"
)

// fakeCompanyStore is an in-memory CompanyStore.
type fakeCompanyStore struct {
	companies map[string]*model.Company
	nextID    int

	existsErr error
	createErr error
	updateErr error

	statusWrites []statusWrite
}

type statusWrite struct {
	id     string
	status model.EmailStatus
	sentAt *time.Time
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: make(map[string]*model.Company)}
}

func (f *fakeCompanyStore) add(c model.Company) *model.Company {
	f.nextID++
	c.ID = fmt.Sprintf("company-%d", f.nextID)
	if c.EmailStatus == "" {
		c.EmailStatus = model.EmailStatusNotSent
	}
	c.CreatedAt = time.Now().UTC()
	f.companies[c.ID] = &c
	return f.companies[c.ID]
}

func (f *fakeCompanyStore) CreateCompanies(ctx context.Context, userID, searchHistoryID string, candidates []model.Candidate) ([]model.Company, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := make([]model.Company, 0, len(candidates))
	for _, cand := range candidates {
		c := f.add(model.Company{
			UserID:          userID,
			SearchHistoryID: &searchHistoryID,
			CompanyName:     cand.CompanyName,
			Phone:           cand.Phone,
			Email:           cand.Email,
			Website:         cand.Website,
			Country:         cand.Country,
			Keywords:        cand.Keywords,
		})
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCompanyStore) CompanyExists(ctx context.Context, userID, companyName string, email, website *string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, c := range f.companies {
		if c.UserID != userID {
			continue
		}
		if c.CompanyName == companyName {
			return true, nil
		}
		if email != nil && c.Email != nil && *c.Email == *email {
			return true, nil
		}
		if website != nil && c.Website != nil && *c.Website == *website {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCompanyStore) GetCompanyByID(ctx context.Context, userID, id string) (*model.Company, error) {
	c, ok := f.companies[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrCompanyNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCompanyStore) ListCompanies(ctx context.Context, userID string, filter model.CompanyFilter, page, limit int) ([]model.Company, int, error) {
	var all []model.Company
	for _, c := range f.companies {
		if c.UserID != userID {
			continue
		}
		if filter.Country != "" && c.Country != filter.Country {
			continue
		}
		if filter.Keywords != "" && c.Keywords != filter.Keywords {
			continue
		}
		if filter.EmailStatus != "" && c.EmailStatus != filter.EmailStatus {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeCompanyStore) UpdateCompanyEmailStatus(ctx context.Context, userID, id string, status model.EmailStatus, sentAt *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	c, ok := f.companies[id]
	if !ok || c.UserID != userID {
		return repository.ErrCompanyNotFound
	}
	c.EmailStatus = status
	c.EmailSentAt = sentAt
	f.statusWrites = append(f.statusWrites, statusWrite{id: id, status: status, sentAt: sentAt})
	return nil
}

func (f *fakeCompanyStore) DeleteCompany(ctx context.Context, userID, id string) error {
	c, ok := f.companies[id]
	if !ok || c.UserID != userID {
		return repository.ErrCompanyNotFound
	}
	delete(f.companies, id)
	return nil
}

func (f *fakeCompanyStore) DeleteCompanies(ctx context.Context, userID string, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if c, ok := f.companies[id]; ok && c.UserID == userID {
			delete(f.companies, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeHistoryStore is an in-memory HistoryWriter.
type fakeHistoryStore struct {
	rows      []*model.SearchHistory
	nextID    int
	createErr error
}

func (f *fakeHistoryStore) HasSearchHistory(ctx context.Context, userID, keywords string) (bool, error) {
	for _, h := range f.rows {
		if h.UserID == userID && h.Keywords == keywords {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistoryStore) CreateSearchHistory(ctx context.Context, h *model.SearchHistory) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	h.ID = fmt.Sprintf("history-%d", f.nextID)
	h.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, h)
	return nil
}

// fakeProvider returns canned candidates or a canned error.
type fakeProvider struct {
	candidates []model.Candidate
	err        error
	calls      int
}

func (f *fakeProvider) SearchCompanies(ctx context.Context, country, keywords string, limit int) ([]model.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Candidate, len(f.candidates))
	copy(out, f.candidates)
	for i := range out {
		out[i].Country = country
		out[i].Keywords = keywords
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeTemplateStore is an in-memory TemplateStore.
type fakeTemplateStore struct {
	templates []*model.EmailTemplate
	nextID    int
}

func (f *fakeTemplateStore) CreateTemplate(ctx context.Context, t *model.EmailTemplate) error {
	if t.IsDefault {
		f.clearDefault(t.UserID, "")
	}
	f.nextID++
	t.ID = fmt.Sprintf("template-%d", f.nextID)
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	clone := *t
	f.templates = append(f.templates, &clone)
	return nil
}

func (f *fakeTemplateStore) GetTemplateByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	for _, t := range f.templates {
		if t.ID == id && t.UserID == userID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrTemplateNotFound
}

func (f *fakeTemplateStore) GetDefaultTemplate(ctx context.Context, userID string) (*model.EmailTemplate, error) {
	for _, t := range f.templates {
		if t.UserID == userID && t.IsDefault {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrTemplateNotFound
}

func (f *fakeTemplateStore) ListTemplates(ctx context.Context, userID string) ([]model.EmailTemplate, error) {
	var out []model.EmailTemplate
	for _, t := range f.templates {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTemplateStore) UpdateTemplate(ctx context.Context, t *model.EmailTemplate, makeDefault bool) error {
	for _, existing := range f.templates {
		if existing.ID == t.ID && existing.UserID == t.UserID {
			if makeDefault {
				f.clearDefault(t.UserID, t.ID)
				t.IsDefault = true
			}
			existing.Name = t.Name
			existing.Subject = t.Subject
			existing.Content = t.Content
			existing.IsDefault = t.IsDefault
			existing.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrTemplateNotFound
}

func (f *fakeTemplateStore) SetDefaultTemplate(ctx context.Context, userID, id string) error {
	for _, t := range f.templates {
		if t.ID == id && t.UserID == userID {
			f.clearDefault(userID, "")
			t.IsDefault = true
			return nil
		}
	}
	return repository.ErrTemplateNotFound
}

func (f *fakeTemplateStore) DeleteTemplate(ctx context.Context, userID, id string) error {
	for i, t := range f.templates {
		if t.ID == id && t.UserID == userID {
			wasDefault := t.IsDefault
			f.templates = append(f.templates[:i], f.templates[i+1:]...)
			if wasDefault {
				f.promoteOldest(userID)
			}
			return nil
		}
	}
	return repository.ErrTemplateNotFound
}

func (f *fakeTemplateStore) clearDefault(userID, exceptID string) {
	for _, t := range f.templates {
		if t.UserID == userID && t.ID != exceptID {
			t.IsDefault = false
		}
	}
}

func (f *fakeTemplateStore) promoteOldest(userID string) {
	var oldest *model.EmailTemplate
	for _, t := range f.templates {
		if t.UserID != userID {
			continue
		}
		if oldest == nil || t.CreatedAt.Before(oldest.CreatedAt) || (t.CreatedAt.Equal(oldest.CreatedAt) && t.ID < oldest.ID) {
			oldest = t
		}
	}
	if oldest != nil {
		oldest.IsDefault = true
	}
}

// fakeMailer records sent messages and fails addresses listed in failTo.
type fakeMailer struct {
	sent   []mailer.Message
	failTo map[string]bool
}

var errRelayRefused = errors.New("relay refused")

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.failTo[msg.To] {
		return errRelayRefused
	}
	f.sent = append(f.sent, msg)
	return nil
}

// strPtr returns a pointer to s.
func strPtr(s string) *string { return &s }
