package service

import (
	"context"
	"errors"

	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/repository"
)

// ErrTemplateNotFound indicates the template does not exist for the caller.
var ErrTemplateNotFound = errors.New("email template not found")

// TemplateStore is the persistence surface for template operations.
// *repository.Repository satisfies it.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *model.EmailTemplate) error
	GetTemplateByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error)
	GetDefaultTemplate(ctx context.Context, userID string) (*model.EmailTemplate, error)
	ListTemplates(ctx context.Context, userID string) ([]model.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, t *model.EmailTemplate, makeDefault bool) error
	SetDefaultTemplate(ctx context.Context, userID, id string) error
	DeleteTemplate(ctx context.Context, userID, id string) error
}

// Built-in outreach template seeded for users with no templates.
const (
	seedTemplateName    = "Introduction Outreach"
	seedTemplateSubject = "Partnership opportunity for {{companyName}}"
	seedTemplateContent = `<p>Hello {{companyName}} team,</p>
<p>We came across your company while researching {{keywords}} businesses in {{country}} and believe there may be a good fit for collaboration.</p>
<p>Would you be open to a short call this week?</p>
<p>Best regards</p>`
)

// TemplateService manages reusable outreach email templates.
type TemplateService struct {
	store TemplateStore
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(store TemplateStore) *TemplateService {
	return &TemplateService{store: store}
}

// Create stores a new template for the user.
func (s *TemplateService) Create(ctx context.Context, userID, name, subject, content string, isDefault bool) (*model.EmailTemplate, error) {
	t := &model.EmailTemplate{
		UserID:    userID,
		Name:      name,
		Subject:   subject,
		Content:   content,
		IsDefault: isDefault,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns one template owned by the user.
func (s *TemplateService) Get(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	t, err := s.store.GetTemplateByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetDefault returns the user's default template.
func (s *TemplateService) GetDefault(ctx context.Context, userID string) (*model.EmailTemplate, error) {
	t, err := s.store.GetDefaultTemplate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns all of the user's templates, default first.
func (s *TemplateService) List(ctx context.Context, userID string) ([]model.EmailTemplate, error) {
	return s.store.ListTemplates(ctx, userID)
}

// Update applies changes to an existing template. Setting isDefault
// swaps the default to this template atomically; clearing it leaves
// the user with no default rather than promoting another row.
func (s *TemplateService) Update(ctx context.Context, userID, id, name, subject, content string, isDefault bool) (*model.EmailTemplate, error) {
	t := &model.EmailTemplate{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Subject:   subject,
		Content:   content,
		IsDefault: isDefault,
	}
	if err := s.store.UpdateTemplate(ctx, t, isDefault); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// SetDefault marks the given template as the user's default.
func (s *TemplateService) SetDefault(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	if err := s.store.SetDefaultTemplate(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a template. The store promotes the oldest remaining
// template when the deleted one was the default.
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteTemplate(ctx, userID, id)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// EnsureSeed makes sure the user has a default template. When one
// already exists this is a no-op. When a template with the seed name
// exists but is not the default, it is promoted. Otherwise the built-in
// outreach template is created as the default. Idempotent.
func (s *TemplateService) EnsureSeed(ctx context.Context, userID string) (*model.EmailTemplate, error) {
	_, err := s.store.GetDefaultTemplate(ctx, userID)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, repository.ErrTemplateNotFound) {
		return nil, err
	}

	existing, err := s.store.ListTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Name == seedTemplateName {
			return s.SetDefault(ctx, userID, t.ID)
		}
	}

	return s.Create(ctx, userID, seedTemplateName, seedTemplateSubject, seedTemplateContent, true)
}
