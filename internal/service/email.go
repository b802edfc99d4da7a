package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/leadlens/leadlens/internal/mailer"
	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/repository"
)

// Email service errors.
var (
	ErrNoRecipientEmail = errors.New("company has no email address")
	ErrEmailSendFailed  = errors.New("email delivery failed")
)

// Fallback content used when the user has no usable template and the
// request carries none.
const (
	fallbackSubject = "Hello from our team"
	fallbackBody    = `<p>Hello {{companyName}},</p>
<p>We would like to get in touch regarding {{keywords}}.</p>
<p>Best regards</p>`
)

// EmailContent is the resolved subject/body pair for one send,
// before token merging.
type EmailContent struct {
	Subject string
	Body    string
}

// SendOutcome reports one company's result inside a batch send.
type SendOutcome struct {
	CompanyID string `json:"company_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BatchResult summarizes a batch send.
type BatchResult struct {
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Results []SendOutcome `json:"results"`
}

// EmailService resolves templates, merges tokens and dispatches
// outreach email, recording per-company status.
type EmailService struct {
	companies     CompanyStore
	templates     TemplateStore
	mailer        mailer.Mailer
	metrics       metrics.Recorder
	logger        *slog.Logger
	testMode      bool
	testRecipient string
}

// EmailOption configures an EmailService.
type EmailOption func(*EmailService)

// WithTestMode redirects every outbound email to the given recipient
// and prefixes the subject with the original address.
func WithTestMode(recipient string) EmailOption {
	return func(s *EmailService) {
		s.testMode = true
		s.testRecipient = recipient
	}
}

// NewEmailService creates a new EmailService.
func NewEmailService(companies CompanyStore, templates TemplateStore, m mailer.Mailer, recorder metrics.Recorder, logger *slog.Logger, opts ...EmailOption) *EmailService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &EmailService{
		companies: companies,
		templates: templates,
		mailer:    m,
		metrics:   recorder,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendToCompany sends one outreach email to a company. Resolution
// order for content: explicit subject/body from the request, then the
// template named by templateID, then the user's default template,
// then the built-in fallback. The company must have an email address;
// that check happens before any transport work. Any failure is
// returned as an error so the caller can report it.
func (s *EmailService) SendToCompany(ctx context.Context, userID, companyID, templateID, customSubject, customBody string) (*SendOutcome, error) {
	company, err := s.companies.GetCompanyByID(ctx, userID, companyID)
	if err != nil {
		return nil, mapCompanyErr(err)
	}
	outcome, err := s.send(ctx, userID, company, templateID, customSubject, customBody)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// SendBatch sends outreach email to each company in ids, in order.
// Failures are isolated per company; one bad address or relay refusal
// never aborts the rest of the batch.
func (s *EmailService) SendBatch(ctx context.Context, userID string, ids []string, templateID, customSubject, customBody string) (*BatchResult, error) {
	result := &BatchResult{Results: make([]SendOutcome, 0, len(ids))}

	for _, id := range ids {
		company, err := s.companies.GetCompanyByID(ctx, userID, id)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, SendOutcome{
				CompanyID: id,
				Success:   false,
				Error:     mapCompanyErr(err).Error(),
			})
			continue
		}

		outcome, _ := s.send(ctx, userID, company, templateID, customSubject, customBody)
		if outcome.Success {
			result.Sent++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, *outcome)
	}

	return result, nil
}

// send performs one delivery and reports the outcome both ways: the
// SendOutcome carries the per-company record for batch responses, the
// error the typed failure for single sends.
func (s *EmailService) send(ctx context.Context, userID string, company *model.Company, templateID, customSubject, customBody string) (*SendOutcome, error) {
	outcome := &SendOutcome{CompanyID: company.ID}

	if company.Email == nil || *company.Email == "" {
		outcome.Error = ErrNoRecipientEmail.Error()
		return outcome, ErrNoRecipientEmail
	}

	content, err := s.resolveContent(ctx, userID, templateID, customSubject, customBody)
	if err != nil {
		outcome.Error = err.Error()
		return outcome, err
	}

	msg := mailer.Message{
		To:      *company.Email,
		Subject: MergeTokens(content.Subject, company),
		HTML:    MergeTokens(content.Body, company),
	}
	if s.testMode {
		msg.Subject = "[TEST to " + msg.To + "] " + msg.Subject
		msg.To = s.testRecipient
	}

	sendErr := s.mailer.Send(ctx, msg)

	now := time.Now().UTC()
	status := model.EmailStatusSent
	var sentAt *time.Time
	if sendErr != nil {
		status = model.EmailStatusFailed
	} else {
		sentAt = &now
	}

	// Status write is best effort. A delivered email with a failed
	// status update is logged, not turned into a send failure.
	if err := s.companies.UpdateCompanyEmailStatus(ctx, userID, company.ID, status, sentAt); err != nil {
		s.logger.Error("failed to update email status",
			slog.String("company_id", company.ID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}

	if sendErr != nil {
		s.metrics.IncEmailFailed()
		s.logger.Warn("email delivery failed",
			slog.String("company_id", company.ID),
			slog.String("error", sendErr.Error()),
		)
		outcome.Error = ErrEmailSendFailed.Error()
		return outcome, errors.Join(ErrEmailSendFailed, sendErr)
	}

	s.metrics.IncEmailSent()
	outcome.Success = true
	return outcome, nil
}

// resolveContent picks the subject/body for a send. Explicit custom
// content wins; a named template must exist; otherwise the default
// template is used when present, and the built-in fallback last.
func (s *EmailService) resolveContent(ctx context.Context, userID, templateID, customSubject, customBody string) (*EmailContent, error) {
	if customSubject != "" && customBody != "" {
		return &EmailContent{Subject: customSubject, Body: customBody}, nil
	}

	if templateID != "" {
		t, err := s.templates.GetTemplateByID(ctx, userID, templateID)
		if err != nil {
			return nil, mapTemplateErr(err)
		}
		return &EmailContent{Subject: t.Subject, Body: t.Content}, nil
	}

	t, err := s.templates.GetDefaultTemplate(ctx, userID)
	if err == nil {
		return &EmailContent{Subject: t.Subject, Body: t.Content}, nil
	}
	if !isTemplateNotFound(err) {
		return nil, err
	}

	return &EmailContent{Subject: fallbackSubject, Body: fallbackBody}, nil
}

// MergeTokens substitutes {{token}} placeholders with the company's
// values. Unknown tokens are left untouched; nil fields become empty
// strings.
func MergeTokens(text string, company *model.Company) string {
	replacer := strings.NewReplacer(
		"{{companyName}}", company.CompanyName,
		"{{keywords}}", company.Keywords,
		"{{country}}", company.Country,
		"{{email}}", deref(company.Email),
		"{{phone}}", deref(company.Phone),
		"{{website}}", deref(company.Website),
	)
	return replacer.Replace(text)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapCompanyErr(err error) error {
	if errors.Is(err, repository.ErrCompanyNotFound) {
		return ErrCompanyNotFound
	}
	return err
}

func mapTemplateErr(err error) error {
	if isTemplateNotFound(err) {
		return ErrTemplateNotFound
	}
	return err
}

func isTemplateNotFound(err error) bool {
	return errors.Is(err, repository.ErrTemplateNotFound) || errors.Is(err, ErrTemplateNotFound)
}
