package dto

// SendEmailRequest represents the request body for a single outreach send.
// Subject and Body together override any template; TemplateID names a
// specific template; with neither, the user's default template applies.
type SendEmailRequest struct {
	CompanyID  string `json:"company_id" validate:"required,uuid4"`
	TemplateID string `json:"template_id" validate:"omitempty,uuid4"`
	Subject    string `json:"subject" validate:"omitempty,max=500"`
	Body       string `json:"body" validate:"omitempty,max=50000"`
}

// BatchSendEmailRequest represents the request body for a batch send.
type BatchSendEmailRequest struct {
	CompanyIDs []string `json:"company_ids" validate:"required,min=1,max=100,dive,uuid4"`
	TemplateID string   `json:"template_id" validate:"omitempty,uuid4"`
	Subject    string   `json:"subject" validate:"omitempty,max=500"`
	Body       string   `json:"body" validate:"omitempty,max=50000"`
}

// CreateTemplateRequest represents the request body for creating a template.
type CreateTemplateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Subject   string `json:"subject" validate:"required,min=1,max=500"`
	Content   string `json:"content" validate:"required,min=1"`
	IsDefault bool   `json:"is_default"`
}

// UpdateTemplateRequest represents the request body for updating a template.
type UpdateTemplateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Subject   string `json:"subject" validate:"required,min=1,max=500"`
	Content   string `json:"content" validate:"required,min=1"`
	IsDefault bool   `json:"is_default"`
}
