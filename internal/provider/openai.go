// Package provider adapts an OpenAI-compatible chat-completions API
// into a company search backend.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/leadlens/leadlens/internal/model"
)

// ErrSearchFailed covers every provider failure mode: transport
// errors, invalid JSON after both parse attempts, and empty result
// sets. The orchestrator does not distinguish between them.
var ErrSearchFailed = errors.New("company search failed")

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 30 * time.Second
)

// Config holds provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient calls the chat-completions endpoint to search for
// companies matching a country and keyword string.
type OpenAIClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewOpenAIClient creates a client with tuned transport timeouts.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// chatRequest is the chat-completions request payload.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// candidatePayload is the JSON shape the model is instructed to return
// for each company.
type candidatePayload struct {
	CompanyName string  `json:"companyName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
}

const systemPrompt = "You are a professional business information assistant. " +
	"You provide accurate, real company information based on your knowledge. " +
	"Always return valid JSON only, no additional text or explanations. " +
	"The companies you provide must be real, existing companies."

// SearchCompanies asks the model for up to limit companies in the
// given country matching the keywords. All failures are reported as
// ErrSearchFailed with the underlying cause attached.
func (c *OpenAIClient) SearchCompanies(ctx context.Context, country, keywords string, limit int) ([]model.Candidate, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(country, keywords, limit)},
		},
		Temperature:    0.3,
		MaxTokens:      4000,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrSearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSearchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSearchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrSearchFailed, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, chat.Error.Message)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrSearchFailed)
	}

	return parseCandidates(chat.Choices[0].Message.Content, country, keywords)
}

// parseCandidates extracts the companies list from the model output.
// It tries a direct JSON parse first; if the model wrapped the object
// in prose or markdown fencing, it falls back to the first top-level
// {...} span.
func parseCandidates(content, country, keywords string) ([]model.Candidate, error) {
	var parsed struct {
		Companies []candidatePayload `json:"companies"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		span := extractJSONObject(content)
		if span == "" {
			return nil, fmt.Errorf("%w: invalid JSON in completion", ErrSearchFailed)
		}
		if err := json.Unmarshal([]byte(span), &parsed); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON in completion", ErrSearchFailed)
		}
	}

	if len(parsed.Companies) == 0 {
		return nil, fmt.Errorf("%w: no companies in completion", ErrSearchFailed)
	}

	candidates := make([]model.Candidate, 0, len(parsed.Companies))
	for _, p := range parsed.Companies {
		candidates = append(candidates, model.Candidate{
			CompanyName: p.CompanyName,
			Phone:       emptyToNil(p.Phone),
			Email:       emptyToNil(p.Email),
			Website:     emptyToNil(p.Website),
			Country:     country,
			Keywords:    keywords,
		})
	}
	return candidates, nil
}

// extractJSONObject returns the first balanced top-level {...} span,
// or empty string if none exists.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func buildPrompt(country, keywords string, limit int) string {
	return fmt.Sprintf(`Search for real, existing companies in %[1]s related to "%[2]s".

Return a JSON object with the following structure:
{
  "companies": [
    {
      "companyName": "Exact company name as it exists in real life",
      "phone": "Phone number with country code or null if not available",
      "email": "Contact email address (info@company.com format) or null if not available",
      "website": "Full website URL (https://www.company.com) or null if not available"
    }
  ]
}

CRITICAL REQUIREMENTS:
1. Return exactly %[3]d real companies that actually exist in %[1]s
2. Companies must be real, established businesses - NOT fictional or made-up
3. Company names must be accurate and match their official business registration
4. Phone numbers must include the country calling code
5. Email addresses must be in valid format (e.g., info@company.com, contact@company.com)
6. Website URLs must be complete with https://
7. If any field is not publicly available, use null (not empty string)
8. Return ONLY valid JSON, no additional text, explanations, or markdown formatting
9. Focus on well-known, established companies when possible

Return the JSON object now:`, country, keywords, limit)
}
