// Package model defines domain entities for the application.
package model

import "time"

// SearchHistory is one row per executed search. Append-only.
type SearchHistory struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Keywords     string         `json:"keywords"`
	Country      string         `json:"country"`
	ResultCount  int            `json:"result_count"`
	SearchParams map[string]any `json:"search_params,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// KeywordRollup is a computed aggregation of a user's search history
// rows sharing an exact keyword string. Not persisted.
type KeywordRollup struct {
	Keywords         string    `json:"keywords"`
	TotalSearches    int       `json:"total_searches"`
	TotalCompanies   int       `json:"total_companies"`
	Countries        []string  `json:"countries"`
	LastSearchTime   time.Time `json:"last_search_time"`
	FirstSearchTime  time.Time `json:"first_search_time"`
	SearchHistoryIDs []string  `json:"search_history_ids"`
}

// KeywordCount is a keyword with its occurrence count in the history.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// HistoryStatistics summarizes a user's entire search history.
type HistoryStatistics struct {
	TotalSearches  int            `json:"total_searches"`
	TotalCompanies int            `json:"total_companies"`
	LastSearchTime *time.Time     `json:"last_search_time"`
	TopKeywords    []KeywordCount `json:"top_keywords"`
}
