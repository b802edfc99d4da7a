package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leadlens/leadlens/internal/model"
)

// ErrSearchHistoryNotFound indicates no history row exists for the owner.
var ErrSearchHistoryNotFound = errors.New("search history not found")

// CreateSearchHistory inserts one history row and fills in the
// generated ID and timestamp.
func (r *Repository) CreateSearchHistory(ctx context.Context, h *model.SearchHistory) error {
	var params []byte
	if h.SearchParams != nil {
		var err error
		params, err = json.Marshal(h.SearchParams)
		if err != nil {
			return fmt.Errorf("failed to encode search params: %w", err)
		}
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO search_history (user_id, keywords, country, result_count, search_params)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, h.UserID, h.Keywords, h.Country, h.ResultCount, params).Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create search history: %w", err)
	}
	return nil
}

// HasSearchHistory reports whether the user has any history rows with
// the exact keyword string.
func (r *Repository) HasSearchHistory(ctx context.Context, userID, keywords string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM search_history WHERE user_id = $1 AND keywords = $2)
	`, userID, keywords).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check search history: %w", err)
	}
	return exists, nil
}

// GetSearchHistoryByID retrieves one history row owned by the user.
func (r *Repository) GetSearchHistoryByID(ctx context.Context, userID, id string) (*model.SearchHistory, error) {
	var h model.SearchHistory
	var params []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, keywords, country, result_count, search_params, created_at
		FROM search_history
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&h.ID, &h.UserID, &h.Keywords, &h.Country, &h.ResultCount, &params, &h.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSearchHistoryNotFound
		}
		return nil, fmt.Errorf("failed to get search history: %w", err)
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &h.SearchParams); err != nil {
			return nil, fmt.Errorf("failed to decode search params: %w", err)
		}
	}
	return &h, nil
}

// ListKeywordRollups groups the user's history rows by exact keyword
// string and returns one rollup per group, most recently searched
// first. Pagination operates over groups, not raw rows. The second
// return value is the number of distinct keyword groups.
func (r *Repository) ListKeywordRollups(ctx context.Context, userID string, page, limit int) ([]model.KeywordRollup, int, error) {
	offset := (page - 1) * limit

	rows, err := r.pool.Query(ctx, `
		SELECT
			keywords,
			COUNT(*) AS total_searches,
			COALESCE(SUM(result_count), 0) AS total_companies,
			ARRAY_AGG(DISTINCT country) AS countries,
			MAX(created_at) AS last_search_time,
			MIN(created_at) AS first_search_time,
			ARRAY_AGG(DISTINCT id::text) AS search_history_ids
		FROM search_history
		WHERE user_id = $1
		GROUP BY keywords
		ORDER BY MAX(created_at) DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rollups: %w", err)
	}
	defer rows.Close()

	var rollups []model.KeywordRollup
	for rows.Next() {
		var ru model.KeywordRollup
		if err := rows.Scan(
			&ru.Keywords,
			&ru.TotalSearches,
			&ru.TotalCompanies,
			&ru.Countries,
			&ru.LastSearchTime,
			&ru.FirstSearchTime,
			&ru.SearchHistoryIDs,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rollup: %w", err)
		}
		rollups = append(rollups, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read rollups: %w", err)
	}

	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT keywords) FROM search_history WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count keyword groups: %w", err)
	}

	return rollups, total, nil
}

// GetHistoryStatistics returns ungrouped totals plus the top five
// keywords by occurrence. Ties order lexicographically by keyword so
// the result is deterministic.
func (r *Repository) GetHistoryStatistics(ctx context.Context, userID string) (*model.HistoryStatistics, error) {
	stats := &model.HistoryStatistics{}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(result_count), 0), MAX(created_at)
		FROM search_history
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalSearches, &stats.TotalCompanies, &stats.LastSearchTime)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT keywords, COUNT(*) AS count
		FROM search_history
		WHERE user_id = $1
		GROUP BY keywords
		ORDER BY count DESC, keywords ASC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get top keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kc model.KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan keyword count: %w", err)
		}
		stats.TopKeywords = append(stats.TopKeywords, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top keywords: %w", err)
	}

	return stats, nil
}

// DeleteSearchHistory removes one history row owned by the user.
func (r *Repository) DeleteSearchHistory(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM search_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete search history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSearchHistoryNotFound
	}
	return nil
}

// DeleteSearchHistoryByKeywords removes every history row for the
// user with the exact keyword string.
func (r *Repository) DeleteSearchHistoryByKeywords(ctx context.Context, userID, keywords string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM search_history WHERE user_id = $1 AND keywords = $2`, userID, keywords)
	if err != nil {
		return fmt.Errorf("failed to delete search history by keywords: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSearchHistoryNotFound
	}
	return nil
}

// ClearSearchHistory removes all of the user's history rows.
func (r *Repository) ClearSearchHistory(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM search_history WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
