package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leadlens/leadlens/internal/model"
)

// ErrCompanyNotFound indicates no company row exists for the owner.
var ErrCompanyNotFound = errors.New("company not found")

const companyColumns = `
	id, user_id, search_history_id, company_name, phone, email, website,
	country, keywords, email_status, email_sent_at, created_at, updated_at`

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.SearchHistoryID,
		&c.CompanyName,
		&c.Phone,
		&c.Email,
		&c.Website,
		&c.Country,
		&c.Keywords,
		&c.EmailStatus,
		&c.EmailSentAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCompanies inserts accepted candidates as company rows in one batch,
// stamping each with the originating search history ID. Returns the
// persisted rows with generated IDs and timestamps.
func (r *Repository) CreateCompanies(ctx context.Context, userID, searchHistoryID string, candidates []model.Candidate) ([]model.Company, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO companies (user_id, search_history_id, company_name, phone, email, website, country, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + companyColumns

	batch := &pgx.Batch{}
	for _, c := range candidates {
		batch.Queue(query, userID, searchHistoryID, c.CompanyName, c.Phone, c.Email, c.Website, c.Country, c.Keywords)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	companies := make([]model.Company, 0, len(candidates))
	for range candidates {
		company, err := scanCompany(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("failed to create company: %w", err)
		}
		companies = append(companies, *company)
	}

	return companies, nil
}

// CompanyExists reports whether the user already owns a company matching
// the name, email, or website exactly. Empty email/website never match.
func (r *Repository) CompanyExists(ctx context.Context, userID, companyName string, email, website *string) (bool, error) {
	conditions := []string{"company_name = $2"}
	args := []any{userID, companyName}

	if email != nil && *email != "" {
		args = append(args, *email)
		conditions = append(conditions, "email = $"+strconv.Itoa(len(args)))
	}
	if website != nil && *website != "" {
		args = append(args, *website)
		conditions = append(conditions, "website = $"+strconv.Itoa(len(args)))
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM companies
			WHERE user_id = $1 AND (` + strings.Join(conditions, " OR ") + `)
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return exists, nil
}

// GetCompanyByID retrieves a company owned by the user.
func (r *Repository) GetCompanyByID(ctx context.Context, userID, id string) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1 AND user_id = $2`

	company, err := scanCompany(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// ListCompanies returns a page of the user's companies matching the
// filter, newest first, plus the total matching count.
func (r *Repository) ListCompanies(ctx context.Context, userID string, filter model.CompanyFilter, page, limit int) ([]model.Company, int, error) {
	where, args := companyFilterClause(userID, filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM companies ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	offset := (page - 1) * limit
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM companies %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, companyColumns, where, len(args)-1, len(args))

	companies, err := r.queryCompanies(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// ListCompaniesByKeywords pages the user's companies tagged with the
// exact keyword string, newest first.
func (r *Repository) ListCompaniesByKeywords(ctx context.Context, userID, keywords string, page, limit int) ([]model.Company, int, error) {
	return r.ListCompanies(ctx, userID, model.CompanyFilter{Keywords: keywords}, page, limit)
}

// UpdateCompanyEmailStatus sets the outreach status and, if sentAt is
// non-nil, the sent timestamp on a company owned by the user.
func (r *Repository) UpdateCompanyEmailStatus(ctx context.Context, userID, id string, status model.EmailStatus, sentAt *time.Time) error {
	var tag pgconn.CommandTag
	var err error

	if sentAt != nil {
		tag, err = r.pool.Exec(ctx, `
			UPDATE companies
			SET email_status = $1, email_sent_at = $2, updated_at = now()
			WHERE id = $3 AND user_id = $4
		`, status, sentAt, id, userID)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE companies
			SET email_status = $1, updated_at = now()
			WHERE id = $2 AND user_id = $3
		`, status, id, userID)
	}

	if err != nil {
		return fmt.Errorf("failed to update email status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// DeleteCompany removes one company owned by the user.
func (r *Repository) DeleteCompany(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// DeleteCompanies removes a batch of companies owned by the user.
// Returns the number of rows actually deleted.
func (r *Repository) DeleteCompanies(ctx context.Context, userID string, ids []string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete companies: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) queryCompanies(ctx context.Context, query string, args ...any) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read companies: %w", err)
	}
	return companies, nil
}

// companyFilterClause builds the WHERE clause shared by listing,
// counting and export queries. $1 is always the owning user.
func companyFilterClause(userID string, filter model.CompanyFilter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Country != "" {
		args = append(args, filter.Country)
		clauses = append(clauses, "country = $"+strconv.Itoa(len(args)))
	}
	if filter.Keywords != "" {
		args = append(args, filter.Keywords)
		clauses = append(clauses, "keywords = $"+strconv.Itoa(len(args)))
	}
	if filter.EmailStatus != "" {
		args = append(args, filter.EmailStatus)
		clauses = append(clauses, "email_status = $"+strconv.Itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}
