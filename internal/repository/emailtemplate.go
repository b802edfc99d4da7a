package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leadlens/leadlens/internal/model"
)

// ErrTemplateNotFound indicates no template row exists for the owner.
var ErrTemplateNotFound = errors.New("email template not found")

const templateColumns = `id, user_id, name, subject, content, is_default, created_at, updated_at`

func scanTemplate(row pgx.Row) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Subject,
		&t.Content,
		&t.IsDefault,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTemplate inserts a template. When isDefault is set, any other
// default row for the user is cleared first; clear and insert run in
// one transaction so at most one default is ever observable.
func (r *Repository) CreateTemplate(ctx context.Context, t *model.EmailTemplate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if t.IsDefault {
			if _, err := tx.Exec(ctx, `
				UPDATE email_templates SET is_default = FALSE, updated_at = now()
				WHERE user_id = $1 AND is_default = TRUE
			`, t.UserID); err != nil {
				return fmt.Errorf("failed to clear default template: %w", err)
			}
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO email_templates (user_id, name, subject, content, is_default)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, t.UserID, t.Name, t.Subject, t.Content, t.IsDefault).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}
		return nil
	})
}

// GetTemplateByID retrieves a template owned by the user.
func (r *Repository) GetTemplateByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1 AND user_id = $2`

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// GetDefaultTemplate returns the user's default template, or
// ErrTemplateNotFound when none is set.
func (r *Repository) GetDefaultTemplate(ctx context.Context, userID string) (*model.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE user_id = $1 AND is_default = TRUE`

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get default template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all of the user's templates, default first,
// then newest first.
func (r *Repository) ListTemplates(ctx context.Context, userID string) ([]model.EmailTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+` FROM email_templates
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.EmailTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate applies name/subject/content changes and, when
// makeDefault is true, clears every other default row for the user in
// the same transaction before setting this one.
func (r *Repository) UpdateTemplate(ctx context.Context, t *model.EmailTemplate, makeDefault bool) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if makeDefault {
			if _, err := tx.Exec(ctx, `
				UPDATE email_templates SET is_default = FALSE, updated_at = now()
				WHERE user_id = $1 AND is_default = TRUE AND id != $2
			`, t.UserID, t.ID); err != nil {
				return fmt.Errorf("failed to clear default template: %w", err)
			}
			t.IsDefault = true
		}

		tag, err := tx.Exec(ctx, `
			UPDATE email_templates
			SET name = $1, subject = $2, content = $3, is_default = $4, updated_at = now()
			WHERE id = $5 AND user_id = $6
		`, t.Name, t.Subject, t.Content, t.IsDefault, t.ID, t.UserID)
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTemplateNotFound
		}
		return nil
	})
}

// SetDefaultTemplate unconditionally clears all default rows for the
// user and marks the given template default, in one transaction.
func (r *Repository) SetDefaultTemplate(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE email_templates SET is_default = FALSE, updated_at = now()
			WHERE user_id = $1 AND is_default = TRUE
		`, userID); err != nil {
			return fmt.Errorf("failed to clear default template: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE email_templates SET is_default = TRUE, updated_at = now()
			WHERE id = $1 AND user_id = $2
		`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to set default template: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTemplateNotFound
		}
		return nil
	})
}

// DeleteTemplate removes a template. When the deleted row was the
// default, the user's oldest remaining template is promoted inside the
// same transaction; when none remain the user simply has no default.
func (r *Repository) DeleteTemplate(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var wasDefault bool
		err := tx.QueryRow(ctx, `
			DELETE FROM email_templates WHERE id = $1 AND user_id = $2
			RETURNING is_default
		`, id, userID).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("failed to delete template: %w", err)
		}

		if !wasDefault {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE email_templates SET is_default = TRUE, updated_at = now()
			WHERE id = (
				SELECT id FROM email_templates
				WHERE user_id = $1
				ORDER BY created_at ASC
				LIMIT 1
			)
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to promote oldest template: %w", err)
		}
		return nil
	})
}

// inTx runs fn inside a transaction, committing on nil and rolling
// back on error.
func (r *Repository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
