package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
)

// -----------------------------------------------------------------------------
// Email Template Methods
// -----------------------------------------------------------------------------

const templateColumns = `id, name, subject, body, version, created_at, updated_at`

func scanTemplate(row pgx.Row) (*types.EmailTemplate, error) {
	var t types.EmailTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Version, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTemplate inserts a new email template
func (db *DB) CreateTemplate(ctx context.Context, t *types.EmailTemplate) (*types.EmailTemplate, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created, err := scanTemplate(db.pool.QueryRow(ctx,
		`INSERT INTO email_templates (id, name, subject, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+templateColumns,
		id, t.Name, t.Subject, t.Body,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create email template: %w", err)
	}
	return created, nil
}

// GetTemplate retrieves an email template by ID
func (db *DB) GetTemplate(ctx context.Context, id uuid.UUID) (*types.EmailTemplate, error) {
	t, err := scanTemplate(db.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindTemplate, ID: id}
		}
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}
	return t, nil
}

// ListTemplates lists email templates, newest first
func (db *DB) ListTemplates(ctx context.Context) ([]*types.EmailTemplate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM email_templates ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list email templates: %w", err)
	}
	defer rows.Close()

	templates := []*types.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate locks the row, applies fn and writes the result back
func (db *DB) UpdateTemplate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.EmailTemplate) error) (*types.EmailTemplate, error) {
	var updated *types.EmailTemplate
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanTemplate(tx.QueryRow(ctx,
			`SELECT `+templateColumns+` FROM email_templates WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.NotFoundError{Kind: types.KindTemplate, ID: id}
			}
			return fmt.Errorf("failed to lock email template: %w", err)
		}
		if err := store.CheckVersion(types.KindTemplate, id, expected, cur.Version); err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}

		updated, err = scanTemplate(tx.QueryRow(ctx,
			`UPDATE email_templates
			 SET name = $2, subject = $3, body = $4, version = version + 1, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+templateColumns,
			id, cur.Name, cur.Subject, cur.Body,
		))
		if err != nil {
			return fmt.Errorf("failed to update email template: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTemplate deletes an email template
func (db *DB) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: types.KindTemplate, ID: id}
	}
	return nil
}
