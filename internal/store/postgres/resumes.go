package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
)

// -----------------------------------------------------------------------------
// Resume Methods
// -----------------------------------------------------------------------------

const resumeColumns = `id, candidate_id, file_name, file_url, text_content, parsed, status,
	failure_reason, version, created_at, updated_at`

func scanResume(row pgx.Row) (*types.Resume, error) {
	var r types.Resume
	var parsedJSON []byte
	var status string

	if err := row.Scan(&r.ID, &r.CandidateID, &r.FileName, &r.FileURL, &r.Text,
		&parsedJSON, &status, &r.FailureReason, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = types.ProcessingStatus(status)

	if parsedJSON != nil {
		var parsed types.ParsedResume
		if err := json.Unmarshal(parsedJSON, &parsed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parsed resume: %w", err)
		}
		r.Parsed = &parsed
	}
	return &r, nil
}

// CreateResume inserts a resume and points its candidate at it in one transaction
func (db *DB) CreateResume(ctx context.Context, r *types.Resume) (*types.Resume, error) {
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	parsedJSON, err := marshalNullable(r.Parsed, r.Parsed == nil)
	if err != nil {
		return nil, err
	}

	var created *types.Resume
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockCandidate(ctx, tx, r.CandidateID); err != nil {
			return err
		}

		var err error
		created, err = scanResume(tx.QueryRow(ctx,
			`INSERT INTO resumes (id, candidate_id, file_name, file_url, text_content,
			                      parsed, status, failure_reason)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+resumeColumns,
			id, r.CandidateID, r.FileName, r.FileURL, r.Text,
			parsedJSON, string(r.Status), r.FailureReason,
		))
		if err != nil {
			return fmt.Errorf("failed to create resume: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE candidates SET resume_id = $2, version = version + 1, updated_at = NOW()
			 WHERE id = $1`,
			r.CandidateID, id,
		); err != nil {
			return fmt.Errorf("failed to link resume to candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetResume retrieves a resume by ID
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindResume, ID: id}
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return r, nil
}

// ListResumes lists resumes, newest first
func (db *DB) ListResumes(ctx context.Context, filter store.ResumeFilter) ([]*types.Resume, error) {
	var cond conditions
	if filter.CandidateID != uuid.Nil {
		cond.add("candidate_id = $%d", filter.CandidateID)
	}
	if filter.Status != "" {
		cond.add("status = $%d", string(filter.Status))
	}
	if !filter.CreatedBefore.IsZero() {
		cond.add("created_at < $%d", filter.CreatedBefore)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes`+cond.where()+` ORDER BY created_at DESC, id`,
		cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []*types.Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resumes: %w", err)
	}
	return resumes, nil
}

// UpdateResume locks the row, applies fn and writes the result back. The owner is fixed.
func (db *DB) UpdateResume(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Resume) error) (*types.Resume, error) {
	var updated *types.Resume
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanResume(tx.QueryRow(ctx,
			`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.NotFoundError{Kind: types.KindResume, ID: id}
			}
			return fmt.Errorf("failed to lock resume: %w", err)
		}
		if err := store.CheckVersion(types.KindResume, id, expected, cur.Version); err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}

		parsedJSON, err := marshalNullable(cur.Parsed, cur.Parsed == nil)
		if err != nil {
			return err
		}
		updated, err = scanResume(tx.QueryRow(ctx,
			`UPDATE resumes
			 SET file_name = $2, file_url = $3, text_content = $4, parsed = $5,
			     status = $6, failure_reason = $7, version = version + 1, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+resumeColumns,
			id, cur.FileName, cur.FileURL, cur.Text, parsedJSON,
			string(cur.Status), cur.FailureReason,
		))
		if err != nil {
			return fmt.Errorf("failed to update resume: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteResume deletes a resume and clears its owner's reference if it still points here
func (db *DB) DeleteResume(ctx context.Context, id uuid.UUID) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var candidateID uuid.UUID
		err := tx.QueryRow(ctx,
			`DELETE FROM resumes WHERE id = $1 RETURNING candidate_id`, id,
		).Scan(&candidateID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.NotFoundError{Kind: types.KindResume, ID: id}
			}
			return fmt.Errorf("failed to delete resume: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE candidates SET resume_id = NULL, version = version + 1, updated_at = NOW()
			 WHERE id = $1 AND resume_id = $2`,
			candidateID, id,
		); err != nil {
			return fmt.Errorf("failed to clear candidate resume: %w", err)
		}
		return nil
	})
}
