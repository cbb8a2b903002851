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
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `id, name, email, phone, resume_id, match_score, score_provisional,
	last_matched_job_id, status, version, created_at, updated_at`

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var c types.Candidate
	var status string

	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeID, &c.MatchScore,
		&c.ScoreProvisional, &c.LastMatchedJobID, &status, &c.Version,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = types.CandidateStatus(status)
	return &c, nil
}

func lockCandidate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*types.Candidate, error) {
	c, err := scanCandidate(tx.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
		}
		return nil, fmt.Errorf("failed to lock candidate: %w", err)
	}
	return c, nil
}

// CreateCandidate inserts a new candidate
func (db *DB) CreateCandidate(ctx context.Context, c *types.Candidate) (*types.Candidate, error) {
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	status := c.Status
	if status == "" {
		status = types.CandidateNew
	}

	created, err := scanCandidate(db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, name, email, phone, resume_id, match_score,
		                         score_provisional, last_matched_job_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+candidateColumns,
		id, c.Name, c.Email, c.Phone, c.ResumeID, c.MatchScore,
		c.ScoreProvisional, c.LastMatchedJobID, string(status),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return created, nil
}

// GetCandidate retrieves a candidate by ID
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates lists candidates, newest first
func (db *DB) ListCandidates(ctx context.Context, filter store.CandidateFilter) ([]*types.Candidate, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("status = $%d", string(filter.Status))
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates`+cond.where()+` ORDER BY created_at DESC, id`,
		cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []*types.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

// UpdateCandidate locks the row, applies fn and writes the result back
func (db *DB) UpdateCandidate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Candidate) error) (*types.Candidate, error) {
	var updated *types.Candidate
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := lockCandidate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := store.CheckVersion(types.KindCandidate, id, expected, cur.Version); err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}

		updated, err = scanCandidate(tx.QueryRow(ctx,
			`UPDATE candidates
			 SET name = $2, email = $3, phone = $4, resume_id = $5, match_score = $6,
			     score_provisional = $7, last_matched_job_id = $8, status = $9,
			     version = version + 1, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+candidateColumns,
			id, cur.Name, cur.Email, cur.Phone, cur.ResumeID, cur.MatchScore,
			cur.ScoreProvisional, cur.LastMatchedJobID, string(cur.Status),
		))
		if err != nil {
			return fmt.Errorf("failed to update candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCandidate deletes a candidate. Owned resumes go with it via ON DELETE CASCADE.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: types.KindCandidate, ID: id}
	}
	return nil
}
