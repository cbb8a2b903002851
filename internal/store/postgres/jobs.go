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
// Job Description Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, title, company, location, description, summary, status,
	failure_reason, version, created_at, updated_at`

func scanJob(row pgx.Row) (*types.JobDescription, error) {
	var j types.JobDescription
	var summaryJSON []byte
	var status string

	if err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description,
		&summaryJSON, &status, &j.FailureReason, &j.Version, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Status = types.ProcessingStatus(status)

	if summaryJSON != nil {
		var summary types.JobSummary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job summary: %w", err)
		}
		j.Summary = &summary
	}
	return &j, nil
}

// CreateJob inserts a new job description
func (db *DB) CreateJob(ctx context.Context, job *types.JobDescription) (*types.JobDescription, error) {
	id := job.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	summaryJSON, err := marshalNullable(job.Summary, job.Summary == nil)
	if err != nil {
		return nil, err
	}

	created, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, company, location, description, summary, status, failure_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+jobColumns,
		id, job.Title, job.Company, job.Location, job.Description,
		summaryJSON, string(job.Status), job.FailureReason,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

// GetJob retrieves a job description by ID
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.NotFoundError{Kind: types.KindJob, ID: id}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs lists job descriptions, newest first
func (db *DB) ListJobs(ctx context.Context, filter store.JobFilter) ([]*types.JobDescription, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("status = $%d", string(filter.Status))
	}
	if !filter.CreatedBefore.IsZero() {
		cond.add("created_at < $%d", filter.CreatedBefore)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs`+cond.where()+` ORDER BY created_at DESC, id`,
		cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*types.JobDescription{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob locks the row, applies fn and writes the result back
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.JobDescription) error) (*types.JobDescription, error) {
	var updated *types.JobDescription
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanJob(tx.QueryRow(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &types.NotFoundError{Kind: types.KindJob, ID: id}
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}
		if err := store.CheckVersion(types.KindJob, id, expected, cur.Version); err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}

		summaryJSON, err := marshalNullable(cur.Summary, cur.Summary == nil)
		if err != nil {
			return err
		}
		updated, err = scanJob(tx.QueryRow(ctx,
			`UPDATE jobs
			 SET title = $2, company = $3, location = $4, description = $5, summary = $6,
			     status = $7, failure_reason = $8, version = version + 1, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+jobColumns,
			id, cur.Title, cur.Company, cur.Location, cur.Description, summaryJSON,
			string(cur.Status), cur.FailureReason,
		))
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteJob deletes a job description
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: types.KindJob, ID: id}
	}
	return nil
}
