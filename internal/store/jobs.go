package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a transcription job through its lifecycle.
type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is a transcription request handled by the server.
type Job struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	Status          JobStatus `json:"status"`
	ResponseFormat  string    `json:"response_format"`
	Language        string    `json:"language,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const jobColumns = "id, filename, status, response_format, language, duration_seconds, error_message, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job        Job
		status     string
		language   sql.NullString
		errMessage sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Filename,
		&status,
		&job.ResponseFormat,
		&language,
		&job.DurationSeconds,
		&errMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.Status = JobStatus(status)
	job.Language = language.String
	job.Error = errMessage.String
	job.CreatedAt = parseTime(createdRaw)
	job.UpdatedAt = parseTime(updatedRaw)
	return &job, nil
}

// CreateJob records a new job in the processing state.
func (s *Store) CreateJob(ctx context.Context, filename, responseFormat, language string) (*Job, error) {
	id := uuid.NewString()
	now := timestamp()
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, filename, status, response_format, language, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, filename, JobProcessing, responseFormat, nullableString(language), now, now,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.GetJob(ctx, id)
}

// CompleteJob marks a job completed with the detected language and duration.
func (s *Store) CompleteJob(ctx context.Context, id, language string, durationSeconds float64) error {
	return s.finishJob(ctx, id,
		`UPDATE jobs SET status = ?, language = COALESCE(?, language), duration_seconds = ?, updated_at = ?
         WHERE id = ?`,
		JobCompleted, nullableString(language), durationSeconds, timestamp(), id,
	)
}

// FailJob marks a job failed with the given message.
func (s *Store) FailJob(ctx context.Context, id, message string) error {
	return s.finishJob(ctx, id,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		JobFailed, nullableString(message), timestamp(), id,
	)
}

func (s *Store) finishJob(ctx context.Context, id, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetJob fetches a job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListJobs returns up to limit jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
