package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// SourceFileUpload marks minutes consumed by an HTTP upload.
const SourceFileUpload = "file_upload"

// Usage is a snapshot of the usage ledger.
type Usage struct {
	IsAvailable      bool      `json:"is_available"`
	TotalMinutes     float64   `json:"total_minutes"`
	RemainingMinutes float64   `json:"remaining_minutes"`
	LimitMinutes     float64   `json:"limit_minutes"`
	MaxMinutes       float64   `json:"max_minutes"`
	IsLocked         bool      `json:"is_locked"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UsageUpdate reports the ledger state after AddUsage.
type UsageUpdate struct {
	NewTotal         float64 `json:"new_total"`
	IsLocked         bool    `json:"is_locked"`
	RemainingMinutes float64 `json:"remaining_minutes"`
}

// UsageLog is one entry of the append-only usage log.
type UsageLog struct {
	ID              int64     `json:"id"`
	DurationMinutes float64   `json:"duration_minutes"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

// UsageFromLimits builds the snapshot reported when tracking is disabled.
func UsageFromLimits(limits Limits) Usage {
	return Usage{
		IsAvailable:      true,
		RemainingMinutes: limits.LimitMinutes,
		LimitMinutes:     limits.LimitMinutes,
		MaxMinutes:       limits.MaxMinutes,
	}
}

func remaining(limit, total float64) float64 {
	return math.Max(0, limit-total)
}

func (s *Store) seedUsage(ctx context.Context, limits Limits) error {
	_, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO usage_tracking (id, total_minutes, limit_minutes, max_minutes, is_locked, updated_at)
         VALUES (1, 0, ?, ?, 0, ?)`,
		limits.LimitMinutes,
		limits.MaxMinutes,
		timestamp(),
	)
	if err != nil {
		return fmt.Errorf("seed usage: %w", err)
	}
	return nil
}

// CheckUsage returns the current ledger snapshot.
func (s *Store) CheckUsage(ctx context.Context) (Usage, error) {
	ctx = ensureContext(ctx)
	var (
		usage      Usage
		locked     int
		updatedRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT total_minutes, limit_minutes, max_minutes, is_locked, updated_at
         FROM usage_tracking WHERE id = 1`,
	).Scan(&usage.TotalMinutes, &usage.LimitMinutes, &usage.MaxMinutes, &locked, &updatedRaw)
	if err != nil {
		return Usage{}, fmt.Errorf("read usage: %w", err)
	}
	usage.IsLocked = locked != 0
	usage.IsAvailable = !usage.IsLocked && usage.TotalMinutes < usage.LimitMinutes
	usage.RemainingMinutes = remaining(usage.LimitMinutes, usage.TotalMinutes)
	usage.UpdatedAt = parseTime(updatedRaw.String)
	return usage, nil
}

// AddUsage adds minutes to the running total and logs the entry under source.
// The ledger locks once the new total reaches the limit.
func (s *Store) AddUsage(ctx context.Context, minutes float64, source string) (UsageUpdate, error) {
	ctx = ensureContext(ctx)
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return UsageUpdate{}, fmt.Errorf("invalid usage minutes: %v", minutes)
	}
	if source == "" {
		return UsageUpdate{}, errors.New("usage source is required")
	}

	var update UsageUpdate
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		now := timestamp()
		var (
			limit  float64
			locked int
		)
		if err := tx.QueryRowContext(ctx,
			`UPDATE usage_tracking
             SET total_minutes = total_minutes + ?,
                 is_locked = CASE WHEN total_minutes + ? >= limit_minutes THEN 1 ELSE 0 END,
                 updated_at = ?
             WHERE id = 1
             RETURNING total_minutes, limit_minutes, is_locked`,
			minutes, minutes, now,
		).Scan(&update.NewTotal, &limit, &locked); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO usage_logs (duration_minutes, source, created_at) VALUES (?, ?, ?)`,
			minutes, source, now,
		); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		update.IsLocked = locked != 0
		update.RemainingMinutes = remaining(limit, update.NewTotal)
		return nil
	})
	if err != nil {
		return UsageUpdate{}, fmt.Errorf("add usage: %w", err)
	}
	return update, nil
}

// RecentUsage returns up to limit log entries, newest first.
func (s *Store) RecentUsage(ctx context.Context, limit int) ([]UsageLog, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, duration_minutes, source, created_at FROM usage_logs
         ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query usage logs: %w", err)
	}
	defer rows.Close()

	var logs []UsageLog
	for rows.Next() {
		var (
			entry      UsageLog
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.DurationMinutes, &entry.Source, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan usage log: %w", err)
		}
		entry.CreatedAt = parseTime(createdRaw)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// ResetUsage zeroes the running total and unlocks the ledger. Logs are kept.
func (s *Store) ResetUsage(ctx context.Context) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE usage_tracking SET total_minutes = 0, is_locked = 0, updated_at = ? WHERE id = 1`,
		timestamp(),
	)
	if err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	return nil
}

// SetLimit changes the soft limit. It may not exceed the stored maximum.
func (s *Store) SetLimit(ctx context.Context, limitMinutes float64) error {
	if limitMinutes <= 0 || math.IsNaN(limitMinutes) || math.IsInf(limitMinutes, 0) {
		return fmt.Errorf("invalid usage limit: %v", limitMinutes)
	}
	current, err := s.CheckUsage(ctx)
	if err != nil {
		return err
	}
	if limitMinutes > current.MaxMinutes {
		return fmt.Errorf("usage limit %.2f exceeds max %.2f", limitMinutes, current.MaxMinutes)
	}

	_, err = s.execWithRetry(ctx,
		`UPDATE usage_tracking
         SET limit_minutes = ?,
             is_locked = CASE WHEN total_minutes >= ? THEN 1 ELSE 0 END,
             updated_at = ?
         WHERE id = 1`,
		limitMinutes, limitMinutes, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("set usage limit: %w", err)
	}
	return nil
}
