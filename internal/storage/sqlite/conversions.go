package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/toolkit/internal/types"
)

// DefaultHistoryLimit is the page size used when RecentConversions is
// given a non-positive limit
const DefaultHistoryLimit = 20

// RecordConversion appends rec to the history and sets its ID
func (s *SQLiteStorage) RecordConversion(ctx context.Context, rec *types.ConversionRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid conversion record: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (source, from_format, to_format, detected, success, error,
			input_bytes, output_bytes, duration_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Source, rec.From, rec.To, rec.Detected, rec.Success, rec.Error,
		rec.InputBytes, rec.OutputBytes, rec.Duration.Microseconds(), formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get conversion ID: %w", err)
	}
	rec.ID = id
	return nil
}

// RecentConversions returns the newest records first
func (s *SQLiteStorage) RecentConversions(ctx context.Context, limit int) ([]*types.ConversionRecord, error) {
	return s.queryConversions(ctx, "", limit)
}

// FailedConversions returns the newest failed records first
func (s *SQLiteStorage) FailedConversions(ctx context.Context, limit int) ([]*types.ConversionRecord, error) {
	return s.queryConversions(ctx, "WHERE success = 0", limit)
}

func (s *SQLiteStorage) queryConversions(ctx context.Context, where string, limit int) ([]*types.ConversionRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, from_format, to_format, detected, success, error,
			input_bytes, output_bytes, duration_us, created_at
		FROM conversions
		`+where+`
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.ConversionRecord
	for rows.Next() {
		var (
			rec        types.ConversionRecord
			durationUS int64
			createdAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.From, &rec.To, &rec.Detected, &rec.Success, &rec.Error,
			&rec.InputBytes, &rec.OutputBytes, &durationUS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// PruneConversions keeps the newest keep records and deletes the rest in
// batches. keep of 0 means unlimited.
func (s *SQLiteStorage) PruneConversions(ctx context.Context, keep, batchSize int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("history limit cannot be negative")
	}
	if keep == 0 {
		return 0, nil
	}
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	totalDeleted := 0
	for {
		select {
		case <-ctx.Done():
			return totalDeleted, ctx.Err()
		default:
		}

		result, err := s.db.ExecContext(ctx, `
			DELETE FROM conversions
			WHERE id IN (
				SELECT id FROM conversions
				ORDER BY id DESC
				LIMIT -1 OFFSET ?
			)
			AND id IN (
				SELECT id FROM conversions
				ORDER BY id ASC
				LIMIT ?
			)
		`, keep, batchSize)
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to prune conversions: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		totalDeleted += int(rowsAffected)

		if rowsAffected < int64(batchSize) {
			break
		}
	}
	return totalDeleted, nil
}
