package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/steveyegge/toolkit/internal/timeblock"
)

// SaveBlock inserts or updates a calendar block for day (YYYY-MM-DD)
func (s *SQLiteStorage) SaveBlock(ctx context.Context, day string, b timeblock.Block) error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("block has no ID")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_blocks (id, day, title, category, start_at, end_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			title = excluded.title,
			category = excluded.category,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			notes = excluded.notes
	`, b.ID.String(), day, b.Title, b.Category, formatTime(b.Start), formatTime(b.End), b.Notes)
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// DeleteBlock removes a block by ID
func (s *SQLiteStorage) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("block " + id.String())
	}
	return nil
}

// ListBlocks returns the blocks stored for day ordered by start
func (s *SQLiteStorage) ListBlocks(ctx context.Context, day string) ([]timeblock.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, start_at, end_at, notes
		FROM time_blocks
		WHERE day = ?
		ORDER BY start_at, end_at, title
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []timeblock.Block
	for rows.Next() {
		var (
			b                   timeblock.Block
			id, startAt, endAt string
		)
		if err := rows.Scan(&id, &b.Title, &b.Category, &startAt, &endAt, &b.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid stored block ID %q: %w", id, err)
		}
		if b.Start, err = parseTime(startAt); err != nil {
			return nil, err
		}
		if b.End, err = parseTime(endAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// ReplaceDay atomically swaps the stored blocks of day for blocks
func (s *SQLiteStorage) ReplaceDay(ctx context.Context, day string, blocks []timeblock.Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_blocks WHERE day = ?`, day); err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}
	for _, b := range blocks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO time_blocks (id, day, title, category, start_at, end_at, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, b.ID.String(), day, b.Title, b.Category, formatTime(b.Start), formatTime(b.End), b.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert block %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}
