package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/toolkit/internal/types"
)

// SaveState stores value as JSON under (tool, key), replacing any
// previous value
func (s *SQLiteStorage) SaveState(ctx context.Context, tool types.Tool, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	entry := &types.StateEntry{Tool: tool, Key: key, Value: data, UpdatedAt: time.Now()}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tool_state (tool, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tool, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, string(entry.Tool), entry.Key, string(entry.Value), formatTime(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// GetState returns the raw saved entry
func (s *SQLiteStorage) GetState(ctx context.Context, tool types.Tool, key string) (*types.StateEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tool, key, value, updated_at FROM tool_state
		WHERE tool = ? AND key = ?
	`, string(tool), key)

	entry, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("state %s/%s", tool, key))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return entry, nil
}

// LoadState decodes the saved value into dest
func (s *SQLiteStorage) LoadState(ctx context.Context, tool types.Tool, key string, dest any) error {
	entry, err := s.GetState(ctx, tool, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("failed to decode state %s/%s: %w", tool, key, err)
	}
	return nil
}

// DeleteState removes a saved entry
func (s *SQLiteStorage) DeleteState(ctx context.Context, tool types.Tool, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tool_state WHERE tool = ? AND key = ?`, string(tool), key)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound(fmt.Sprintf("state %s/%s", tool, key))
	}
	return nil
}

// ListStates returns saved entries ordered by tool and key. An empty tool
// lists every tool.
func (s *SQLiteStorage) ListStates(ctx context.Context, tool types.Tool) ([]*types.StateEntry, error) {
	query := `SELECT tool, key, value, updated_at FROM tool_state`
	var args []any
	if tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, string(tool))
	}
	query += ` ORDER BY tool, key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*types.StateEntry
	for rows.Next() {
		entry, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(row scanner) (*types.StateEntry, error) {
	var (
		entry     types.StateEntry
		tool      string
		value     string
		updatedAt string
	)
	if err := row.Scan(&tool, &entry.Key, &value, &updatedAt); err != nil {
		return nil, err
	}
	ts, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	entry.Tool = types.Tool(tool)
	entry.Value = json.RawMessage(value)
	entry.UpdatedAt = ts
	return &entry, nil
}
