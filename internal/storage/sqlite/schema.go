package sqlite

import "github.com/steveyegge/toolkit/internal/storage/migrations"

// schemaMigrations builds the database schema. Append new versions; never
// edit an applied one.
var schemaMigrations = []migrations.Migration{
	{
		Version:     1,
		Description: "Create tool state, time block and conversion tables",
		Up: `
-- Saved tool inputs, keyed by tool and a user-chosen name
CREATE TABLE IF NOT EXISTS tool_state (
    tool TEXT NOT NULL,
    key TEXT NOT NULL CHECK(length(key) <= 200),
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (tool, key)
);

-- Calendar blocks; day is YYYY-MM-DD, times are RFC 3339
CREATE TABLE IF NOT EXISTS time_blocks (
    id TEXT PRIMARY KEY,
    day TEXT NOT NULL,
    title TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    start_at TEXT NOT NULL,
    end_at TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_time_blocks_day ON time_blocks(day);

-- Conversion history
CREATE TABLE IF NOT EXISTS conversions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    from_format TEXT NOT NULL DEFAULT '',
    to_format TEXT NOT NULL,
    detected INTEGER NOT NULL DEFAULT 0,
    success INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    input_bytes INTEGER NOT NULL DEFAULT 0,
    output_bytes INTEGER NOT NULL DEFAULT 0,
    duration_us INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
`,
		Down: `
DROP TABLE IF EXISTS conversions;
DROP INDEX IF EXISTS idx_time_blocks_day;
DROP TABLE IF EXISTS time_blocks;
DROP TABLE IF EXISTS tool_state;
`,
	},
	{
		Version:     2,
		Description: "Index conversion history by outcome",
		Up:          `CREATE INDEX IF NOT EXISTS idx_conversions_success ON conversions(success, id);`,
		Down:        `DROP INDEX IF EXISTS idx_conversions_success;`,
	},
}
