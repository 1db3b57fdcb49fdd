package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/steveyegge/toolkit/internal/storage/sqlite"
	"github.com/steveyegge/toolkit/internal/timeblock"
	"github.com/steveyegge/toolkit/internal/types"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = types.ErrNotFound

// Storage defines the interface for local persistence backends
type Storage interface {
	// Tool state - named snapshots of a tool's inputs
	SaveState(ctx context.Context, tool types.Tool, key string, value any) error
	LoadState(ctx context.Context, tool types.Tool, key string, dest any) error
	GetState(ctx context.Context, tool types.Tool, key string) (*types.StateEntry, error)
	DeleteState(ctx context.Context, tool types.Tool, key string) error
	ListStates(ctx context.Context, tool types.Tool) ([]*types.StateEntry, error)

	// Calendar blocks, grouped by YYYY-MM-DD day
	SaveBlock(ctx context.Context, day string, block timeblock.Block) error
	DeleteBlock(ctx context.Context, id uuid.UUID) error
	ListBlocks(ctx context.Context, day string) ([]timeblock.Block, error)
	ReplaceDay(ctx context.Context, day string, blocks []timeblock.Block) error

	// Conversion history
	RecordConversion(ctx context.Context, rec *types.ConversionRecord) error
	RecentConversions(ctx context.Context, limit int) ([]*types.ConversionRecord, error)
	FailedConversions(ctx context.Context, limit int) ([]*types.ConversionRecord, error)
	PruneConversions(ctx context.Context, keep, batchSize int) (int, error)

	// Lifecycle
	Path() string
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path. Empty means discover it
	// (see DiscoverDatabase). ":memory:" creates an in-memory database.
	Path string
}

// DefaultConfig returns a config that discovers the database
func DefaultConfig() *Config {
	return &Config{}
}

// NewStorage opens the SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	path := cfg.Path
	if path == "" {
		discovered, err := DiscoverDatabase()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	return sqlite.New(ctx, path)
}

// LoadDay reads a day's stored blocks into a calendar
func LoadDay(ctx context.Context, store Storage, day *timeblock.Day) error {
	blocks, err := store.ListBlocks(ctx, day.Key())
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if err := day.Restore(b); err != nil {
			return err
		}
	}
	return nil
}
