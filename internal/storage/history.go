package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/types"
)

// pruneBatchSize bounds each DELETE issued while trimming history
const pruneBatchSize = 100

// NewConversionRecord describes a finished conversion for the history table
func NewConversionRecord(source string, res format.Result, inputBytes int, d time.Duration) *types.ConversionRecord {
	if source == "" {
		source = "-"
	}
	to := res.To
	if to == "" {
		to = format.FormatUnknown
	}
	return &types.ConversionRecord{
		Source:      source,
		From:        string(res.From),
		To:          string(to),
		Detected:    res.Detected,
		Success:     res.Success,
		Error:       res.Error,
		InputBytes:  inputBytes,
		OutputBytes: len(res.Output),
		Duration:    d,
	}
}

// RecordConversion appends rec and trims the history to keep records
// (0 keeps everything)
func RecordConversion(ctx context.Context, store Storage, rec *types.ConversionRecord, keep int) error {
	if err := store.RecordConversion(ctx, rec); err != nil {
		return err
	}
	if keep > 0 {
		if _, err := store.PruneConversions(ctx, keep, pruneBatchSize); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}
	return nil
}
