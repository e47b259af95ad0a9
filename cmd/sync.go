package main

import (
	"context"
	"fmt"

	"github.com/cantus/hymnal/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun performs a full catalog resync, streaming progress to the terminal.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("starting catalog sync")

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.SyncAll(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.writePlainln("✓ Sync complete")
	r.writePlain("  Songs: %d\n", result.Songs)
	r.writePlain("  Note sheets: %d/%d stored\n", result.AssetsStored, result.AssetsAttempted)
	if result.AssetsFailed > 0 {
		r.writePlain("  Failed downloads: %d (retried on next sync)\n", result.AssetsFailed)
	}

	return nil
}

// SyncStatus shows cached catalog counts and the last sync time.
func (r *Runner) SyncStatus(ctx context.Context, cmd *cli.Command) error {
	songCount, err := r.songs.Count()
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}
	fileCount, err := r.files.Count()
	if err != nil {
		return fmt.Errorf("failed to count note sheets: %w", err)
	}

	r.writePlainHeader("Sync Status")
	r.writePlain("Cached songs: %d\n", songCount)
	r.writePlain("Cached note sheets: %d\n", fileCount)

	if last := r.engine.LastSync(); !last.IsZero() {
		r.writePlain("Last sync: %s\n", last.Format("2006-01-02 15:04:05"))
	}

	return nil
}
