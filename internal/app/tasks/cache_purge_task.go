package tasks

import (
	"context"
	"fmt"
	"time"
)

// newCachePurgeTask creates the scheduled task function for deleting expired
// answer cache entries.
func newCachePurgeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_purge")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled cache purge task...")
		startTime := time.Now()

		deleted, err := deps.Store.DeleteExpired(ctx)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Cache purge task failed", "error", err, "duration", duration)
			return fmt.Errorf("cache purge failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled cache purge task completed successfully", "deleted", deleted, "duration", duration)
		return nil
	}
}
