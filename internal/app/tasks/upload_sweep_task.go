package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// staleUploadAge is how old an upload staging directory must be before the
// sweep removes it. Directories are normally removed when their request
// finishes; anything older than this is a crash leftover.
const staleUploadAge = time.Hour

// newUploadSweepTask creates the scheduled task function for removing stale
// upload staging directories.
func newUploadSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "upload_sweep")

	return func(ctx context.Context) error {
		root := deps.Config.Uploads.TempDir
		if root == "" {
			root = os.TempDir()
		}

		log.InfoContext(ctx, "Starting scheduled upload sweep task...", "dir", root)
		startTime := time.Now()

		entries, err := os.ReadDir(root)
		if err != nil {
			log.ErrorContext(ctx, "Upload sweep task failed to read directory", "dir", root, "error", err)
			return fmt.Errorf("upload sweep failed: %w", err)
		}

		cutoff := time.Now().Add(-staleUploadAge)
		removed := 0
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "assignmate-") {
				continue
			}

			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(root, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				log.WarnContext(ctx, "Failed to remove stale upload directory", "path", path, "error", err)
				continue
			}
			removed++
		}

		log.InfoContext(ctx, "Scheduled upload sweep task completed successfully", "removed", removed, "duration", time.Since(startTime))
		return nil
	}
}
