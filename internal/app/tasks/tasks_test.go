// Package tasks_test tests the scheduled background tasks.
package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"assignmate/internal/app/tasks"
	"assignmate/internal/config"
)

func newTaskMap(t *testing.T, tempDir string) map[string]tasks.ScheduledTaskFunc {
	t.Helper()
	return tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			Uploads: config.UploadConfig{TempDir: tempDir},
		},
	})
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	taskMap := newTaskMap(t, t.TempDir())
	for _, name := range []string{"cache_purge", "sql_maintenance", "upload_sweep"} {
		if taskMap[name] == nil {
			t.Errorf("task %q not registered", name)
		}
	}
}

func TestUploadSweepRemovesOnlyStaleStagingDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	stale := time.Now().Add(-2 * time.Hour)

	mkdir := func(name string) string {
		t.Helper()
		path := filepath.Join(root, name)
		if err := os.Mkdir(path, 0o750); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		return path
	}
	backdate := func(path string) {
		t.Helper()
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("failed to backdate %s: %v", path, err)
		}
	}

	staleDir := mkdir("assignmate-stale")
	backdate(staleDir)

	freshDir := mkdir("assignmate-fresh")

	foreignDir := mkdir("other-stale")
	backdate(foreignDir)

	// A stale regular file matching the prefix must survive: the sweep only
	// removes directories.
	staleFile := filepath.Join(root, "assignmate-file")
	if err := os.WriteFile(staleFile, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	backdate(staleFile)

	sweep := newTaskMap(t, root)["upload_sweep"]
	if err := sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if _, err := os.Stat(staleDir); !os.IsNotExist(err) {
		t.Errorf("stale staging dir should have been removed, stat err = %v", err)
	}
	for _, path := range []string{freshDir, foreignDir, staleFile} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should have survived the sweep: %v", filepath.Base(path), err)
		}
	}
}

func TestUploadSweepMissingDirFails(t *testing.T) {
	t.Parallel()

	sweep := newTaskMap(t, filepath.Join(t.TempDir(), "does-not-exist"))["upload_sweep"]
	if err := sweep(context.Background()); err == nil {
		t.Error("sweep of a missing directory should return an error")
	}
}
