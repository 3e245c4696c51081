// Package tasks implements scheduled background tasks for the assignmate
// service: cache purging, database maintenance, and stale upload sweeping.
package tasks

import (
	"log/slog"

	"assignmate/internal/config"
	"assignmate/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
