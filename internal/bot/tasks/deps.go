// Package tasks implements the bot's scheduled tasks: the minute cycle
// check, the periodic state flush, and SQL maintenance.
package tasks

import (
	"log/slog"

	"github.com/warfbot/warfbot/internal/config"
	"github.com/warfbot/warfbot/internal/database"
	"github.com/warfbot/warfbot/internal/notify"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Core   *notify.Core
	Config *config.Config
}
