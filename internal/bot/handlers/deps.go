package handlers

import (
	"log/slog"

	"github.com/warfbot/warfbot/internal/config"
	"github.com/warfbot/warfbot/internal/lookup"
	"github.com/warfbot/warfbot/internal/notify"
	"github.com/warfbot/warfbot/internal/worldstate"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Core       *notify.Core
	Worldstate *worldstate.Client
	Lookup     *lookup.DB
}
