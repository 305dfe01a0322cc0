package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/warfbot/warfbot/internal/cycle"
	"github.com/warfbot/warfbot/internal/notify"
)

// NewStatusHandler returns a handler for the /status command. With no
// argument it reports every tracked cycle plus the chat's subscription state;
// with a location argument it reports that cycle only.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	arg := commandArgument(update.Message.Text)

	var text string
	if arg == "" {
		text = statusOverview(h.deps, notify.Destination(chatID))
	} else {
		loc, ok := cycle.ParseLocation(arg)
		if !ok {
			text = fmt.Sprintf("Unknown location %q. Try: cetus, vallis, cambion, earth.", arg)
		} else {
			text = singleCycleStatus(ctx, h.deps, loc)
		}
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
	}
}

// commandArgument strips the leading "/command[@bot]" token and returns the
// rest of the message, trimmed.
func commandArgument(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func statusOverview(deps HandlerDeps, dest notify.Destination) string {
	var sb strings.Builder
	for _, loc := range deps.Core.Table().Locations() {
		state, err := deps.Core.CurrentPhase(loc)
		if err != nil {
			continue
		}
		sb.WriteString(formatCycleStatus(loc, state))
		sb.WriteString("\n\n")
	}
	if deps.Core.Registry().Contains(dest) {
		sb.WriteString("Alerts: on (/unsubscribe to stop)")
	} else {
		sb.WriteString("Alerts: off (/subscribe to enable)")
	}
	return sb.String()
}

func singleCycleStatus(ctx context.Context, deps HandlerDeps, loc cycle.LocationID) string {
	state, err := deps.Core.CurrentPhase(loc)
	if err != nil {
		return fmt.Sprintf("No cycle data for %q.", loc)
	}

	// The Cambion clock mirrors Cetus by construction, but the provider
	// publishes its authoritative state; prefer it when fresh.
	if loc == cycle.Cambion {
		if snap, ferr := deps.Worldstate.Fetch(ctx); ferr == nil && snap.CambionCycle != nil {
			if override, ok := snap.CambionCycle.AsState(); ok {
				state = override
			}
		}
	}
	return formatCycleStatus(loc, state)
}
