package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = "Commands:\n" +
	"/status [location] — phase and time remaining for one or all cycles\n" +
	"/cycles — all open-world cycles at a glance\n" +
	"/subscribe — receive alerts before phase changes\n" +
	"/unsubscribe — stop receiving alerts\n" +
	"/sortie — today's sortie\n" +
	"/baro — Void Trader schedule and inventory\n" +
	"/invasions — active invasions and rewards\n" +
	"/search <name> — warframe reference lookup\n" +
	"/help — this message\n\n" +
	"Locations: cetus, vallis, cambion, earth"

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: helpText})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
