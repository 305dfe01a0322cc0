package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBaroHandler returns a handler for the /baro command.
func NewBaroHandler(deps HandlerDeps) bot.HandlerFunc {
	return baroHandler{deps}.Handle
}

type baroHandler struct {
	deps HandlerDeps
}

func (h baroHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "baro")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Baro handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: baroText(ctx, h.deps)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send void trader message", "error", err, "chat_id", chatID)
	}
}

func baroText(ctx context.Context, deps HandlerDeps) string {
	snap, err := deps.Worldstate.Fetch(ctx)
	if err != nil {
		return worldstateUnavailableText
	}
	if snap.VoidTrader == nil {
		return "No void trader data in the current world state."
	}
	return formatVoidTrader(snap.VoidTrader)
}
