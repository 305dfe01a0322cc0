package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// maxInvasionsShown caps the reply length; Telegram messages have a hard
// size limit and old invasions are rarely interesting anyway.
const maxInvasionsShown = 8

// NewInvasionsHandler returns a handler for the /invasions command.
func NewInvasionsHandler(deps HandlerDeps) bot.HandlerFunc {
	return invasionsHandler{deps}.Handle
}

type invasionsHandler struct {
	deps HandlerDeps
}

func (h invasionsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "invasions")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Invasions handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: invasionsText(ctx, h.deps)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send invasions message", "error", err, "chat_id", chatID)
	}
}

func invasionsText(ctx context.Context, deps HandlerDeps) string {
	snap, err := deps.Worldstate.Fetch(ctx)
	if err != nil {
		return worldstateUnavailableText
	}
	return formatInvasions(snap.ActiveInvasions(maxInvasionsShown))
}
