package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/warfbot/warfbot/internal/notify"
)

// NewUnsubscribeHandler returns a handler for the /unsubscribe command.
func NewUnsubscribeHandler(deps HandlerDeps) bot.HandlerFunc {
	return unsubscribeHandler{deps}.Handle
}

type unsubscribeHandler struct {
	deps HandlerDeps
}

func (h unsubscribeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "unsubscribe")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Unsubscribe handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	text := unsubscribeChat(ctx, h.deps, notify.Destination(chatID))

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send unsubscribe confirmation", "error", err, "chat_id", chatID)
	}
}
