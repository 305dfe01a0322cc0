package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/warfbot/warfbot/internal/notify"
)

// NewSubscribeHandler returns a handler for the /subscribe command.
func NewSubscribeHandler(deps HandlerDeps) bot.HandlerFunc {
	return subscribeHandler{deps}.Handle
}

type subscribeHandler struct {
	deps HandlerDeps
}

func (h subscribeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "subscribe")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Subscribe handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	text := subscribeChat(ctx, h.deps, notify.Destination(chatID))

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send subscribe confirmation", "error", err, "chat_id", chatID)
	}
}

// subscribeChat performs the subscription and returns the user-facing
// outcome. Shared by the command handler and the menu callback.
func subscribeChat(ctx context.Context, deps HandlerDeps, dest notify.Destination) string {
	if deps.Core.Registry().Subscribe(ctx, dest) {
		return "Subscribed. You will get a heads-up before each cycle phase change."
	}
	return "You are already subscribed."
}

// unsubscribeChat is the inverse of subscribeChat.
func unsubscribeChat(ctx context.Context, deps HandlerDeps, dest notify.Destination) string {
	if deps.Core.Registry().Unsubscribe(ctx, dest) {
		return "Unsubscribed. No more phase-change alerts for this chat."
	}
	return "This chat was not subscribed."
}
