package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAnnounceHandler returns a handler for the admin-only /announce command,
// which broadcasts the rest of the message to every subscriber.
func NewAnnounceHandler(deps HandlerDeps) bot.HandlerFunc {
	return announceHandler{deps}.Handle
}

type announceHandler struct {
	deps HandlerDeps
}

func (h announceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "announce")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Announce handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	text := commandArgument(update.Message.Text)

	var reply string
	if text == "" {
		reply = "Usage: /announce <message>"
	} else {
		report := h.deps.Core.Announce(ctx, text)
		log.InfoContext(ctx, "Manual announcement dispatched",
			"sent", report.Sent, "failed", report.Failed, "removed", len(report.Removed))
		reply = fmt.Sprintf("Announcement sent to %d subscribers (%d failed, %d pruned).",
			report.Sent, report.Failed, len(report.Removed))
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send announce confirmation", "error", err, "chat_id", chatID)
	}
}
