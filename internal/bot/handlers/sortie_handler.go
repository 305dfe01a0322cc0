package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const worldstateUnavailableText = "World-state data is unavailable right now, try again in a minute."

// NewSortieHandler returns a handler for the /sortie command.
func NewSortieHandler(deps HandlerDeps) bot.HandlerFunc {
	return sortieHandler{deps}.Handle
}

type sortieHandler struct {
	deps HandlerDeps
}

func (h sortieHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "sortie")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Sortie handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sortieText(ctx, h.deps)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send sortie message", "error", err, "chat_id", chatID)
	}
}

func sortieText(ctx context.Context, deps HandlerDeps) string {
	snap, err := deps.Worldstate.Fetch(ctx)
	if err != nil {
		return worldstateUnavailableText
	}
	if snap.Sortie == nil {
		return "No sortie data in the current world state."
	}
	return formatSortie(snap.Sortie)
}
