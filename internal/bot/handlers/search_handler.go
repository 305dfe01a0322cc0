package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSearchHandler returns a handler for the /search command.
func NewSearchHandler(deps HandlerDeps) bot.HandlerFunc {
	return searchHandler{deps}.Handle
}

type searchHandler struct {
	deps HandlerDeps
}

func (h searchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "search")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Search handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	query := commandArgument(update.Message.Text)

	var text string
	if query == "" {
		text = "Usage: /search <warframe name>, e.g. /search rhino"
	} else {
		text = searchText(h.deps, query)
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send search result", "error", err, "chat_id", chatID)
	}
}

func searchText(deps HandlerDeps, query string) string {
	if wf := deps.Lookup.Search(query); wf != nil {
		return formatWarframe(wf)
	}
	return fmt.Sprintf("Nothing found for %q. Known warframes: %s.", query, strings.Join(deps.Lookup.Names(), ", "))
}
