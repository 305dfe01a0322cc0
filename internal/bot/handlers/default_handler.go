package handlers

import (
	"context"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MatchPlainText matches text messages that are not commands. Registered as
// a match-func handler so it never competes with the command handlers.
func MatchPlainText(update *models.Update) bool {
	return update.Message != nil &&
		update.Message.Text != "" &&
		!strings.HasPrefix(update.Message.Text, "/")
}

// NewDefaultHandler returns the fallback for plain-text messages: it treats
// the text as a warframe lookup. Private chats are always answered; in
// groups the bot only reacts when it is @-mentioned, so it does not spam
// unrelated conversations.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	return (&defaultHandler{deps: deps}).Handle
}

type defaultHandler struct {
	deps HandlerDeps

	usernameOnce sync.Once
	username     string
}

func (h *defaultHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "default")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	if update.Message.From.IsBot {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	if update.Message.Chat.Type != models.ChatTypePrivate {
		mention := "@" + h.botUsername(ctx, b)
		if mention == "@" || !strings.Contains(text, mention) {
			return
		}
		text = strings.ReplaceAll(text, mention, "")
	}

	query := strings.TrimSpace(text)
	if query == "" || strings.HasPrefix(query, "/") {
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: searchText(h.deps, query)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send lookup reply", "error", err, "chat_id", chatID)
	}
}

// botUsername resolves the bot's own username once, on first group message.
func (h *defaultHandler) botUsername(ctx context.Context, b *bot.Bot) string {
	h.usernameOnce.Do(func() {
		me, err := b.GetMe(ctx)
		if err != nil {
			h.deps.Logger.WarnContext(ctx, "Failed to resolve bot username", "error", err)
			return
		}
		h.username = me.Username
	})
	return h.username
}
