package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// mainMenuKeyboard is the inline keyboard attached to the /start message.
// Every button routes through the callback handler to the same logic as the
// corresponding slash command.
func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Sortie", CallbackData: "cmd_sortie"},
				{Text: "Void Trader", CallbackData: "cmd_baro"},
			},
			{
				{Text: "Invasions", CallbackData: "cmd_invasions"},
				{Text: "Cycles", CallbackData: "cmd_cycles"},
			},
			{
				{Text: "Status", CallbackData: "cmd_status"},
				{Text: "Alerts", CallbackData: "cmd_subscribe"},
			},
		},
	}
}

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	welcome := "Warframe world-state bot.\n\n" +
		"Pick a command below or type one:\n" +
		"/status — cycle overview\n" +
		"/subscribe — phase-change alerts\n" +
		"/search <warframe> — reference lookup"

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        welcome,
		ReplyMarkup: mainMenuKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
