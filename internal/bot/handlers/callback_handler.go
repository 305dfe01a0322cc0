package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/warfbot/warfbot/internal/cycle"
	"github.com/warfbot/warfbot/internal/notify"
)

// NewCallbackHandler returns the handler for inline-keyboard callbacks. The
// menu buttons reuse the same logic as the slash commands; callback data is
// "cmd_<command>", "cycle_<location>", or a subscribe confirmation.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	if update.CallbackQuery == nil {
		return
	}
	query := update.CallbackQuery

	// Always answer; otherwise the client shows a spinner until timeout.
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_id", query.ID)
	}

	if query.Message.Message.Date == 0 {
		log.WarnContext(ctx, "Callback query without accessible message", "callback_id", query.ID, "data", query.Data)
		return
	}
	chatID := query.Message.Message.Chat.ID

	text, markup := h.resolve(ctx, query.Data, chatID)
	if text == "" {
		log.WarnContext(ctx, "Unknown callback data", "data", query.Data, "chat_id", chatID)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send callback reply", "error", err, "chat_id", chatID, "data", query.Data)
	}
}

// resolve maps callback data to reply text and an optional keyboard. Empty
// text means the data was not recognised.
func (h callbackHandler) resolve(ctx context.Context, data string, chatID int64) (string, models.ReplyMarkup) {
	switch data {
	case "cmd_sortie":
		return sortieText(ctx, h.deps), nil
	case "cmd_baro":
		return baroText(ctx, h.deps), nil
	case "cmd_invasions":
		return invasionsText(ctx, h.deps), nil
	case "cmd_cycles":
		return cyclesOverview(h.deps), cyclesKeyboard(h.deps)
	case "cmd_status":
		return statusOverview(h.deps, notify.Destination(chatID)), nil
	case "cmd_subscribe":
		return h.subscribePrompt(chatID)
	case "sub_yes":
		return subscribeChat(ctx, h.deps, notify.Destination(chatID)), nil
	case "sub_no":
		return unsubscribeChat(ctx, h.deps, notify.Destination(chatID)), nil
	}

	if loc, ok := strings.CutPrefix(data, "cycle_"); ok {
		if id, known := cycle.ParseLocation(loc); known {
			return singleCycleStatus(ctx, h.deps, id), nil
		}
	}
	return "", nil
}

func (h callbackHandler) subscribePrompt(chatID int64) (string, models.ReplyMarkup) {
	var text string
	if h.deps.Core.Registry().Contains(notify.Destination(chatID)) {
		text = "Phase-change alerts are on for this chat."
	} else {
		text = "Phase-change alerts are off for this chat."
	}
	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Enable", CallbackData: "sub_yes"},
				{Text: "Disable", CallbackData: "sub_no"},
			},
		},
	}
	return text, markup
}
