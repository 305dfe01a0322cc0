package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/warfbot/warfbot/internal/cycle"
)

// NewCyclesHandler returns a handler for the /cycles command: a compact
// overview of every tracked cycle with per-location detail buttons.
func NewCyclesHandler(deps HandlerDeps) bot.HandlerFunc {
	return cyclesHandler{deps}.Handle
}

type cyclesHandler struct {
	deps HandlerDeps
}

func (h cyclesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cycles")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Cycles handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID

	if arg := commandArgument(update.Message.Text); arg != "" {
		var text string
		if loc, ok := cycle.ParseLocation(arg); ok {
			text = singleCycleStatus(ctx, h.deps, loc)
		} else {
			text = fmt.Sprintf("Unknown location %q. Try: cetus, vallis, cambion, earth.", arg)
		}
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send cycles message", "error", err, "chat_id", chatID)
		}
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        cyclesOverview(h.deps),
		ReplyMarkup: cyclesKeyboard(h.deps),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send cycles message", "error", err, "chat_id", chatID)
	}
}

func cyclesOverview(deps HandlerDeps) string {
	var sb strings.Builder
	for _, loc := range deps.Core.Table().Locations() {
		state, err := deps.Core.CurrentPhase(loc)
		if err != nil {
			continue
		}
		sb.WriteString(locationTitle(loc))
		sb.WriteString(": ")
		sb.WriteString(state.Phase)
		sb.WriteString(", ")
		sb.WriteString(formatDuration(state.Remaining))
		sb.WriteString(" left\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func cyclesKeyboard(deps HandlerDeps) *models.InlineKeyboardMarkup {
	var row []models.InlineKeyboardButton
	for _, loc := range deps.Core.Table().Locations() {
		row = append(row, models.InlineKeyboardButton{
			Text:         locationTitle(loc),
			CallbackData: "cycle_" + string(loc),
		})
	}
	// Two buttons per row keeps labels readable on phones.
	var rows [][]models.InlineKeyboardButton
	for len(row) > 2 {
		rows = append(rows, row[:2])
		row = row[2:]
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
