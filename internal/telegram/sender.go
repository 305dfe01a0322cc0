package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/warfbot/warfbot/internal/notify"
)

// NewSender adapts a bot instance to the dispatcher's send function. It
// translates the Telegram API's permanent delivery failures into
// notify.ErrDestinationGone so the dispatcher can prune dead subscribers;
// anything else is reported as transient.
func NewSender(b *bot.Bot, logger *slog.Logger) notify.Sender {
	log := logger.With("component", "telegram_sender")

	return func(ctx context.Context, dest notify.Destination, text string) error {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: int64(dest),
			Text:   text,
		})
		if err == nil {
			return nil
		}
		if isPermanentDeliveryFailure(err) {
			log.InfoContext(ctx, "Destination permanently unreachable", "destination", dest, "error", err)
			return fmt.Errorf("%w: %v", notify.ErrDestinationGone, err)
		}
		return fmt.Errorf("failed to send to %d: %w", dest, err)
	}
}

// isPermanentDeliveryFailure reports whether the error means the chat can
// never be reached again: the user blocked the bot, the bot was kicked, or
// the chat was deleted. Rate limits and network errors are transient.
func isPermanentDeliveryFailure(err error) bool {
	if errors.Is(err, bot.ErrorForbidden) {
		return true
	}
	if errors.Is(err, bot.ErrorBadRequest) {
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "chat not found") || strings.Contains(msg, "user is deactivated")
	}
	return false
}
