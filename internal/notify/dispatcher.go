package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/time/rate"
)

// ErrDestinationGone marks a permanent delivery failure: the recipient
// blocked the bot, the chat was deleted, or the destination is otherwise
// unreachable for good. The transport wraps its own error classes into this
// sentinel; any other error is treated as transient.
var ErrDestinationGone = errors.New("destination permanently unreachable")

// Sender delivers one text message to one destination. Implemented by the
// chat transport.
type Sender func(ctx context.Context, dest Destination, text string) error

// DeliveryReport summarizes the outcome of one broadcast batch.
type DeliveryReport struct {
	Sent    int
	Failed  int
	Removed []Destination
}

// Dispatcher broadcasts alert messages to every registered subscriber.
// Destinations that report a permanent failure are pruned from the registry;
// transient failures are counted and the destination kept. A single
// destination's failure never aborts the batch.
type Dispatcher struct {
	send     Sender
	registry *Registry
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. messagesPerSecond bounds the broadcast
// rate so large subscriber sets do not trip the transport's flood limits;
// zero or negative disables the limiter.
func NewDispatcher(send Sender, registry *Registry, messagesPerSecond float64, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var limiter *rate.Limiter
	if messagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(messagesPerSecond), 1)
	}
	return &Dispatcher{
		send:     send,
		registry: registry,
		limiter:  limiter,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch delivers the message to a snapshot of the current subscriber set
// and returns a report of what happened. After the loop, any pruned
// destinations have already been removed (and removal persisted) via the
// registry.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) DeliveryReport {
	var report DeliveryReport

	targets := d.registry.All()
	d.logger.InfoContext(ctx, "Dispatching alert", "subscribers", len(targets))

	for _, dest := range targets {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				// Context cancelled mid-batch; count the rest as transient.
				report.Failed += len(targets) - report.Sent - report.Failed - len(report.Removed)
				d.logger.WarnContext(ctx, "Dispatch interrupted", "error", err)
				break
			}
		}

		err := d.send(ctx, dest, text)
		switch {
		case err == nil:
			report.Sent++
		case errors.Is(err, ErrDestinationGone):
			d.logger.InfoContext(ctx, "Pruning unreachable subscriber", "destination", dest, "error", err)
			d.registry.Remove(ctx, dest)
			report.Removed = append(report.Removed, dest)
		default:
			d.logger.WarnContext(ctx, "Transient delivery failure", "destination", dest, "error", err)
			report.Failed++
		}
	}

	d.logger.InfoContext(ctx, "Dispatch finished",
		"sent", report.Sent, "failed", report.Failed, "removed", len(report.Removed))
	return report
}
