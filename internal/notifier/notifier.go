// Package notifier renders change reports and delivers them over the configured channels.
package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Houeta/catalog-watcher/internal/models"
)

// ErrMissingCredentials marks a channel that is enabled but cannot deliver. It is logged, never returned.
var ErrMissingCredentials = errors.New("missing credentials or recipients")

// Notifier is one delivery channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string
	// Notify delivers a report of changes. current is the full new snapshot.
	Notify(ctx context.Context, changes *models.Changes, current []models.Product) error
}

// Dispatcher fans a report out to every channel, isolating failures per channel.
type Dispatcher struct {
	log       *slog.Logger
	notifiers []Notifier
}

func NewDispatcher(log *slog.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{log: log, notifiers: notifiers}
}

// Len returns the number of registered channels.
func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}

// NotifyAll runs every channel in registration order and returns how many of them failed.
func (d *Dispatcher) NotifyAll(ctx context.Context, changes *models.Changes, current []models.Product) int {
	const opn = "notifier.NotifyAll"
	log := d.log.With("op", opn)

	failed := 0
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, changes, current); err != nil {
			failed++
			log.ErrorContext(ctx, "Notification failed", "channel", n.Name(), "error", err)
			continue
		}
		log.DebugContext(ctx, "Notification delivered", "channel", n.Name())
	}

	return failed
}
