package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/notifier"
)

// Notifier posts the compact report to Telegram chats.
type Notifier struct {
	api       API
	log       *slog.Logger
	formatter *notifier.Formatter
	chats     []int64
	subs      Subscribers
}

// NewNotifier creates the Telegram channel. Recipients are chats plus, when subs is not nil, every subscriber.
func NewNotifier(log *slog.Logger, api API, formatter *notifier.Formatter, chats []int64, subs Subscribers) *Notifier {
	return &Notifier{api: api, log: log, formatter: formatter, chats: chats, subs: subs}
}

func (n *Notifier) Name() string { return "telegram" }

// Notify sends one message per chat. Failed chats do not stop the others.
func (n *Notifier) Notify(ctx context.Context, changes *models.Changes, current []models.Product) error {
	const opn = "bot.Notifier.Notify"
	log := n.log.With("op", opn)

	recipients, err := n.recipients(ctx)
	if err != nil {
		log.WarnContext(ctx, "Failed to load subscribers, using configured chats only", "error", err)
	}
	if len(recipients) == 0 {
		log.WarnContext(ctx, "Telegram delivery skipped", "reason", notifier.ErrMissingCredentials)
		return nil
	}

	text := n.formatter.Format(changes, current)

	var errs []error
	for _, id := range recipients {
		if _, err = n.api.Send(&telebot.Chat{ID: id}, text, telebot.NoPreview); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", opn, errors.Join(errs...))
	}

	log.InfoContext(ctx, "Telegram notification sent", "recipients", len(recipients))

	return nil
}

// recipients merges configured chats and subscribers, keeping the first occurrence.
func (n *Notifier) recipients(ctx context.Context) ([]int64, error) {
	all := append([]int64(nil), n.chats...)

	var err error
	if n.subs != nil {
		var subscribed []int64
		subscribed, err = n.subs.Subscribers(ctx)
		all = append(all, subscribed...)
	}

	seen := make(map[int64]struct{}, len(all))
	out := all[:0]
	for _, id := range all {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out, err
}
