package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/repository"
)

const handlerTimeout = 10 * time.Second

// startHandler replies with the chat ID, which is what telegram.chats expects.
func (b *Bot) startHandler(c telebot.Context) error {
	chatID := c.Chat().ID
	b.log.Info("User started the bot", "username", c.Sender().Username, "chat_id", chatID)

	reply := fmt.Sprintf("Hello! This chat ID is %d.\nAdd it to notifiers.telegram.chats to receive catalogue changes.", chatID)
	if err := c.Send(reply); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// statusHandler reports the stored snapshot.
func (b *Bot) statusHandler(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	state, err := b.states.GetState(ctx)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		b.log.Error("failed to read state", "op", "bot.statusHandler", "error", err)
		return sendOrWrap(c, "Could not read the stored snapshot.")
	}

	return sendOrWrap(c, statusText(state, b.location))
}

func (b *Bot) subscribeHandler(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	added, err := b.subs.AddSubscriber(ctx, c.Chat().ID)
	if err != nil {
		b.log.Error("failed to subscribe chat", "op", "bot.subscribeHandler", "chat_id", c.Chat().ID, "error", err)
		return sendOrWrap(c, "Subscription failed, please try again later.")
	}
	if !added {
		return sendOrWrap(c, "This chat is already subscribed.")
	}

	return sendOrWrap(c, "Subscribed. Catalogue changes will be posted here.")
}

func (b *Bot) unsubscribeHandler(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	removed, err := b.subs.RemoveSubscriber(ctx, c.Chat().ID)
	if err != nil {
		b.log.Error("failed to unsubscribe chat", "op", "bot.unsubscribeHandler", "chat_id", c.Chat().ID, "error", err)
		return sendOrWrap(c, "Unsubscribe failed, please try again later.")
	}
	if !removed {
		return sendOrWrap(c, "This chat was not subscribed.")
	}

	return sendOrWrap(c, "Unsubscribed.")
}

func sendOrWrap(c telebot.Context, text string) error {
	if err := c.Send(text); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// statusText summarizes a snapshot; state is nil before the first run.
func statusText(state *models.State, loc *time.Location) string {
	if state == nil {
		return "No snapshot stored yet."
	}
	if loc == nil {
		loc = time.UTC
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Last check: %s\n", state.LastChecked.In(loc).Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Checks: %d\n", state.TotalChecks)
	fmt.Fprintf(&sb, "Products: %d", len(state.Products))

	return sb.String()
}
