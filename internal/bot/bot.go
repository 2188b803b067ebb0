// Package bot delivers reports to Telegram and runs the interactive helper bot.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/repository"
)

// NewAPI connects to Telegram. Offline skips the getMe handshake, which is enough for pushing messages.
func NewAPI(cfg config.TelegramConfig, offline bool) (*telebot.Bot, error) {
	api, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.Token,
		Poller:  &telebot.LongPoller{Timeout: cfg.Timeout},
		Offline: offline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	return api, nil
}

// Bot answers chat commands about the watcher.
type Bot struct {
	bot      API
	log      *slog.Logger
	states   repository.StateRepository
	subs     Subscribers
	location *time.Location
}

// NewBot wires the command handlers. subs may be nil, then /subscribe is not offered.
func NewBot(
	log *slog.Logger,
	api API,
	states repository.StateRepository,
	subs Subscribers,
	location *time.Location,
) *Bot {
	botInstance := &Bot{bot: api, log: log, states: states, subs: subs, location: location}

	botInstance.registerRoutes()

	return botInstance
}

// Start launches the bot to listen for updates. It blocks until Stop.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/status", b.statusHandler)

	if b.subs != nil {
		b.bot.Handle("/subscribe", b.subscribeHandler)
		b.bot.Handle("/unsubscribe", b.unsubscribeHandler)
	}
}
