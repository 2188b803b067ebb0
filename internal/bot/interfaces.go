package bot

import (
	"context"

	"gopkg.in/telebot.v4"
)

// API is the part of *telebot.Bot used here.
type API interface {
	// Handle lets you set the handler for some command name or one of the supported endpoints.
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
	// Start brings bot into motion by consuming incoming updates.
	Start()
	// Stop gracefully shuts the poller down.
	Stop()

	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Subscribers keeps the chats that opted in with /subscribe.
type Subscribers interface {
	AddSubscriber(ctx context.Context, chatID int64) (bool, error)
	RemoveSubscriber(ctx context.Context, chatID int64) (bool, error)
	Subscribers(ctx context.Context) ([]int64, error)
}
