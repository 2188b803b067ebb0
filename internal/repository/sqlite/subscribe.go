package sqlite

import (
	"context"
	"fmt"
	"time"
)

// AddSubscriber registers a Telegram chat for change notifications.
// It reports false when the chat was already subscribed.
func (r *Repository) AddSubscriber(ctx context.Context, chatID int64) (bool, error) {
	const opn = "repository.sqlite.AddSubscriber"

	res, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO subscriptions (chat_id, subscribed_at) VALUES (?, ?)",
		chatID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("%s: %w", opn, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}

	return affected > 0, nil
}

// RemoveSubscriber deletes the chat. It reports false when the chat was not subscribed.
func (r *Repository) RemoveSubscriber(ctx context.Context, chatID int64) (bool, error) {
	const opn = "repository.sqlite.RemoveSubscriber"

	res, err := r.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE chat_id = ?", chatID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", opn, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read affected rows: %w", opn, err)
	}

	return affected > 0, nil
}

// Subscribers returns every subscribed chat ID in subscription order.
func (r *Repository) Subscribers(ctx context.Context) ([]int64, error) {
	const opn = "repository.sqlite.Subscribers"

	rows, err := r.db.QueryContext(ctx, "SELECT chat_id FROM subscriptions ORDER BY subscribed_at, chat_id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: failed to scan chat_id: %w", opn, err)
		}
		chatIDs = append(chatIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return chatIDs, nil
}
