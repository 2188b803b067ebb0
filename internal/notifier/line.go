package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/models"
)

// LinePushEndpoint is the LINE Messaging API push endpoint.
const LinePushEndpoint = "https://api.line.me/v2/bot/message/push"

const (
	maxParallelPushes = 4
	maxErrorBody      = 4 << 10
)

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Line pushes the compact report to every configured LINE user.
type Line struct {
	log       *slog.Logger
	client    *http.Client
	formatter *Formatter
	endpoint  string
	token     string
	users     []string
}

// NewLine creates a LINE channel. A nil client means http.DefaultClient.
func NewLine(log *slog.Logger, cfg config.LineConfig, formatter *Formatter, client *http.Client) *Line {
	if client == nil {
		client = http.DefaultClient
	}

	return &Line{
		log:       log,
		client:    client,
		formatter: formatter,
		endpoint:  LinePushEndpoint,
		token:     cfg.ChannelAccessToken,
		users:     cfg.Users,
	}
}

// WithEndpoint overrides the push URL.
func (l *Line) WithEndpoint(endpoint string) *Line {
	l.endpoint = endpoint
	return l
}

func (l *Line) Name() string { return "line" }

// Notify sends one push per user. A failed user does not stop delivery to the others;
// all failures are returned together.
func (l *Line) Notify(ctx context.Context, changes *models.Changes, current []models.Product) error {
	const opn = "notifier.Line.Notify"
	log := l.log.With("op", opn)

	if l.token == "" || len(l.users) == 0 {
		log.WarnContext(ctx, "LINE delivery skipped", "reason", ErrMissingCredentials)
		return nil
	}

	text := l.formatter.Format(changes, current)
	errs := make([]error, len(l.users))

	var grp errgroup.Group
	grp.SetLimit(maxParallelPushes)
	for i, user := range l.users {
		grp.Go(func() error {
			errs[i] = l.push(ctx, user, text)
			return nil
		})
	}
	_ = grp.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	log.InfoContext(ctx, "LINE notification sent", "recipients", len(l.users))

	return nil
}

func (l *Line) push(ctx context.Context, user, text string) error {
	payload, err := json.Marshal(linePushRequest{
		To:       user,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("recipient %s: failed to encode message: %w", user, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("recipient %s: failed to create request: %w", user, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("recipient %s: failed to send request: %w", user, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("recipient %s: LINE API error: %d %s", user, resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
