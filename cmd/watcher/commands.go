package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Houeta/catalog-watcher/internal/bot"
	"github.com/Houeta/catalog-watcher/internal/browser"
	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/notifier"
	"github.com/Houeta/catalog-watcher/internal/parser"
	"github.com/Houeta/catalog-watcher/internal/repository"
	"github.com/Houeta/catalog-watcher/internal/repository/file"
	"github.com/Houeta/catalog-watcher/internal/repository/sqlite"
	"github.com/Houeta/catalog-watcher/internal/services/checker"
)

const pushTimeout = 15 * time.Second

// application holds what the commands share: settings, the watcher document and open resources.
type application struct {
	configPath string
	settings   *config.Settings
	cfg        *config.WatcherConfig
	log        *slog.Logger
	db         *sqlite.Repository
	closers    []io.Closer
}

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:               "watcher",
		Short:             "Watch a product catalogue page and report added, removed and repriced products",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE:              app.runCheck,
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "",
		"path to the watcher document (default $WATCHER_CONFIG or watcher.config.yml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "state",
			Short: "Print a summary of the stored snapshot",
			Args:  cobra.NoArgs,
			RunE:  app.runState,
		},
		&cobra.Command{
			Use:   "bot",
			Short: "Run the Telegram helper bot (/start, /status, /subscribe, /unsubscribe)",
			Args:  cobra.NoArgs,
			RunE:  app.runBot,
		},
	)

	return root
}

// setup loads settings, sets up logging and validates the watcher document. Any error here is fatal.
func (a *application) setup(_ *cobra.Command, _ []string) error {
	a.settings = config.LoadSettings()
	if a.configPath != "" {
		a.settings.ConfigPath = a.configPath
	}

	out, closer := logOutput(a.settings.LogFile)
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.log = setupLogger(a.settings.Env, out)

	cfg, err := config.Load(a.settings.ConfigPath, a.settings.DataDir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	return nil
}

func (a *application) runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	prs, err := parser.NewParser(a.log, a.cfg.Site)
	if err != nil {
		return err
	}

	repo, err := a.stateRepository(ctx)
	if err != nil {
		return err
	}

	chk := checker.NewChecker(
		a.log,
		a.cfg,
		a.fetcher(),
		prs,
		repository.NewStore(a.log, repo),
		notifier.NewDispatcher(a.log, a.notifiers(ctx, cmd.OutOrStdout())...),
	)

	_, err = chk.CheckForUpdates(ctx)
	return err
}

func (a *application) runState(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	repo, err := a.stateRepository(ctx)
	if err != nil {
		return err
	}

	state, err := repo.GetState(ctx)
	if errors.Is(err, repository.ErrStateNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No previous state (first run)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	loc := a.cfg.Site.Location()
	fmt.Fprintf(cmd.OutOrStdout(), "lastChecked: %s\ntotalChecks: %d\nproducts: %d\n",
		state.LastChecked.In(loc).Format("2006-01-02 15:04:05 MST"), state.TotalChecks, len(state.Products))

	return nil
}

func (a *application) runBot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	tgCfg := a.cfg.Notifiers.Telegram
	if tgCfg.Token == "" {
		return fmt.Errorf("telegram bot: %w", notifier.ErrMissingCredentials)
	}

	repo, err := a.stateRepository(ctx)
	if err != nil {
		return err
	}
	db, err := a.sqlite(ctx)
	if err != nil {
		return err
	}

	api, err := bot.NewAPI(tgCfg, false)
	if err != nil {
		return err
	}
	helper := bot.NewBot(a.log, api, repo, db, a.cfg.Site.Location())

	// Start the bot in a goroutine to allow the command to listen for signals.
	go helper.Start()

	a.log.InfoContext(ctx, "Bot started. Press Ctrl+C to stop.", "account", api.Me.Username)
	<-ctx.Done()

	helper.Stop()
	a.log.Info("Bot stopped gracefully.")

	return nil
}

// fetcher picks the page renderer.
func (a *application) fetcher() parser.Fetcher {
	if a.cfg.Site.Renderer == config.RendererHTTP {
		return parser.NewHTTPFetcher(a.log, &http.Client{Timeout: a.cfg.Browser.NavigationTimeout})
	}

	return browser.New(a.log, a.cfg.Browser)
}

// stateRepository opens the snapshot backend selected by storage.driver.
func (a *application) stateRepository(ctx context.Context) (repository.StateRepository, error) {
	if a.cfg.Storage.Driver == config.StorageSQLite {
		db, err := a.sqlite(ctx)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	return file.NewRepository(a.cfg.ProductsFile), nil
}

// sqlite opens <dataDir>/state.db once per process.
func (a *application) sqlite(ctx context.Context) (*sqlite.Repository, error) {
	if a.db != nil {
		return a.db, nil
	}

	db, err := sqlite.NewRepository(ctx, a.log, a.cfg.SQLiteFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", a.cfg.SQLiteFile, err)
	}
	a.db = db
	a.closers = append(a.closers, db)

	return db, nil
}

// notifiers builds every enabled channel. A channel that cannot be built is logged and left out.
func (a *application) notifiers(ctx context.Context, out io.Writer) []notifier.Notifier {
	site, msgs, ntf := a.cfg.Site, a.cfg.Messages, a.cfg.Notifiers
	var list []notifier.Notifier

	if ntf.Console.Enabled {
		list = append(list, notifier.NewConsole(out, notifier.NewFormatter(site, msgs, notifier.LayoutConsole)))
	}

	compact := notifier.NewFormatter(site, msgs, notifier.LayoutCompact)

	if ntf.Line.Enabled {
		client := &http.Client{Timeout: pushTimeout}
		list = append(list, notifier.NewLine(a.log, ntf.Line, compact, client))
	}

	if ntf.Telegram.Enabled {
		if tg := a.telegram(ctx, compact); tg != nil {
			list = append(list, tg)
		}
	}

	return list
}

func (a *application) telegram(ctx context.Context, formatter *notifier.Formatter) notifier.Notifier {
	tgCfg := a.cfg.Notifiers.Telegram
	if tgCfg.Token == "" {
		a.log.WarnContext(ctx, "Telegram delivery skipped", "reason", notifier.ErrMissingCredentials)
		return nil
	}

	api, err := bot.NewAPI(tgCfg, true)
	if err != nil {
		a.log.ErrorContext(ctx, "Telegram channel disabled", "error", err)
		return nil
	}

	var subs bot.Subscribers
	if db, dbErr := a.sqlite(ctx); dbErr != nil {
		a.log.WarnContext(ctx, "Subscriptions unavailable, using configured chats only", "error", dbErr)
	} else {
		subs = db
	}

	return bot.NewNotifier(a.log, api, formatter, tgCfg.Chats, subs)
}

// logger returns the configured logger or a stderr fallback when setup never ran.
func (a *application) logger() *slog.Logger {
	if a.log != nil {
		return a.log
	}

	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
