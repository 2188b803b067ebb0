package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/diff"
	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/notifier"
	"github.com/Houeta/catalog-watcher/internal/parser"
	"github.com/Houeta/catalog-watcher/internal/repository"
)

// Checker is an orchestrator that performs a full verification cycle.
type Checker struct {
	log        *slog.Logger
	cfg        *config.WatcherConfig
	fetcher    parser.Fetcher
	parser     parser.HTMLParser
	store      *repository.Store
	dispatcher *notifier.Dispatcher
	now        func() time.Time
}

type Interface interface {
	// CheckForUpdates performs the full change checking algorithm.
	CheckForUpdates(ctx context.Context) (*Result, error)
}

// Result describes one completed run.
type Result struct {
	Previous *models.State // Previous is nil on the first run.
	State    *models.State // State is the snapshot that was saved.
	Changes  models.Changes
	Notified bool
}

// NewChecker creates a new Checker instance.
func NewChecker(
	log *slog.Logger,
	cfg *config.WatcherConfig,
	fetcher parser.Fetcher,
	parser parser.HTMLParser,
	store *repository.Store,
	dispatcher *notifier.Dispatcher,
) *Checker {
	return &Checker{
		log:        log,
		cfg:        cfg,
		fetcher:    fetcher,
		parser:     parser,
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CheckForUpdates scrapes the site, compares it with the stored snapshot, notifies on changes
// and saves the new snapshot. Nothing is saved when scraping fails.
func (c *Checker) CheckForUpdates(ctx context.Context) (*Result, error) {
	const opn = "checker.CheckForUpdates"
	log := c.log.With("op", opn)

	log.InfoContext(ctx, fmt.Sprintf("=== %s ===", c.cfg.Name),
		"time", c.now().In(c.cfg.Site.Location()).Format(time.DateTime))

	// 1. Previous snapshot; any read problem means first run.
	previous := c.store.Load(ctx)
	var oldProducts []models.Product
	if previous != nil {
		oldProducts = previous.Products
		log.InfoContext(ctx, fmt.Sprintf("Previous state: %d products (check #%d)",
			len(previous.Products), previous.TotalChecks))
	} else {
		log.InfoContext(ctx, "No previous state (first run)")
	}

	// 2. Page markup
	log.InfoContext(ctx, "Fetching catalogue page", "url", c.cfg.Site.URL)
	html, err := c.fetcher.FetchHTML(ctx, c.cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch page: %w", opn, err)
	}

	// 3. Extraction
	products, err := c.parser.ParseProducts(ctx, strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse products: %w", opn, err)
	}
	log.InfoContext(ctx, "Successfully parsed products", "count", len(products))

	// 4. Comparison and notification
	result := &Result{Previous: previous, Changes: diff.Products(oldProducts, products)}
	switch {
	case !result.Changes.HasChanges():
		log.InfoContext(ctx, "No changes detected")
	case previous == nil && !c.cfg.NotifyOnFirstRun:
		log.InfoContext(ctx, fmt.Sprintf("First run: %d products found, notification disabled", len(products)))
	default:
		if previous == nil {
			log.InfoContext(ctx, fmt.Sprintf("First run: %d products found", len(products)))
		} else {
			log.InfoContext(ctx, fmt.Sprintf("Changes detected: +%d added, -%d removed, ~%d price changed",
				len(result.Changes.Added), len(result.Changes.Removed), len(result.Changes.PriceChanged)))
		}
		if failed := c.dispatcher.NotifyAll(ctx, &result.Changes, products); failed > 0 {
			log.WarnContext(ctx, "Some notification channels failed", "failed", failed, "total", c.dispatcher.Len())
		}
		result.Notified = true
	}

	// 5. Persist the new snapshot on every successful scrape.
	result.State, err = c.store.Save(ctx, products, previous)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to save state: %w", opn, err)
	}
	log.InfoContext(ctx, "State saved successfully", "total_checks", result.State.TotalChecks)

	return result, nil
}
