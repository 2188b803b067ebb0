// Package browser renders the watched page in headless Chromium.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var (
	// ErrNavigation wraps failures to load the site URL within the navigation timeout.
	ErrNavigation = errors.New("navigation failed")
	// ErrSelectorTimeout means the product grid never appeared within the wait timeout.
	ErrSelectorTimeout = errors.New("product list did not appear")
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// Browser launches a fresh Chromium per fetch and tears it down on every exit path.
type Browser struct {
	log *slog.Logger
	cfg config.BrowserConfig
}

func New(log *slog.Logger, cfg config.BrowserConfig) *Browser {
	return &Browser{log: log.With("component", "browser"), cfg: cfg}
}

// FetchHTML implements parser.Fetcher.
func (b *Browser) FetchHTML(ctx context.Context, site config.SiteConfig) (string, error) {
	const opn = "browser.FetchHTML"

	page, cleanup, err := b.openPage(ctx, site)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opn, err)
	}
	defer cleanup()

	b.log.InfoContext(ctx, "Navigating", "url", site.URL, "timeout", b.cfg.NavigationTimeout)
	if err = navigate(page.Timeout(b.cfg.NavigationTimeout), site.URL); err != nil {
		return "", fmt.Errorf("%s: %w %s: %w", opn, ErrNavigation, site.URL, err)
	}

	// Element retries until the selector matches or the timeout expires.
	if _, err = page.Timeout(b.cfg.WaitTimeout).Element(site.Selectors.ProductList); err != nil {
		return "", fmt.Errorf("%s: %w: %q within %s: %w",
			opn, ErrSelectorTimeout, site.Selectors.ProductList, b.cfg.WaitTimeout, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%s: failed to get page HTML: %w", opn, err)
	}
	b.log.DebugContext(ctx, "Page rendered", "bytes", len(html))

	return html, nil
}

func navigate(page *rod.Page, url string) error {
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// openPage starts Chromium and opens a blank page emulating the site's locale and timezone.
// The returned cleanup closes the page, the browser and the launcher.
func (b *Browser) openPage(ctx context.Context, site config.SiteConfig) (*rod.Page, func(), error) {
	lnch := launcher.New().
		Headless(b.cfg.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Logger(io.Discard)
	if b.cfg.Bin != "" {
		lnch = lnch.Bin(b.cfg.Bin)
	}
	if site.Locale != "" {
		lnch = lnch.Set("lang", site.Locale)
	}

	controlURL, err := lnch.Context(ctx).Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err = browser.Connect(); err != nil {
		lnch.Kill()
		lnch.Cleanup()
		return nil, nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	closeBrowser := func() {
		if cerr := browser.Close(); cerr != nil {
			b.log.Warn("Failed to close browser", "error", cerr)
		}
		lnch.Kill()
		lnch.Cleanup()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		closeBrowser()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err = emulate(page, site); err != nil {
		b.log.WarnContext(ctx, "Failed to apply page emulation", "error", err)
	}

	cleanup := func() {
		if cerr := page.Close(); cerr != nil {
			b.log.Debug("Failed to close page", "error", cerr)
		}
		closeBrowser()
	}

	return page, cleanup, nil
}

func emulate(page *rod.Page, site config.SiteConfig) error {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if site.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: site.Timezone}).Call(page); err != nil {
			return fmt.Errorf("set timezone: %w", err)
		}
	}

	if site.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: site.Locale}).Call(page); err != nil {
			return fmt.Errorf("set locale: %w", err)
		}
	}

	return nil
}
