package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Houeta/catalog-watcher/internal/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Fetcher loads the watched page and returns its markup once the product grid is present.
type Fetcher interface {
	FetchHTML(ctx context.Context, site config.SiteConfig) (string, error)
}

// HTTPFetcher downloads the page with a plain GET; for sites rendered on the server.
type HTTPFetcher struct {
	log    *slog.Logger
	client *http.Client
}

func NewHTTPFetcher(log *slog.Logger, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{log: log, client: client}
}

// FetchHTML implements Fetcher.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, site config.SiteConfig) (string, error) {
	resp, err := f.getHTMLResponse(ctx, site)
	if err != nil {
		return "", fmt.Errorf("failed to get html response: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

func (f *HTTPFetcher) getHTMLResponse(ctx context.Context, site config.SiteConfig) (*http.Response, error) {
	reqURL, err := url.Parse(site.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse destination URL %s: %w", site.URL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL.String(), err)
	}

	req.Header.Set("User-Agent", userAgent)
	if site.Locale != "" {
		req.Header.Set("Accept-Language", site.Locale)
	}

	f.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL, "header", req.Header)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", site.URL, err)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("status code error: [%d] %s", res.StatusCode, res.Status)
	}

	f.log.InfoContext(ctx, "Successfully received http response", "status code", res.StatusCode)

	return res, nil
}
