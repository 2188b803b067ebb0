package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/PuerkitoBio/goquery"
)

// ErrNoProducts means extraction ran but matched nothing; the page layout most likely changed.
var ErrNoProducts = errors.New("scraping failed: 0 products found")

const snippetLength = 500

var nonDigitRe = regexp.MustCompile(`\D`)

// HTMLParser extracts products from catalogue markup.
type HTMLParser interface {
	ParseProducts(ctx context.Context, inp io.Reader) ([]models.Product, error)
}

// Parser turns rendered catalogue markup into products using the site's selectors.
type Parser struct {
	log        *slog.Logger
	site       config.SiteConfig
	colorStrip *regexp.Regexp
}

func NewParser(log *slog.Logger, site config.SiteConfig) (*Parser, error) {
	prs := &Parser{log: log, site: site}

	if site.Parsing.ColorStripPattern != "" {
		re, err := regexp.Compile(site.Parsing.ColorStripPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid color strip pattern %q: %w", site.Parsing.ColorStripPattern, err)
		}
		prs.colorStrip = re
	}

	return prs, nil
}

// ParseProducts reads HTML from inp and extracts every product with a product code.
// An empty result is reported as ErrNoProducts.
func (p *Parser) ParseProducts(ctx context.Context, inp io.Reader) ([]models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(inp)
	if err != nil {
		return nil, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	products := p.Extract(ctx, doc.Selection)
	if len(products) == 0 {
		p.log.ErrorContext(ctx, "No products found", "selector", p.site.Selectors.ProductList,
			"html_snippet", snippet(doc))
		return nil, ErrNoProducts
	}

	return products, nil
}

// Extract queries every product element under root. Missing sub-elements yield empty fields;
// elements without a product code are skipped.
func (p *Parser) Extract(ctx context.Context, root *goquery.Selection) []models.Product {
	sel := p.site.Selectors
	var products []models.Product

	root.Find(sel.ProductList).Each(func(idx int, item *goquery.Selection) {
		img := item.Find(sel.Image).First()

		code, _ := img.Attr(p.site.Parsing.ProductCodeAttr)
		code = strings.Replace(code, p.site.Parsing.ProductCodeReplace, "", 1)
		if code == "" {
			p.log.DebugContext(ctx, "Skipping product without code", "index", idx)
			return
		}

		href, _ := item.Find(sel.Link).First().Attr("href")
		src, _ := img.Attr("src")
		price := text(item.Find(sel.Price))

		product := models.Product{
			ProductCode:  code,
			Name:         text(item.Find(sel.Title)),
			Color:        p.stripColor(text(item.Find(sel.Color))),
			Price:        price,
			PriceNumeric: ParsePrice(price),
			URL:          ResolveURL(p.site.BaseURL, href),
			ImageURL:     NormalizeImageURL(src),
		}
		p.log.DebugContext(
			ctx,
			"Parsed product",
			"code", product.ProductCode,
			"name", product.Name,
			"price", product.Price,
		)
		products = append(products, product)
	})

	return products
}

// stripColor removes the first match of the label pattern, e.g. "Color: ".
func (p *Parser) stripColor(raw string) string {
	if p.colorStrip == nil {
		return strings.TrimSpace(raw)
	}

	loc := p.colorStrip.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
}

// ParsePrice keeps the digits of a display price. No digits, or an overflow, yields 0.
func ParsePrice(price string) int {
	n, err := strconv.Atoi(nonDigitRe.ReplaceAllString(price, ""))
	if err != nil {
		return 0
	}
	return n
}

// ResolveURL returns href unchanged when it carries a scheme, otherwise prefixes baseURL.
func ResolveURL(baseURL, href string) string {
	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return href
	}
	return baseURL + href
}

// NormalizeImageURL turns protocol-relative URLs into https ones.
func NormalizeImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

func snippet(doc *goquery.Document) string {
	target := doc.Find("main").First()
	if target.Length() == 0 {
		target = doc.Find("body").First()
	}

	html, err := target.Html()
	if err != nil || html == "" {
		return "N/A"
	}
	if runes := []rune(html); len(runes) > snippetLength {
		return string(runes[:snippetLength])
	}
	return html
}
