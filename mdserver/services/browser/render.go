// Package browser renders JavaScript-heavy pages with a headless
// Chromium via playwright before handing the HTML to the document
// backend. The backend is optional: when playwright is not installed
// the server starts without it and falls back to plain fetching.
package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/logging"
)

// ErrUnavailable means playwright did not start at boot.
var ErrUnavailable = errors.New("browser backend unavailable")

// Backend manages the shared playwright runtime.
type Backend struct {
	pw      *playwright.Playwright
	timeout time.Duration
}

// New starts playwright. A failure is not fatal: the returned backend
// reports unavailable and the dispatcher degrades to plain fetching.
func New(cfg config.Config) *Backend {
	pw, err := playwright.Run()
	if err != nil {
		logging.AppLogger.Warn("playwright unavailable, js rendering disabled", zap.Error(err))
		return &Backend{timeout: time.Duration(cfg.BrowserTimeoutSeconds) * time.Second}
	}
	return &Backend{pw: pw, timeout: time.Duration(cfg.BrowserTimeoutSeconds) * time.Second}
}

func (b *Backend) Available() bool {
	return b != nil && b.pw != nil
}

// Close stops playwright.
func (b *Backend) Close() {
	if b.pw != nil {
		b.pw.Stop()
	}
}

// Render loads the page in headless Chromium, waits for the DOM, and
// returns the rendered HTML with non-content elements stripped.
func (b *Backend) Render(ctx context.Context, targetURL string) (string, error) {
	if !b.Available() {
		return "", ErrUnavailable
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	browser, err := b.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return "", err
	}
	defer browser.Close()

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return "", err
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", err
	}
	defer page.Close()

	// skip image and font downloads, only the DOM matters here
	if err := page.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2}", func(route playwright.Route) {
		route.Abort()
	}); err != nil {
		return "", err
	}

	if _, err := page.Goto(targetURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", err
	}

	content, err := page.Content()
	if err != nil {
		return "", err
	}
	return CleanHTML(content), nil
}

// CleanHTML drops script, style, nav, and footer subtrees. When the
// page has a main or article landmark, only that subtree is kept.
func CleanHTML(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	doc.Find("script, style, noscript, nav, footer, header[role=banner]").Remove()

	for _, sel := range []string{"main", "article"} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if inner, err := goquery.OuterHtml(node); err == nil && strings.TrimSpace(inner) != "" {
				return wrapDocument(doc, inner)
			}
		}
	}

	out, err := doc.Html()
	if err != nil {
		return htmlContent
	}
	return out
}

// wrapDocument keeps the original title around the extracted region so
// downstream title extraction still works.
func wrapDocument(doc *goquery.Document, body string) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	var b strings.Builder
	b.WriteString("<html><head>")
	if title != "" {
		b.WriteString("<title>")
		b.WriteString(title)
		b.WriteString("</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
