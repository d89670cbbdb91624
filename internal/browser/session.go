package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/rnavarro/nike-catalog-scraper/internal/scraper"
)

// PageSession adapts one playwright page to the pipeline's session
// interface. API requests go through the browser context, so they carry the
// cookies the page accumulated.
type PageSession struct {
	page    playwright.Page
	request playwright.APIRequestContext
	timeout time.Duration
	logger  *slog.Logger
}

var _ scraper.Session = (*PageSession)(nil)

func (s *PageSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *PageSession) Evaluate(script string) (any, error) {
	return s.page.Evaluate(script)
}

func (s *PageSession) Text(selector string) (string, bool) {
	loc := s.page.Locator(selector).First()
	if count, err := loc.Count(); err != nil || count == 0 {
		return "", false
	}

	text, err := loc.InnerText()
	if err != nil {
		return "", false
	}
	return text, true
}

func (s *PageSession) Attr(selector, name string) (string, bool) {
	loc := s.page.Locator(selector).First()
	if count, err := loc.Count(); err != nil || count == 0 {
		return "", false
	}

	value, err := loc.GetAttribute(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (s *PageSession) HTML(selector string) (string, bool) {
	loc := s.page.Locator(selector).First()
	if count, err := loc.Count(); err != nil || count == 0 {
		return "", false
	}

	html, err := loc.InnerHTML()
	if err != nil {
		return "", false
	}
	return html, true
}

func (s *PageSession) Texts(selector string) []string {
	texts, err := s.page.Locator(selector).AllInnerTexts()
	if err != nil {
		return nil
	}
	return texts
}

func (s *PageSession) Get(ctx context.Context, url string, headers map[string]string) (*scraper.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.request.Get(url, playwright.APIRequestContextGetOptions{
		Headers: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	body, err := resp.Body()
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}

	return &scraper.Response{Status: resp.Status(), Body: body}, nil
}

// Close releases the page. The browser context stays open for the next
// session.
func (s *PageSession) Close() error {
	if err := s.page.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	return nil
}
