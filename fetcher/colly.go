package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/bookcatalog/config"
)

const (
	ctxStatus = "status"
	ctxBody   = "body"
)

// CollyFetcher fetches pages one at a time through a synchronous colly collector.
// Collector requests take no context: cancellation is checked before each
// request, and a request already in flight runs until it completes or hits
// the configured timeout.
type CollyFetcher struct {
	baseURL   string
	collector *colly.Collector
}

// NewCollyFetcher builds a collector configured from cfg.
func NewCollyFetcher(cfg *config.Config) (*CollyFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, string(r.Body))
	})

	return &CollyFetcher{
		baseURL:   cfg.BaseURL,
		collector: collector,
	}, nil
}

// WithTransport replaces the collector's HTTP transport.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch issues a single GET for the page. Non-2xx responses are failures.
func (f *CollyFetcher) Fetch(ctx context.Context, page int) (string, error) {
	if err := checkPage(page); err != nil {
		return "", err
	}
	target := PageURL(f.baseURL, page)
	if err := ctx.Err(); err != nil {
		return "", failure(page, target, err, 0)
	}

	slog.Debug("fetching page", slog.Int("page", page), slog.String("url", target))

	reqCtx := colly.NewContext()
	err := f.collector.Request(http.MethodGet, target, nil, reqCtx, nil)
	status, _ := reqCtx.GetAny(ctxStatus).(int)
	if err != nil {
		return "", failure(page, target, err, status)
	}
	if status < 200 || status >= 300 {
		return "", failure(page, target, nil, status)
	}

	body := reqCtx.Get(ctxBody)
	if body == "" {
		return "", failure(page, target, ErrEmptyBody, status)
	}
	return body, nil
}
