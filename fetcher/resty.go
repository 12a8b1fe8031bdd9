package fetcher

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/aluiziolira/bookcatalog/config"
)

// RestyFetcher fetches pages with a resty client.
type RestyFetcher struct {
	baseURL string
	client  *resty.Client
}

// NewRestyFetcher builds a resty client configured from cfg.
func NewRestyFetcher(cfg *config.Config) (*RestyFetcher, error) {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetRetryCount(0)

	return &RestyFetcher{
		baseURL: cfg.BaseURL,
		client:  client,
	}, nil
}

// WithTransport replaces the client's HTTP transport.
func (f *RestyFetcher) WithTransport(rt http.RoundTripper) {
	f.client.SetTransport(rt)
}

// Fetch issues a single GET for the page. Non-2xx responses are failures.
func (f *RestyFetcher) Fetch(ctx context.Context, page int) (string, error) {
	if err := checkPage(page); err != nil {
		return "", err
	}
	target := PageURL(f.baseURL, page)
	if err := ctx.Err(); err != nil {
		return "", failure(page, target, err, 0)
	}

	slog.Debug("fetching page", slog.Int("page", page), slog.String("url", target))

	res, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		status := 0
		if res != nil {
			status = res.StatusCode()
		}
		return "", failure(page, target, err, status)
	}
	if !res.IsSuccess() {
		return "", failure(page, target, nil, res.StatusCode())
	}

	body := string(res.Body())
	if body == "" {
		return "", failure(page, target, ErrEmptyBody, res.StatusCode())
	}
	return body, nil
}
