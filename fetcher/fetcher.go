// Package fetcher retrieves catalogue pages over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aluiziolira/bookcatalog/config"
)

// PagePath is the path template for catalogue pages, relative to the base URL.
const PagePath = "/catalogue/page-%d.html"

// Fetcher returns the raw HTML of one catalogue page.
type Fetcher interface {
	Fetch(ctx context.Context, page int) (string, error)
}

// PageURL builds the address of catalogue page n under baseURL.
func PageURL(baseURL string, page int) string {
	return strings.TrimRight(baseURL, "/") + fmt.Sprintf(PagePath, page)
}

// New builds the Fetcher selected by cfg.Backend.
func New(cfg *config.Config) (Fetcher, error) {
	switch cfg.Backend {
	case "", "colly":
		return NewCollyFetcher(cfg)
	case "resty":
		return NewRestyFetcher(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// TransportSetter is implemented by fetchers whose HTTP transport can be swapped.
type TransportSetter interface {
	WithTransport(rt http.RoundTripper)
}

func checkPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: invalid page index %d", ErrFetchFailed, page)
	}
	return nil
}

// failure logs a failed attempt and wraps its cause in ErrFetchFailed.
func failure(page int, url string, err error, statusCode int) error {
	classified := classifyError(err, statusCode)
	if classified == nil {
		classified = &Error{Kind: KindOther}
	}
	slog.Error("fetch failed",
		slog.Int("page", page),
		slog.String("url", url),
		slog.String("category", ErrorType(classified)),
		slog.Any("error", classified),
	)
	return fmt.Errorf("%w: page %d: %w", ErrFetchFailed, page, classified)
}
