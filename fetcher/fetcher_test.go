package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/bookcatalog/config"
	"github.com/aluiziolira/bookcatalog/internal/fixture"
)

const testBase = "http://example.test"

func TestPageURL(t *testing.T) {
	tests := []struct {
		base     string
		page     int
		expected string
	}{
		{base: "http://books.toscrape.com", page: 1, expected: "http://books.toscrape.com/catalogue/page-1.html"},
		{base: "http://books.toscrape.com/", page: 2, expected: "http://books.toscrape.com/catalogue/page-2.html"},
		{base: "https://example.test", page: 50, expected: "https://example.test/catalogue/page-50.html"},
	}

	for _, tt := range tests {
		if got := PageURL(tt.base, tt.page); got != tt.expected {
			t.Errorf("PageURL(%q, %d) = %q, want %q", tt.base, tt.page, got, tt.expected)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: nil, statusCode: http.StatusInternalServerError, expected: "status"},
		{name: "canceled", err: context.Canceled, statusCode: 0, expected: "canceled"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
		{name: "empty body", err: ErrEmptyBody, statusCode: http.StatusOK, expected: "empty_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if classified := classifyError(tt.err, tt.statusCode); classified != nil {
				err = classified
			}
			if got := ErrorType(err); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.Backend = "colly"
	f, err := New(cfg)
	if err != nil {
		t.Fatalf("new colly: %v", err)
	}
	if _, ok := f.(*CollyFetcher); !ok {
		t.Fatalf("colly backend built %T", f)
	}

	cfg.Backend = "resty"
	f, err = New(cfg)
	if err != nil {
		t.Fatalf("new resty: %v", err)
	}
	if _, ok := f.(*RestyFetcher); !ok {
		t.Fatalf("resty backend built %T", f)
	}

	cfg.Backend = "rod"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

// backends builds one fetcher per backend, each wired to transport.
func backends(t *testing.T, transport http.RoundTripper) map[string]Fetcher {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = testBase
	cfg.Timeout = 2 * time.Second

	out := make(map[string]Fetcher)
	for _, backend := range []string{"colly", "resty"} {
		cfg.Backend = backend
		f, err := New(cfg)
		if err != nil {
			t.Fatalf("new %s fetcher: %v", backend, err)
		}
		f.(TransportSetter).WithTransport(transport)
		out[backend] = f
	}
	return out
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	return httpmock.ResponderFromResponse(resp)
}

func TestFetchSuccess(t *testing.T) {
	page := fixture.CatalogPage(1, 3)

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBase+"/catalogue/page-1.html", htmlResponder(page))

	for name, f := range backends(t, transport) {
		t.Run(name, func(t *testing.T) {
			body, err := f.Fetch(context.Background(), 1)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if body != page {
				t.Fatalf("body mismatch: got %d bytes, want %d", len(body), len(page))
			}
		})
	}
}

func TestFetchRepeatablePage(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBase+"/catalogue/page-1.html", htmlResponder(fixture.Page()))

	for name, f := range backends(t, transport) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				if _, err := f.Fetch(context.Background(), 1); err != nil {
					t.Fatalf("fetch %d: %v", i, err)
				}
			}
		})
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		category  string
	}{
		{
			name:      "not found",
			responder: httpmock.NewStringResponder(http.StatusNotFound, "missing"),
			category:  "not_found",
		},
		{
			name:      "forbidden",
			responder: httpmock.NewStringResponder(http.StatusForbidden, ""),
			category:  "forbidden",
		},
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(http.StatusBadGateway, ""),
			category:  "status",
		},
		{
			name:      "connection refused",
			responder: httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}),
			category:  "connection",
		},
	}

	for _, tt := range tests {
		transport := httpmock.NewMockTransport()
		transport.RegisterResponder("GET", testBase+"/catalogue/page-1.html", tt.responder)

		for name, f := range backends(t, transport) {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				body, err := f.Fetch(context.Background(), 1)
				if !errors.Is(err, ErrFetchFailed) {
					t.Fatalf("expected ErrFetchFailed, got %v", err)
				}
				if body != "" {
					t.Fatalf("expected empty body on failure")
				}
				if got := ErrorType(err); got != tt.category {
					t.Fatalf("category=%q, want %q (err=%v)", got, tt.category, err)
				}
			})
		}
	}
}

func TestFetchEmptyBody(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBase+"/catalogue/page-1.html", htmlResponder(""))

	for name, f := range backends(t, transport) {
		t.Run(name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), 1)
			if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, ErrEmptyBody) {
				t.Fatalf("expected empty body failure, got %v", err)
			}
			var fe *Error
			if !errors.As(err, &fe) || fe.Status != http.StatusOK {
				t.Fatalf("expected *Error with status 200, got %#v", fe)
			}
		})
	}
}

func TestFetchUnregisteredPage(t *testing.T) {
	transport := httpmock.NewMockTransport()

	for name, f := range backends(t, transport) {
		t.Run(name, func(t *testing.T) {
			if _, err := f.Fetch(context.Background(), 7); !errors.Is(err, ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
		})
	}
}

func TestFetchRejectsInvalidPage(t *testing.T) {
	for name, f := range backends(t, httpmock.NewMockTransport()) {
		t.Run(name, func(t *testing.T) {
			if _, err := f.Fetch(context.Background(), 0); !errors.Is(err, ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed for page 0, got %v", err)
			}
		})
	}
}

func TestFetchCanceledContext(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBase+"/catalogue/page-1.html", htmlResponder(fixture.Page()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, f := range backends(t, transport) {
		t.Run(name, func(t *testing.T) {
			body, err := f.Fetch(ctx, 1)
			if !errors.Is(err, ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
			if body != "" {
				t.Fatalf("expected no body for a canceled fetch")
			}
			if got := ErrorType(err); got != "canceled" {
				t.Fatalf("category=%q, want canceled", got)
			}
		})
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("http calls=%d, want 0 for a canceled context", got)
	}
}
