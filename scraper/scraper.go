// Package scraper drives the page-by-page walk of the catalogue.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/aluiziolira/bookcatalog/config"
	"github.com/aluiziolira/bookcatalog/fetcher"
	"github.com/aluiziolira/bookcatalog/models"
	"github.com/aluiziolira/bookcatalog/parser"
)

// Scraper walks catalogue pages from 1 upwards until a page has no listings.
type Scraper struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	limiter *rate.Limiter
	Metrics *Metrics
}

// NewScraper builds a scraper with the fetch backend selected by cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	f, err := fetcher.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}
	return New(cfg, f), nil
}

// New builds a scraper around an existing fetcher.
func New(cfg *config.Config, f fetcher.Fetcher) *Scraper {
	s := &Scraper{
		cfg:     cfg,
		fetcher: f,
		Metrics: NewMetrics(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s
}

// run is the mutable state of one Run call.
type run struct {
	result *models.RunResult
	page   int
	seen   *lru.Cache[uint64, int]
}

// Run walks the catalogue and returns everything collected. The result is
// never nil; result.State is StateDone or StateFailed and, when failed,
// result.Err holds the cause. Records collected before a failure are kept.
func (s *Scraper) Run(ctx context.Context) *models.RunResult {
	if ctx == nil {
		ctx = context.Background()
	}

	r := &run{
		result: &models.RunResult{
			Records:   make([]models.Record, 0),
			State:     models.StateRunning,
			StartTime: time.Now(),
		},
		page: 1,
	}
	if s.cfg.RepeatWindow > 0 {
		seen, err := lru.New[uint64, int](s.cfg.RepeatWindow)
		if err == nil {
			r.seen = seen
		}
	}

	slog.Info("scrape started", slog.String("base_url", s.cfg.BaseURL))

	for r.result.State == models.StateRunning {
		s.step(ctx, r)
	}

	r.result.EndTime = time.Now()
	s.Metrics.ObserveRun(r.result.State.String(), r.result.Reason, len(r.result.Records))

	attrs := []any{
		slog.String("state", r.result.State.String()),
		slog.String("reason", r.result.Reason),
		slog.Int("records", len(r.result.Records)),
		slog.Int("fetches", r.result.Fetches),
		slog.Duration("duration", r.result.Duration()),
	}
	if r.result.State == models.StateFailed {
		slog.Error("scrape ended early", append(attrs, slog.Any("error", r.result.Err))...)
	} else {
		slog.Info("scrape complete", attrs...)
	}

	return r.result
}

// step performs one Running(page) transition.
func (s *Scraper) step(ctx context.Context, r *run) {
	if err := ctx.Err(); err != nil {
		r.fail(models.ReasonCanceled, err)
		return
	}
	if r.page > s.cfg.MaxPages {
		slog.Warn("page limit reached", slog.Int("max_pages", s.cfg.MaxPages))
		r.finish(models.ReasonPageLimit)
		return
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			r.fail(models.ReasonCanceled, err)
			return
		}
	}

	r.result.LastPage = r.page
	slog.Info("scraping page", slog.Int("page", r.page))

	start := time.Now()
	content, err := s.fetcher.Fetch(ctx, r.page)
	s.Metrics.ObserveFetch(time.Since(start))
	r.result.Fetches++
	if err != nil {
		s.Metrics.IncPage("fetch_failed")
		s.Metrics.IncError(fetcher.ErrorType(err))
		r.fail(models.ReasonFetchFailed, err)
		return
	}

	if r.seen != nil {
		sum := xxhash.Sum64String(content)
		if first, ok := r.seen.Get(sum); ok {
			slog.Warn("page repeats an earlier page",
				slog.Int("page", r.page),
				slog.Int("same_as", first),
			)
			s.Metrics.IncPage("repeated")
			r.finish(models.ReasonRepeatedPage)
			return
		}
		r.seen.Add(sum, r.page)
	}

	records, err := parser.ExtractWithOptions(content, s.cfg.BaseURL, parser.ExtractOptions{
		SkipMalformed: s.cfg.SkipMalformed,
	})
	if err != nil {
		s.Metrics.IncPage("extract_failed")
		s.Metrics.IncError("structure")
		r.fail(models.ReasonExtractError, fmt.Errorf("page %d: %w", r.page, err))
		return
	}
	if len(records) == 0 {
		s.Metrics.IncPage("empty")
		slog.Info("no more listings found", slog.Int("page", r.page))
		r.finish(models.ReasonEmptyPage)
		return
	}

	s.Metrics.IncPage("ok")
	s.Metrics.AddRecords(len(records))
	r.result.Records = append(r.result.Records, records...)
	slog.Debug("page scraped",
		slog.Int("page", r.page),
		slog.Int("records", len(records)),
		slog.Int("total", len(r.result.Records)),
	)
	r.page++
}

func (r *run) finish(reason string) {
	r.result.State = models.StateDone
	r.result.Reason = reason
}

func (r *run) fail(reason string, err error) {
	r.result.State = models.StateFailed
	r.result.Reason = reason
	r.result.Err = err
}
