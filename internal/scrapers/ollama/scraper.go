package ollama

import (
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/assert"
	"modelcatalog/internal/components/chrono"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/snapshot"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	report_scraper_refresh  = "scraper.refresh"
	report_scraper_detail   = "scraper.detail"
	report_scraper_persist  = "scraper.persist"
	report_scraper_models   = "scraper.models"
	report_scraper_versions = "scraper.versions"
	report_scraper_failures = "scraper.detail-failures"
)

var ErrRefreshInProgress = errors.New("ollama scraper: refresh already in progress")

const (
	DefaultConcurrency = 4
	MaxConcurrency     = 8
)

// Fetcher is the network side of a refresh, *Client implements it.
type Fetcher interface {
	Listing(ctx context.Context) ([]catalog.Model, error)
	Detail(ctx context.Context, name string) (Detail, error)
}

type Options struct {
	// Concurrency is the number of tags pages fetched at once, it is
	// clamped to 1..MaxConcurrency and defaults to DefaultConcurrency.
	Concurrency int
	// Limit scrapes only the first Limit listing items, zero scrapes all.
	Limit int
}

func clampConcurrency(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	return min(n, MaxConcurrency)
}

type Scraper struct {
	fetcher Fetcher
	cache   *catalog.Cache
	store   snapshot.Store
	time    chrono.TimeAPI
	tel     telemetry.API

	concurrency int
	limit       int
}

// NewScraper creates a scraper that writes into cache, `store` can be nil
// in which case results are only kept in memory.
func NewScraper(
	fetcher Fetcher,
	cache *catalog.Cache,
	store snapshot.Store,
	time chrono.TimeAPI,
	tel telemetry.API,
	opts Options,
) Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(cache)
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("ollama_scraper", cache.Telemetry(tel))

	return Scraper{
		fetcher:     fetcher,
		cache:       cache,
		store:       store,
		time:        time,
		tel:         tel,
		concurrency: clampConcurrency(opts.Concurrency),
		limit:       max(0, opts.Limit),
	}
}

// Summary describes a finished refresh.
type Summary struct {
	Models         int
	Versions       int
	DetailFailures int
	Duration       time.Duration
}

func (s Scraper) fail(err error) error {
	s.tel.ReportBroken(report_scraper_refresh, err)
	s.cache.Fail(err)
	return err
}

// Refresh scrapes the listing and every tags page, then replaces the
// cache contents. A tags page that cannot be fetched leaves its model with
// the listing fields only. It returns ErrRefreshInProgress without doing
// anything when another refresh is running.
func (s Scraper) Refresh(ctx context.Context) (Summary, error) {
	if !s.cache.BeginRefresh() {
		return Summary{}, ErrRefreshInProgress
	}
	start := s.time.Now()
	s.tel.ReportDebug("refresh started", s.concurrency, s.limit)

	models, err := s.fetcher.Listing(ctx)
	if err != nil {
		return Summary{}, s.fail(fmt.Errorf("fetch listing: %w", err))
	}
	models = dedupeModels(models)
	if s.limit > 0 && len(models) > s.limit {
		models = models[:s.limit]
	}

	var failures atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i := range models {
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			detail, err := s.fetcher.Detail(groupCtx, models[i].Name)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.tel.ReportWarning(report_scraper_detail, err, models[i].Name)
				failures.Add(1)
				return nil
			}
			// every goroutine owns exactly one index
			models[i] = MergeModel(models[i], detail)
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		return Summary{}, s.fail(fmt.Errorf("fetch details: %w", err))
	}

	at := s.time.Now()
	s.cache.Commit(models, at)

	summary := Summary{
		Models:         len(models),
		DetailFailures: int(failures.Load()),
		Duration:       at.Sub(start),
	}
	for _, m := range models {
		summary.Versions += len(m.Versions)
	}
	s.tel.ReportCount(report_scraper_models, int64(summary.Models))
	s.tel.ReportCount(report_scraper_versions, int64(summary.Versions))
	s.tel.ReportCount(report_scraper_failures, int64(summary.DetailFailures))

	if s.store != nil {
		// the cache is already committed, save failures are only reported
		err = s.store.Save(ctx, snapshot.Document{UpdatedAt: at, Models: models})
		if err != nil {
			s.tel.ReportBroken(report_scraper_persist, err)
		}
	}

	return summary, nil
}

// Warm seeds the cache from the store so reads are served before the first
// refresh finishes. A missing snapshot is not an error.
func (s Scraper) Warm(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	doc, err := s.store.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.cache.Load(doc.Models, doc.UpdatedAt)
	s.tel.ReportCount(report_scraper_models, int64(len(doc.Models)))
	return nil
}
