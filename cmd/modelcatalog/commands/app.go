package commands

import (
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/chrono"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/scrapers/ollama"
	"modelcatalog/internal/snapshot"
)

// app is everything a command needs, it is built once per invocation.
type app struct {
	config  Config
	time    chrono.TimeAPI
	tel     telemetry.API
	cache   *catalog.Cache
	store   snapshot.Store
	scraper ollama.Scraper
	client  *ollama.Client
}

type appOptions struct {
	dumpDir     string
	concurrency int
	limit       int
}

func newApp(cfg Config, opts appOptions) (*app, error) {
	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	cache := catalog.NewCache(catalog.CacheOptions{LogCapacity: cfg.Cache.LogCapacity})
	tel := cache.Telemetry(telemetry.SlogAPI{})

	var output telemetry.MessageOutput
	if opts.dumpDir != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(opts.dumpDir)
		if err != nil {
			return nil, fmt.Errorf("http dump dir: %w", err)
		}
		output = fsOutput
	}

	client, err := ollama.NewClient(cfg.Scraper.clientOptions(output), tel)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	store, err := snapshot.Open(cfg.Store, tel)
	if err != nil {
		return nil, errors.Join(err, client.Close())
	}

	scraperOpts := ollama.Options{
		Concurrency: cfg.Scraper.Concurrency,
		Limit:       cfg.Scraper.Limit,
	}
	if opts.concurrency > 0 {
		scraperOpts.Concurrency = opts.concurrency
	}
	if opts.limit > 0 {
		scraperOpts.Limit = opts.limit
	}

	return &app{
		config:  cfg,
		time:    clock,
		tel:     tel,
		cache:   cache,
		store:   store,
		scraper: ollama.NewScraper(client, cache, store, clock, telemetry.SlogAPI{}, scraperOpts),
		client:  client,
	}, nil
}

func (a *app) Close() error {
	err := a.client.Close()
	if a.store != nil {
		err = errors.Join(err, a.store.Close())
	}
	return err
}

// warm loads the persisted snapshot and fails when there is nothing to
// read.
func (a *app) warm(ctx context.Context) error {
	if a.store == nil {
		return fmt.Errorf("no snapshot store configured, set store.kind in the config")
	}
	err := a.scraper.Warm(ctx)
	if err != nil {
		return err
	}
	if a.cache.Status() != catalog.StatusReady {
		return fmt.Errorf("no snapshot found at %s, run `modelcatalog scrape` first", a.config.Store.Path)
	}
	return nil
}
