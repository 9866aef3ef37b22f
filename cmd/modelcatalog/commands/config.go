package commands

import (
	devenv "modelcatalog/dev/env"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/scrapers/ollama"
	"modelcatalog/internal/snapshot"
	"modelcatalog/pkg/configutil"
	"time"
)

type ScraperConfig struct {
	BaseUrl             string  `json:"base_url"`
	UserAgent           string  `json:"user_agent"`
	TimeoutSeconds      int     `json:"timeout_seconds"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
	PageCacheTTLSeconds int     `json:"page_cache_ttl_seconds"`
	PageCacheDir        string  `json:"page_cache_dir"`
	CloudflareBypass    *bool   `json:"cloudflare_bypass"`
	Concurrency         int     `json:"concurrency"`
	Limit               int     `json:"limit"`
}

type CacheConfig struct {
	LogCapacity int `json:"log_capacity"`
}

type RefreshConfig struct {
	// Cron is a standard 5 field cron spec, descriptors like @hourly work
	// too.
	Cron    string `json:"cron"`
	OnStart *bool  `json:"on_start"`
}

type Config struct {
	Timezone  string           `json:"timezone"`
	Scraper   ScraperConfig    `json:"scraper"`
	Store     snapshot.Config  `json:"store"`
	Cache     CacheConfig      `json:"cache"`
	Refresh   RefreshConfig    `json:"refresh"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func ptr[T any](value T) *T {
	return &value
}

var defaultConfig = Config{
	Scraper: ScraperConfig{
		BaseUrl:             ollama.DefaultBaseUrl,
		UserAgent:           ollama.DefaultUserAgent,
		TimeoutSeconds:      30,
		RequestsPerSecond:   4,
		PageCacheTTLSeconds: 600,
		CloudflareBypass:    ptr(true),
		Concurrency:         ollama.DefaultConcurrency,
	},
	Store: snapshot.Config{
		Kind: snapshot.KindJSON,
		Path: "modelcatalog.json",
	},
	Cache: CacheConfig{
		LogCapacity: 200,
	},
	Refresh: RefreshConfig{
		Cron:    "@every 6h",
		OnStart: ptr(true),
	},
}

func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, defaultConfig)
	if err != nil {
		return Config{}, err
	}
	cfg.Store.Path, err = devenv.ResolvePath(cfg.Store.Path)
	if err != nil {
		return Config{}, err
	}
	cfg.Scraper.PageCacheDir, err = devenv.ResolvePath(cfg.Scraper.PageCacheDir)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c ScraperConfig) clientOptions(output telemetry.MessageOutput) ollama.ClientOptions {
	return ollama.ClientOptions{
		BaseUrl:           c.BaseUrl,
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		PageCacheTTL:      time.Duration(c.PageCacheTTLSeconds) * time.Second,
		PageCacheDir:      c.PageCacheDir,
		CloudflareBypass:  c.CloudflareBypass != nil && *c.CloudflareBypass,
		Output:            output,
	}
}
