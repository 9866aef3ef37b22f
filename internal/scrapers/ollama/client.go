package ollama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/assert"
	"modelcatalog/internal/components/telemetry"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	report_client_listing = "client.listing"
	report_client_detail  = "client.detail"
	report_client_memo    = "client.memo"
)

const (
	DefaultBaseUrl   = "https://ollama.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond caps outgoing requests, zero means no limit.
	RequestsPerSecond float64
	// PageCacheTTL is how long a fetched tags page is reused, zero disables
	// reuse.
	PageCacheTTL  time.Duration
	PageCacheSize int
	// PageCacheDir keeps memoized pages on disk so they survive between
	// runs, empty keeps them in memory.
	PageCacheDir string
	// CloudflareBypass wraps the transport with browser-like TLS settings
	// and headers.
	CloudflareBypass bool
	// Output receives the full text of every HTTP exchange when set.
	Output telemetry.MessageOutput
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.PageCacheSize <= 0 {
		o.PageCacheSize = 256
	}
	return o
}

// Client fetches and extracts pages of the model library.
type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	pages   pageCache
	tracer  trace.Tracer
	tel     telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("ollama_scraper", tel)
	opts = opts.withDefaults()

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// burst >= 1 so no request is ever refused, only delayed
		burst := max(1, int(opts.RequestsPerSecond))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	c := &Client{
		baseUrl: parsedBaseUrl,
		http:    httpClient,
		tracer:  otel.Tracer("modelcatalog/internal/scrapers/ollama"),
		tel:     tel,
	}
	switch {
	case opts.PageCacheTTL <= 0:
	case opts.PageCacheDir != "":
		pages, err := openDiskPages(badger.DefaultOptions(opts.PageCacheDir), opts.PageCacheTTL, c.tracer, tel)
		if err != nil {
			return nil, err
		}
		c.pages = pages
	default:
		c.pages = newMemoryPages(opts.PageCacheSize, opts.PageCacheTTL)
	}
	return c, nil
}

// Close releases the page cache.
func (c *Client) Close() error {
	if c.pages == nil {
		return nil
	}
	return c.pages.close()
}

// pageKey is the normalized form of link, so that equivalent urls share a
// memo entry.
func pageKey(link string) string {
	normalized, err := purell.NormalizeURLString(
		link,
		purell.FlagsSafe|purell.FlagRemoveDotSegments|purell.FlagRemoveDuplicateSlashes|purell.FlagRemoveFragment,
	)
	if err != nil {
		return link
	}
	return normalized
}

func (c *Client) fetch(ctx context.Context, link *url.URL, memo bool) (*goquery.Document, error) {
	key := pageKey(link.String())

	ctx, span := c.tracer.Start(ctx, "ollama.fetch", trace.WithAttributes(
		attribute.String("url", key),
	))
	defer span.End()

	if memo && c.pages != nil {
		if body, ok := c.pages.get(ctx, key); ok {
			span.SetAttributes(attribute.Bool("memo_hit", true))
			c.tel.ReportDebug(report_client_memo, key)
			return goquery.NewDocumentFromReader(bytes.NewReader(body))
		}
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(link.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("GET %s: %w", key, err)
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if !res.IsSuccess() {
		err := fmt.Errorf("GET %s: %w %s", key, ErrUnexpectedStatus, res.Status())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body := res.Body()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", key, err)
	}
	if memo && c.pages != nil {
		c.pages.put(ctx, key, body)
	}
	return doc, nil
}

// Listing fetches the library page and returns its models in page order,
// deduplicated by name.
func (c *Client) Listing(ctx context.Context) ([]catalog.Model, error) {
	doc, err := c.fetch(ctx, c.baseUrl.JoinPath("library"), false)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	models := parseListing(doc, c.baseUrl)
	if len(models) == 0 {
		c.tel.ReportWarning(report_client_listing, "no models found, the page layout may have changed")
	}
	c.tel.ReportCount(report_client_listing, int64(len(models)))
	return models, nil
}

// Detail fetches the tags page of a model.
func (c *Client) Detail(ctx context.Context, name string) (Detail, error) {
	doc, err := c.fetch(ctx, c.baseUrl.JoinPath("library", name, "tags"), true)
	if err != nil {
		return Detail{}, fmt.Errorf("detail %s: %w", name, err)
	}
	d := parseDetail(doc, name)
	if len(d.Versions) == 0 {
		c.tel.ReportWarning(report_client_detail, name, "no versions found")
	}
	return d, nil
}
