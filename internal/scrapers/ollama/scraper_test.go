package ollama

import (
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/chrono"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/snapshot"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeFetcher struct {
	listing    []catalog.Model
	listingErr error
	// listingGate, when set, blocks Listing until it is closed
	listingGate    chan struct{}
	listingStarted chan struct{}

	detailErr   map[string]error
	detailDelay time.Duration
	// detailBlock makes Detail wait for context cancellation
	detailBlock   bool
	detailStarted chan struct{}

	inflight    atomic.Int64
	maxInflight atomic.Int64

	mutex   sync.Mutex
	details []string
}

func (f *fakeFetcher) Listing(ctx context.Context) ([]catalog.Model, error) {
	if f.listingStarted != nil {
		close(f.listingStarted)
	}
	if f.listingGate != nil {
		<-f.listingGate
	}
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	out := make([]catalog.Model, len(f.listing))
	for i, m := range f.listing {
		out[i] = m.Clone()
	}
	return out, nil
}

func (f *fakeFetcher) Detail(ctx context.Context, name string) (Detail, error) {
	current := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		seen := f.maxInflight.Load()
		if current <= seen || f.maxInflight.CompareAndSwap(seen, current) {
			break
		}
	}

	f.mutex.Lock()
	f.details = append(f.details, name)
	f.mutex.Unlock()

	if f.detailBlock {
		if f.detailStarted != nil {
			select {
			case f.detailStarted <- struct{}{}:
			default:
			}
		}
		<-ctx.Done()
		return Detail{}, ctx.Err()
	}
	if f.detailDelay > 0 {
		time.Sleep(f.detailDelay)
	}
	if err := f.detailErr[name]; err != nil {
		return Detail{}, err
	}
	return Detail{
		Summary:  "summary of " + name,
		Versions: []catalog.Version{{Name: name + ":latest", Size: "1GB"}},
	}, nil
}

func listingOf(names ...string) []catalog.Model {
	models := make([]catalog.Model, len(names))
	for i, name := range names {
		models[i] = catalog.Model{Name: name}
	}
	return models
}

var testTime = chrono.FixedTime(time.Date(2024, time.October, 2, 8, 0, 0, 0, time.UTC))

func newTestScraper(fetcher Fetcher, store snapshot.Store, opts Options) (Scraper, *catalog.Cache) {
	cache := catalog.NewCache(catalog.CacheOptions{LogCapacity: 64})
	return NewScraper(fetcher, cache, store, testTime, telemetry.NopAPI{}, opts), cache
}

func names(models []catalog.Model) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Name
	}
	return out
}

func TestRefresh(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{listing: listingOf("llama3.2", "llava", "llama3.2", "qwen3")}
	scraper, cache := newTestScraper(fetcher, nil, Options{})

	summary, err := scraper.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Models)
	require.Equal(t, 3, summary.Versions)
	require.Zero(t, summary.DetailFailures)

	snap := cache.Snapshot()
	require.Equal(t, catalog.StatusReady, snap.Status)
	require.False(t, snap.Refreshing)
	require.Equal(t, time.Time(testTime), snap.UpdatedAt)
	require.Equal(t, []string{"llama3.2", "llava", "qwen3"}, names(snap.Models))
	require.Equal(t, "summary of llava", snap.Models[1].Description)
	require.Equal(t, "1", snap.Models[1].TagCount)
}

func TestRefreshBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		listing:     listingOf("a", "b", "c", "d", "e", "f", "g", "h"),
		detailDelay: 10 * time.Millisecond,
	}
	scraper, _ := newTestScraper(fetcher, nil, Options{Concurrency: 2})

	_, err := scraper.Refresh(context.Background())
	require.NoError(t, err)
	require.LessOrEqual(t, fetcher.maxInflight.Load(), int64(2))
	require.Len(t, fetcher.details, 8)
}

func TestClampConcurrency(t *testing.T) {
	require.Equal(t, DefaultConcurrency, clampConcurrency(0))
	require.Equal(t, DefaultConcurrency, clampConcurrency(-3))
	require.Equal(t, 1, clampConcurrency(1))
	require.Equal(t, MaxConcurrency, clampConcurrency(100))
}

func TestRefreshLimit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{listing: listingOf("a", "b", "c", "d")}
	scraper, cache := newTestScraper(fetcher, nil, Options{Limit: 2})

	summary, err := scraper.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Models)
	require.Equal(t, []string{"a", "b"}, names(cache.Snapshot().Models))
	require.ElementsMatch(t, []string{"a", "b"}, fetcher.details)
}

func TestRefreshDetailFailureIsSoft(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		listing: []catalog.Model{
			{Name: "llava", PullCount: "5.1M"},
			{Name: "qwen3"},
		},
		detailErr: map[string]error{"llava": errors.New("502 bad gateway")},
	}
	scraper, cache := newTestScraper(fetcher, nil, Options{})

	summary, err := scraper.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.DetailFailures)

	llava, err := cache.Get("llava")
	require.NoError(t, err)
	require.Equal(t, catalog.Model{Name: "llava", PullCount: "5.1M"}, llava)

	qwen, err := cache.Get("qwen3")
	require.NoError(t, err)
	require.Len(t, qwen.Versions, 1)

	var warned bool
	for _, e := range cache.Logs() {
		if e.Level == telemetry.LevelWarning {
			warned = true
		}
	}
	require.True(t, warned)
}

func TestRefreshListingFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{listingErr: errors.New("connection refused")}
	scraper, cache := newTestScraper(fetcher, nil, Options{})

	_, err := scraper.Refresh(context.Background())
	require.ErrorContains(t, err, "connection refused")

	snap := cache.Snapshot()
	require.Equal(t, catalog.StatusPending, snap.Status)
	require.False(t, snap.Refreshing)
	require.Contains(t, snap.Error, "connection refused")
}

func TestRefreshFailureKeepsStaleModels(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{listing: listingOf("llava")}
	scraper, cache := newTestScraper(fetcher, nil, Options{})
	_, err := scraper.Refresh(context.Background())
	require.NoError(t, err)

	fetcher.listingErr = errors.New("timeout")
	_, err = scraper.Refresh(context.Background())
	require.Error(t, err)

	snap := cache.Snapshot()
	require.Equal(t, catalog.StatusReady, snap.Status)
	require.Equal(t, []string{"llava"}, names(snap.Models))
}

func TestRefreshInProgress(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		listing:        listingOf("llava"),
		listingGate:    make(chan struct{}),
		listingStarted: make(chan struct{}),
	}
	scraper, cache := newTestScraper(fetcher, nil, Options{})

	done := make(chan error)
	go func() {
		_, err := scraper.Refresh(context.Background())
		done <- err
	}()

	<-fetcher.listingStarted
	require.Equal(t, catalog.StatusPending, cache.Status())
	_, err := scraper.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRefreshInProgress)

	close(fetcher.listingGate)
	require.NoError(t, <-done)
	require.Equal(t, catalog.StatusReady, cache.Status())
}

func TestRefreshCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{
		listing:       listingOf("a", "b", "c"),
		detailBlock:   true,
		detailStarted: make(chan struct{}, 1),
	}
	scraper, cache := newTestScraper(fetcher, nil, Options{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		_, err := scraper.Refresh(ctx)
		done <- err
	}()

	<-fetcher.detailStarted
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	snap := cache.Snapshot()
	require.Equal(t, catalog.StatusPending, snap.Status)
	require.False(t, snap.Refreshing)
	require.Empty(t, snap.Models)
}

func TestRefreshPersists(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := snapshot.NewJSONFile(filepath.Join(t.TempDir(), "catalog.json"), telemetry.NopAPI{})
	fetcher := &fakeFetcher{listing: listingOf("llava", "qwen3")}
	scraper, _ := newTestScraper(fetcher, store, Options{})

	_, err := scraper.Refresh(context.Background())
	require.NoError(t, err)

	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"llava", "qwen3"}, names(doc.Models))
	require.True(t, time.Time(testTime).Equal(doc.UpdatedAt))

	// a fresh process warms its cache from the same store
	warmScraper, warmCache := newTestScraper(&fakeFetcher{}, store, Options{})
	require.Equal(t, catalog.StatusPending, warmCache.Status())
	require.NoError(t, warmScraper.Warm(context.Background()))
	require.Equal(t, catalog.StatusReady, warmCache.Status())
	require.Equal(t, []string{"llava", "qwen3"}, names(warmCache.Snapshot().Models))
}

type failingStore struct{}

func (failingStore) Load(context.Context) (snapshot.Document, error) {
	return snapshot.Document{}, snapshot.ErrNoSnapshot
}

func (failingStore) Save(context.Context, snapshot.Document) error {
	return fmt.Errorf("disk full")
}

func (failingStore) Close() error { return nil }

func TestRefreshPersistFailureKeepsResult(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{listing: listingOf("llava")}
	scraper, cache := newTestScraper(fetcher, failingStore{}, Options{})

	_, err := scraper.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, catalog.StatusReady, cache.Status())

	var broken bool
	for _, e := range cache.Logs() {
		if e.Level == telemetry.LevelBroken {
			broken = true
		}
	}
	require.True(t, broken)

	// warming from an empty store leaves the cache untouched
	require.NoError(t, scraper.Warm(context.Background()))
	require.Equal(t, []string{"llava"}, names(cache.Snapshot().Models))
}
