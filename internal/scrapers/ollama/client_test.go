package ollama

import (
	"context"
	"modelcatalog/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type fixtureServer struct {
	*httptest.Server
	mutex sync.Mutex
	hits  map[string]int
}

func (s *fixtureServer) count(path string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.hits[path]
}

func newFixtureServer(t *testing.T) *fixtureServer {
	t.Helper()

	library, err := os.ReadFile(filepath.Join("testdata", "library.html"))
	require.NoError(t, err)
	tags, err := os.ReadFile(filepath.Join("testdata", "llama3.2_tags.html"))
	require.NoError(t, err)

	s := &fixtureServer{hits: map[string]int{}}
	mux := http.NewServeMux()
	serve := func(body []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.mutex.Lock()
			s.hits[r.URL.Path]++
			s.mutex.Unlock()
			w.Header().Set("content-type", "text/html; charset=utf-8")
			w.Write(body)
		}
	}
	mux.HandleFunc("/library", serve(library))
	mux.HandleFunc("/library/llama3.2/tags", serve(tags))
	mux.HandleFunc("/library/broken/tags", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestClient(t *testing.T, baseUrl string, opts ClientOptions) *Client {
	t.Helper()
	opts.BaseUrl = baseUrl
	client, err := NewClient(opts, telemetry.NopAPI{})
	require.NoError(t, err)
	t.Cleanup(func() {
		client.http.GetClient().CloseIdleConnections()
		require.NoError(t, client.Close())
	})
	return client
}

func TestClientListing(t *testing.T) {
	server := newFixtureServer(t)
	client := newTestClient(t, server.URL, ClientOptions{})

	models, err := client.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)
	require.Equal(t, "llama3.2", models[0].Name)
	require.Equal(t, server.URL+"/library/llama3.2", models[0].URL)
}

func TestClientDetailMemo(t *testing.T) {
	server := newFixtureServer(t)
	client := newTestClient(t, server.URL, ClientOptions{PageCacheTTL: time.Minute})

	first, err := client.Detail(context.Background(), "llama3.2")
	require.NoError(t, err)
	require.Len(t, first.Versions, 4)

	second, err := client.Detail(context.Background(), "llama3.2")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, server.count("/library/llama3.2/tags"))
}

func TestClientDiskMemoOutlivesClient(t *testing.T) {
	server := newFixtureServer(t)
	opts := ClientOptions{
		BaseUrl:      server.URL,
		PageCacheTTL: time.Minute,
		PageCacheDir: t.TempDir(),
	}

	for i := 0; i < 2; i++ {
		client, err := NewClient(opts, telemetry.NopAPI{})
		require.NoError(t, err)
		detail, err := client.Detail(context.Background(), "llama3.2")
		require.NoError(t, err)
		require.Len(t, detail.Versions, 4)
		client.http.GetClient().CloseIdleConnections()
		require.NoError(t, client.Close())
	}
	require.Equal(t, 1, server.count("/library/llama3.2/tags"))
}

func TestDiskPagesExpire(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	ring := telemetry.NewRingAPI(16)
	pages, err := openDiskPages(badger.DefaultOptions("").WithInMemory(true), time.Second, tracer, ring)
	require.NoError(t, err)
	defer pages.close()

	ctx := context.Background()
	_, ok := pages.get(ctx, "https://ollama.com/library/qwen3/tags")
	require.False(t, ok)

	pages.put(ctx, "https://ollama.com/library/qwen3/tags", []byte("<html></html>"))
	body, ok := pages.get(ctx, "https://ollama.com/library/qwen3/tags")
	require.True(t, ok)
	require.Equal(t, "<html></html>", string(body))

	// badger ttls have second granularity
	require.Eventually(t, func() bool {
		_, ok := pages.get(ctx, "https://ollama.com/library/qwen3/tags")
		return !ok
	}, 5*time.Second, 100*time.Millisecond)

	for _, e := range ring.Entries() {
		require.NotEqual(t, telemetry.LevelBroken, e.Level, e.Message)
	}
}

func TestClientDetailWithoutMemo(t *testing.T) {
	server := newFixtureServer(t)
	client := newTestClient(t, server.URL, ClientOptions{})

	for i := 0; i < 2; i++ {
		_, err := client.Detail(context.Background(), "llama3.2")
		require.NoError(t, err)
	}
	require.Equal(t, 2, server.count("/library/llama3.2/tags"))
}

func TestClientUnexpectedStatus(t *testing.T) {
	server := newFixtureServer(t)
	client := newTestClient(t, server.URL, ClientOptions{PageCacheTTL: time.Minute})

	_, err := client.Detail(context.Background(), "broken")
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = client.Detail(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClientDumpsMessages(t *testing.T) {
	server := newFixtureServer(t)
	dir := filepath.Join(t.TempDir(), "dump")
	output, err := telemetry.NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := newTestClient(t, server.URL, ClientOptions{Output: output})
	_, err = client.Listing(context.Background())
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "x-test-model")
}

func TestClientRejectsRelativeBaseUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "/library"}, telemetry.NopAPI{})
	require.Error(t, err)
}

func TestPageKey(t *testing.T) {
	require.Equal(
		t,
		pageKey("https://ollama.com/library/llava/tags"),
		pageKey("HTTPS://Ollama.com:443/library/./llava//tags#top"),
	)
}
