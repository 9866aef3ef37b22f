package snapshot

import (
	"context"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/telemetry"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		UpdatedAt: time.Date(2024, time.October, 2, 8, 15, 0, 0, time.UTC),
		Models: []catalog.Model{
			{
				Name:         "llama3.2",
				Title:        "llama3.2",
				Description:  "Meta's Llama 3.2 goes small with 1B and 3B models.",
				URL:          "https://ollama.com/library/llama3.2",
				Capabilities: []string{"tools"},
				Sizes:        []string{"1b", "3b"},
				PullCount:    "12.3M",
				TagCount:     "63",
				Updated:      "3 months ago",
				Versions: []catalog.Version{
					{Name: "llama3.2:latest", Digest: "a80c4f17acd5", Size: "2.0GB", Context: "128K", Input: "Text", Updated: "1 month ago"},
					{Name: "llama3.2:1b", Size: "1.3GB"},
				},
			},
			{
				Name:      "nomic-embed-text",
				PullCount: "28.4M",
				Sizes:     []string{"137m"},
			},
		},
	}
}

func stores(t *testing.T) map[string]Store {
	dir := t.TempDir()

	sqlite, err := OpenDBStore(filepath.Join(dir, "catalog.db"), telemetry.NopAPI{})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"json":   NewJSONFile(filepath.Join(dir, "nested", "catalog.json"), telemetry.NopAPI{}),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx)
			require.ErrorIs(t, err, ErrNoSnapshot)

			expected := sampleDocument()
			require.NoError(t, store.Save(ctx, expected))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			require.True(t, expected.UpdatedAt.Equal(loaded.UpdatedAt))
			if diff := cmp.Diff(expected.Models, loaded.Models); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, sampleDocument()))

			next := Document{
				UpdatedAt: time.Date(2024, time.October, 3, 0, 0, 0, 0, time.UTC),
				Models:    []catalog.Model{{Name: "qwen3", Sizes: []string{"8b"}}},
			}
			require.NoError(t, store.Save(ctx, next))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			require.True(t, next.UpdatedAt.Equal(loaded.UpdatedAt))
			if diff := cmp.Diff(next.Models, loaded.Models); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestJSONFileLeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	store := NewJSONFile(path, telemetry.NopAPI{})

	require.NoError(t, store.Save(context.Background(), sampleDocument()))
	require.NoError(t, store.Save(context.Background(), sampleDocument()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "catalog.json", entries[0].Name())
}

func TestJSONFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	ring := telemetry.NewRingAPI(4)
	_, err := NewJSONFile(path, ring).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSnapshot)
	require.Len(t, ring.Entries(), 1)
	require.Equal(t, telemetry.LevelBroken, ring.Entries()[0].Level)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(Config{Kind: KindNone}, telemetry.NopAPI{})
	require.NoError(t, err)
	require.Nil(t, store)

	store, err = Open(Config{Kind: KindJSON, Path: filepath.Join(dir, "a.json")}, telemetry.NopAPI{})
	require.NoError(t, err)
	require.IsType(t, JSONFile{}, store)

	store, err = Open(Config{Kind: KindSqlite, Path: filepath.Join(dir, "a.db")}, telemetry.NopAPI{})
	require.NoError(t, err)
	require.IsType(t, DBStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(Config{Kind: KindJSON}, telemetry.NopAPI{})
	require.Error(t, err)

	_, err = Open(Config{Kind: "redis", Path: "x"}, telemetry.NopAPI{})
	require.Error(t, err)
}
