package snapshot

import (
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/telemetry"
	"time"
)

var ErrNoSnapshot = errors.New("snapshot: nothing persisted yet")

// Document is the persisted form of a finished refresh.
type Document struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Models    []catalog.Model `json:"models"`
}

type Store interface {
	// Load returns ErrNoSnapshot when nothing has been saved yet.
	Load(ctx context.Context) (Document, error)
	// Save replaces whatever was persisted before.
	Save(ctx context.Context, doc Document) error
	Close() error
}

const (
	KindNone   = "none"
	KindJSON   = "json"
	KindSqlite = "sqlite"
)

type Config struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Open creates the store described by cfg, it returns a nil Store for
// KindNone.
func Open(cfg Config, tel telemetry.API) (Store, error) {
	switch cfg.Kind {
	case "", KindNone:
		return nil, nil
	case KindJSON:
		if cfg.Path == "" {
			return nil, fmt.Errorf("snapshot: %s store needs a path", cfg.Kind)
		}
		return NewJSONFile(cfg.Path, tel), nil
	case KindSqlite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("snapshot: %s store needs a path", cfg.Kind)
		}
		store, err := OpenDBStore(cfg.Path, tel)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("snapshot: unknown store kind %q", cfg.Kind)
	}
}
