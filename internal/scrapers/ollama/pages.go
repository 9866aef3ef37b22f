package ollama

import (
	"context"
	"errors"
	"fmt"
	"modelcatalog/internal/components/telemetry"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const report_pages_disk = "pages.disk"

// pageCache memoizes raw page bodies by normalized url.
type pageCache interface {
	get(ctx context.Context, key string) ([]byte, bool)
	put(ctx context.Context, key string, body []byte)
	close() error
}

type memoryPages struct {
	lru *expirable.LRU[string, []byte]
}

func newMemoryPages(size int, ttl time.Duration) memoryPages {
	return memoryPages{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (p memoryPages) get(_ context.Context, key string) ([]byte, bool) {
	return p.lru.Get(key)
}

func (p memoryPages) put(_ context.Context, key string, body []byte) {
	p.lru.Add(key, body)
}

func (p memoryPages) close() error {
	p.lru.Purge()
	return nil
}

// diskPages keeps pages in a badger database so they outlive the process,
// entries expire through badger's own ttl.
type diskPages struct {
	db     *badger.DB
	ttl    time.Duration
	tracer trace.Tracer
	tel    telemetry.API
}

func openDiskPages(opts badger.Options, ttl time.Duration, tracer trace.Tracer, tel telemetry.API) (diskPages, error) {
	db, err := badger.Open(opts.WithLogger(badgerLogger{tel: tel}))
	if err != nil {
		return diskPages{}, fmt.Errorf("open page cache: %w", err)
	}
	return diskPages{db: db, ttl: ttl, tracer: tracer, tel: tel}, nil
}

func (p diskPages) get(ctx context.Context, key string) ([]byte, bool) {
	_, span := p.tracer.Start(ctx, "pages.get", trace.WithAttributes(
		attribute.String("cache_key", key),
	))
	defer span.End()

	var body []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached page")
		p.tel.ReportBroken(report_pages_disk, "get", err)
		return nil, false
	}
	return body, true
}

func (p diskPages) put(ctx context.Context, key string, body []byte) {
	_, span := p.tracer.Start(ctx, "pages.put", trace.WithAttributes(
		attribute.String("cache_key", key),
		attribute.Int("content_length", len(body)),
	))
	defer span.End()

	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), body).WithTTL(p.ttl))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cached page")
		p.tel.ReportBroken(report_pages_disk, "put", err)
	}
}

func (p diskPages) close() error {
	return p.db.Close()
}

// badgerLogger routes badger's own logging into telemetry, info output is
// kept at debug level.
type badgerLogger struct {
	tel telemetry.API
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.tel.ReportBroken(report_pages_disk, fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.tel.ReportWarning(report_pages_disk, fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.tel.ReportDebug(report_pages_disk, fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(string, ...any) {}
