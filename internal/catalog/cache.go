package catalog

import (
	"errors"
	"modelcatalog/internal/components/telemetry"
	"sync"
	"time"
)

var ErrNotFound = errors.New("catalog: model not found")

type CacheOptions struct {
	// LogCapacity is the size of the rolling log buffer, zero disables it.
	LogCapacity int
}

// Cache is the process wide slot holding the latest scrape result.
type Cache struct {
	mutex      sync.RWMutex
	models     []Model
	index      map[string]int
	status     Status
	refreshing bool
	updatedAt  time.Time
	lastErr    string

	logs *telemetry.RingAPI
}

func NewCache(opts CacheOptions) *Cache {
	c := &Cache{status: StatusPending}
	if opts.LogCapacity > 0 {
		c.logs = telemetry.NewRingAPI(opts.LogCapacity)
	}
	return c
}

// BeginRefresh marks a refresh as in flight, it returns false without
// changing anything when one already is.
func (c *Cache) BeginRefresh() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.refreshing {
		return false
	}
	c.refreshing = true
	c.status = StatusPending
	return true
}

func (c *Cache) store(models []Model, at time.Time) {
	c.models = cloneModels(models)
	c.index = make(map[string]int, len(models))
	for i, m := range c.models {
		c.index[m.Name] = i
	}
	c.updatedAt = at
	c.status = StatusReady
}

// Commit replaces the held models with the result of a finished refresh.
func (c *Cache) Commit(models []Model, at time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.store(models, at)
	c.refreshing = false
	c.lastErr = ""
}

// Fail ends a refresh without replacing the models, stale models stay
// readable.
func (c *Cache) Fail(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.refreshing = false
	if err != nil {
		c.lastErr = err.Error()
	}
	if c.index != nil {
		c.status = StatusReady
		return
	}
	c.status = StatusPending
}

// Load seeds the cache from persisted models, it does not touch an in
// flight refresh.
func (c *Cache) Load(models []Model, at time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.store(models, at)
	if c.refreshing {
		c.status = StatusPending
	}
}

func (c *Cache) Status() Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.status
}

func (c *Cache) Snapshot() Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return Snapshot{
		Status:     c.status,
		Refreshing: c.refreshing,
		Models:     cloneModels(c.models),
		UpdatedAt:  c.updatedAt,
		Error:      c.lastErr,
	}
}

func (c *Cache) Get(name string) (Model, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	i, ok := c.index[name]
	if !ok {
		return Model{}, ErrNotFound
	}
	return c.models[i].Clone(), nil
}

// Telemetry wraps `inner` so that reports also land in the log buffer.
func (c *Cache) Telemetry(inner telemetry.API) telemetry.API {
	if c.logs == nil {
		return inner
	}
	return telemetry.TeeAPI{c.logs, inner}
}

// Logs returns the buffered log entries, oldest first.
func (c *Cache) Logs() []telemetry.Entry {
	if c.logs == nil {
		return nil
	}
	return c.logs.Entries()
}
