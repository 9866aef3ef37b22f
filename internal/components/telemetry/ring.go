package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LevelBroken  Level = "broken"
	LevelWarning Level = "warning"
	LevelDebug   Level = "debug"
	LevelCount   Level = "count"
)

// Entry is a single report held by a RingAPI.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format(time.TimeOnly), e.Level, e.Message)
}

// RingAPI keeps the most recent reports in a fixed size buffer, older entries
// are overwritten once it is full.
type RingAPI struct {
	mutex   sync.Mutex
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

func NewRingAPI(capacity int) *RingAPI {
	if capacity < 1 {
		capacity = 1
	}
	return &RingAPI{
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

func formatReport(id string, params []any) string {
	if len(params) == 0 {
		return id
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s: %s", id, strings.Join(parts, ", "))
}

func (r *RingAPI) push(level Level, message string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.entries[r.next] = Entry{
		Time:    r.now(),
		Level:   level,
		Message: message,
	}
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

func (r *RingAPI) ReportBroken(id string, params ...any) {
	r.push(LevelBroken, formatReport(id, params))
}

func (r *RingAPI) ReportWarning(id string, params ...any) {
	r.push(LevelWarning, formatReport(id, params))
}

func (r *RingAPI) ReportDebug(msg string, params ...any) {
	r.push(LevelDebug, formatReport(msg, params))
}

func (r *RingAPI) ReportCount(id string, count int64) {
	r.push(LevelCount, fmt.Sprintf("%s: %d", id, count))
}

// Entries returns the buffered entries, oldest first.
func (r *RingAPI) Entries() []Entry {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}
