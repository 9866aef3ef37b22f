package catalog

import (
	"slices"
	"time"
)

// Version is one row of a model's tags page, e.g. `llama3.2:latest`.
type Version struct {
	Name    string `json:"name"`
	Digest  string `json:"digest,omitempty"`
	Size    string `json:"size,omitempty"`
	Context string `json:"context,omitempty"`
	Input   string `json:"input,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// Model is a single library entry. Decorated fields (PullCount, TagCount,
// Updated, Sizes) keep the text shown on the site, see units.go for their
// numeric forms.
type Model struct {
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	URL          string    `json:"url,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
	Sizes        []string  `json:"sizes,omitempty"`
	PullCount    string    `json:"pull_count,omitempty"`
	TagCount     string    `json:"tag_count,omitempty"`
	Updated      string    `json:"updated,omitempty"`
	Versions     []Version `json:"versions,omitempty"`
}

// Clone returns a deep copy.
func (m Model) Clone() Model {
	m.Capabilities = slices.Clone(m.Capabilities)
	m.Sizes = slices.Clone(m.Sizes)
	m.Versions = slices.Clone(m.Versions)
	return m
}

func cloneModels(models []Model) []Model {
	if models == nil {
		return nil
	}
	out := make([]Model, len(models))
	for i, m := range models {
		out[i] = m.Clone()
	}
	return out
}

type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
)

// Snapshot is a point in time copy of the cache.
type Snapshot struct {
	Status     Status    `json:"status"`
	Refreshing bool      `json:"refreshing"`
	Models     []Model   `json:"models"`
	UpdatedAt  time.Time `json:"updated_at"`
	Error      string    `json:"error,omitempty"`
}
