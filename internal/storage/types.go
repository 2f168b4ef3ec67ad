// Package storage provides PostgreSQL persistence for activity events, alerts,
// scheduled items, search items, and workspace docs.
package storage

// ActivityEvent represents an immutable activity event record.
// Severity and Tags are derived at ingest time and never mutated afterwards.
type ActivityEvent struct {
	ID           string   `json:"id"`
	Ts           int64    `json:"ts"` // epoch milliseconds
	Source       string   `json:"source"`
	Kind         string   `json:"kind"`
	Status       string   `json:"status"`
	Summary      string   `json:"summary"`
	Details      any      `json:"details"`
	RelatedPaths []string `json:"relatedPaths"`
	RelatedUrls  []string `json:"relatedUrls"`
	ExternalID   string   `json:"externalId,omitempty"`
	Severity     string   `json:"severity,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Alert represents a queued notification record.
type Alert struct {
	ID              string `json:"id"`
	CreatedAt       int64  `json:"createdAt"` // epoch milliseconds
	Severity        string `json:"severity"`  // "medium" or "high"
	Status          string `json:"status"`    // "queued" until sent
	Title           string `json:"title"`
	Body            string `json:"body"`
	ActivityEventID string `json:"activityEventId,omitempty"`
	ExternalID      string `json:"externalId,omitempty"`
	SentAt          int64  `json:"sentAt,omitempty"` // 0 until a dispatch attempt
	SendStatus      string `json:"sendStatus,omitempty"`
	SendError       string `json:"sendError,omitempty"`
}

// ScheduledItem is the normalized representation of one recurring or one-off
// job, unique per (System, ExternalID).
type ScheduledItem struct {
	ID            string `json:"id"`
	System        string `json:"system"`
	Name          string `json:"name"`
	ScheduleText  string `json:"scheduleText"`
	NextRunAt     int64  `json:"nextRunAt"` // epoch milliseconds
	Enabled       bool   `json:"enabled"`
	Command       string `json:"command"`
	ExternalID    string `json:"externalId"`
	LastIndexedAt int64  `json:"lastIndexedAt"`
}

// SearchItem is a disposable full-text projection of another record. The core
// only ever writes these; reads happen through Search.
type SearchItem struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
	RefID   string `json:"refId,omitempty"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Ts      int64  `json:"ts,omitempty"`
}

// WorkspaceDoc is one indexed workspace file chunk.
type WorkspaceDoc struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
	Source    string `json:"source"`
}

// ActivityFilter narrows activity event listings.
type ActivityFilter struct {
	Kind   string
	Status string
	Source string
	Limit  int
}

// ActivityFacets holds the distinct kind/status/source values seen recently.
type ActivityFacets struct {
	Kinds    []string `json:"kinds"`
	Statuses []string `json:"statuses"`
	Sources  []string `json:"sources"`
}
