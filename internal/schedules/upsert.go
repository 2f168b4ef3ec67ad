package schedules

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// ItemStore persists scheduled items keyed by (system, externalId).
type ItemStore interface {
	// GetScheduledItem returns (nil, nil) when no item matches the key.
	GetScheduledItem(ctx context.Context, system, externalID string) (*storage.ScheduledItem, error)

	// InsertScheduledItem persists a new item and returns its id.
	InsertScheduledItem(ctx context.Context, item *storage.ScheduledItem) (string, error)

	// UpdateScheduledItem overwrites all fields of an existing item.
	UpdateScheduledItem(ctx context.Context, id string, item *storage.ScheduledItem) error
}

// SearchStore replaces the search projection paired with a scheduled item.
type SearchStore interface {
	InsertSearchItem(ctx context.Context, item *storage.SearchItem) error
	DeleteSearchItems(ctx context.Context, kind, refID string) error
}

// Upserter dedups and persists normalized schedule candidates.
type Upserter struct {
	store  ItemStore
	search SearchStore
	now    func() time.Time
}

// NewUpserter creates an upserter.
func NewUpserter(store ItemStore, search SearchStore) *Upserter {
	return &Upserter{store: store, search: search, now: time.Now}
}

// Upsert writes each candidate: an existing (system, externalId) row is
// overwritten in place, otherwise a fresh row is inserted. Either way the
// paired search projection is replaced. Per-item failures are logged and
// absorbed; the return value counts the items that were processed.
func (u *Upserter) Upsert(ctx context.Context, candidates []Candidate) int {
	now := u.now().UnixMilli()
	processed := 0

	for _, c := range candidates {
		item := &storage.ScheduledItem{
			System:        c.System,
			Name:          c.Name,
			ScheduleText:  c.ScheduleText,
			NextRunAt:     c.NextRunAt,
			Enabled:       c.Enabled,
			Command:       c.Command,
			ExternalID:    c.ExternalID,
			LastIndexedAt: now,
		}

		existing, err := u.store.GetScheduledItem(ctx, c.System, c.ExternalID)
		if err != nil {
			slog.Error("Failed to look up scheduled item", "system", c.System, "external_id", c.ExternalID, "error", err)
			continue
		}
		if existing != nil {
			if err := u.store.UpdateScheduledItem(ctx, existing.ID, item); err != nil {
				slog.Error("Failed to update scheduled item", "system", c.System, "external_id", c.ExternalID, "error", err)
				continue
			}
		} else {
			if _, err := u.store.InsertScheduledItem(ctx, item); err != nil {
				slog.Error("Failed to insert scheduled item", "system", c.System, "external_id", c.ExternalID, "error", err)
				continue
			}
		}

		u.replaceSearchItem(ctx, c)
		processed++
	}
	return processed
}

// replaceSearchItem deletes every prior projection for the item's key and
// writes exactly one fresh row. Search writes are best-effort.
func (u *Upserter) replaceSearchItem(ctx context.Context, c Candidate) {
	refID := c.System + ":" + c.ExternalID
	if err := u.search.DeleteSearchItems(ctx, "scheduled_item", refID); err != nil {
		slog.Warn("Failed to delete stale schedule search items", "ref_id", refID, "error", err)
	}

	enabledText := "enabled"
	if !c.Enabled {
		enabledText = "disabled"
	}
	segments := []string{c.System, c.Name, c.ScheduleText, c.Command, enabledText}
	var nonEmpty []string
	for _, s := range segments {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}

	err := u.search.InsertSearchItem(ctx, &storage.SearchItem{
		Kind:    "scheduled_item",
		Title:   c.System + ": " + c.Name,
		Content: strings.Join(nonEmpty, " "),
		Source:  c.System,
		RefID:   refID,
		Ts:      c.NextRunAt,
	})
	if err != nil {
		slog.Warn("Failed to index scheduled item for search", "ref_id", refID, "error", err)
	}
}
