package storage

import (
	"context"
	"fmt"
)

// InsertSearchItem writes one search projection row.
func (db *DB) InsertSearchItem(ctx context.Context, item *SearchItem) error {
	query := `
		INSERT INTO search_items (kind, title, content, source, ref_id, path, url, ts)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, 0))
	`
	_, err := db.conn.ExecContext(ctx, query,
		item.Kind,
		item.Title,
		item.Content,
		item.Source,
		item.RefID,
		item.Path,
		item.URL,
		item.Ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search item: %w", err)
	}
	return nil
}

// DeleteSearchItems removes every search row sharing (kind, refID).
func (db *DB) DeleteSearchItems(ctx context.Context, kind, refID string) error {
	query := `DELETE FROM search_items WHERE kind = $1 AND ref_id = $2`
	if _, err := db.conn.ExecContext(ctx, query, kind, refID); err != nil {
		return fmt.Errorf("failed to delete search items: %w", err)
	}
	return nil
}

// SearchItems performs a full-text lookup over the search index, optionally
// filtered by kind and source. Ranking uses ts_rank with recency tie-break.
func (db *DB) SearchItems(ctx context.Context, text, kind, source string, limit int) ([]*SearchItem, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT search_id, kind, title, content, source,
		       COALESCE(ref_id, ''), COALESCE(path, ''), COALESCE(url, ''), COALESCE(ts, 0)
		FROM search_items
		WHERE to_tsvector('simple', content) @@ plainto_tsquery('simple', $1)
		  AND ($2 = '' OR kind = $2)
		  AND ($3 = '' OR source = $3)
		ORDER BY ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', $1)) DESC,
		         ts DESC NULLS LAST
		LIMIT $4
	`
	rows, err := db.conn.QueryContext(ctx, query, text, kind, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	var items []*SearchItem
	for rows.Next() {
		var item SearchItem
		err := rows.Scan(
			&item.ID,
			&item.Kind,
			&item.Title,
			&item.Content,
			&item.Source,
			&item.RefID,
			&item.Path,
			&item.URL,
			&item.Ts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search items: %w", err)
	}
	return items, nil
}
