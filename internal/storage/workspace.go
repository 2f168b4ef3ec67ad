package storage

import (
	"context"
	"fmt"
)

// DeleteWorkspaceDocs removes all workspace docs for the given source.
func (db *DB) DeleteWorkspaceDocs(ctx context.Context, source string) error {
	query := `DELETE FROM workspace_docs WHERE source = $1`
	if _, err := db.conn.ExecContext(ctx, query, source); err != nil {
		return fmt.Errorf("failed to delete workspace docs: %w", err)
	}
	return nil
}

// InsertWorkspaceDoc persists one workspace doc chunk.
func (db *DB) InsertWorkspaceDoc(ctx context.Context, doc *WorkspaceDoc) error {
	query := `
		INSERT INTO workspace_docs (path, content, updated_at, source)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.conn.ExecContext(ctx, query, doc.Path, doc.Content, doc.UpdatedAt, doc.Source); err != nil {
		return fmt.Errorf("failed to insert workspace doc: %w", err)
	}
	return nil
}
