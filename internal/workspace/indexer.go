// Package workspace indexes the openclaw workspace directory into searchable
// doc chunks. Each pass replaces the full doc set for the source.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// Extensions eligible for indexing.
var includeExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".log":  true,
	".json": true,
	".yml":  true,
	".yaml": true,
}

const (
	maxFileSize = 200_000
	chunkSize   = 6_000
)

// DocStore persists workspace doc chunks.
type DocStore interface {
	DeleteWorkspaceDocs(ctx context.Context, source string) error
	InsertWorkspaceDoc(ctx context.Context, doc *storage.WorkspaceDoc) error
}

// SearchStore replaces the search projections paired with the doc set.
type SearchStore interface {
	InsertSearchItem(ctx context.Context, item *storage.SearchItem) error
	DeleteSearchItems(ctx context.Context, kind, refID string) error
}

// EventRecorder ingests activity events recording indexing outcomes.
type EventRecorder interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// Doc is one scanned chunk ready for persistence.
type Doc struct {
	Path      string
	Content   string
	UpdatedAt int64
}

// Metrics counts written doc chunks. Implementations must be safe for
// concurrent use.
type Metrics interface {
	AddWorkspaceDocs(n int)
}

type noopMetrics struct{}

func (noopMetrics) AddWorkspaceDocs(int) {}

// Indexer scans a workspace directory and replaces its stored doc set.
type Indexer struct {
	root    string
	source  string
	ignore  []glob.Glob
	docs    DocStore
	search  SearchStore
	events  EventRecorder
	metrics Metrics
	now     func() time.Time
}

// NewIndexer creates an indexer rooted at dir. Invalid ignore patterns are
// logged and skipped.
func NewIndexer(dir string, ignorePatterns []string, docs DocStore, search SearchStore, events EventRecorder) *Indexer {
	var ignore []glob.Glob
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			slog.Warn("Skipping invalid workspace ignore pattern", "pattern", pattern, "error", err)
			continue
		}
		ignore = append(ignore, g)
	}
	return &Indexer{
		root:    dir,
		source:  "workspace",
		ignore:  ignore,
		docs:    docs,
		search:  search,
		events:  events,
		metrics: noopMetrics{},
		now:     time.Now,
	}
}

// SetMetrics installs a counter sink. A nil value keeps the no-op default.
func (ix *Indexer) SetMetrics(m Metrics) {
	if m != nil {
		ix.metrics = m
	}
}

// Index scans the workspace and replaces the stored doc set. It records an
// indexer activity event either way and returns the number of chunks written.
func (ix *Indexer) Index(ctx context.Context) (int, error) {
	docs, err := ix.Scan()
	if err == nil {
		err = ix.replaceDocs(ctx, docs)
	}
	if err != nil {
		ix.recordEvent(ctx, "error", "Workspace indexing failed", map[string]any{"error": err.Error()})
		return 0, err
	}

	ix.metrics.AddWorkspaceDocs(len(docs))
	ix.recordEvent(ctx, "ok", "Workspace indexed", map[string]any{"count": len(docs)})
	slog.Info("Workspace indexed", "root", ix.root, "docs", len(docs))
	return len(docs), nil
}

// Scan walks the workspace and returns the chunked docs that pass the
// extension, size, and ignore filters. Unreadable files are skipped.
func (ix *Indexer) Scan() ([]Doc, error) {
	var docs []Doc
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(ix.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ix.ignored(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.ignored(rel) {
			return nil
		}
		if !includeExtensions[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("Skipping unreadable workspace file", "path", rel, "error", err)
			return nil
		}
		if info.Size() > maxFileSize {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable workspace file", "path", rel, "error", err)
			return nil
		}

		chunks := chunkContent(string(content))
		for i, chunk := range chunks {
			chunkPath := rel
			if len(chunks) > 1 {
				chunkPath = fmt.Sprintf("%s#%d", rel, i+1)
			}
			docs = append(docs, Doc{
				Path:      chunkPath,
				Content:   chunk,
				UpdatedAt: info.ModTime().UnixMilli(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}
	return docs, nil
}

// replaceDocs swaps the prior doc set for the source with the scanned one,
// paired search projections included.
func (ix *Indexer) replaceDocs(ctx context.Context, docs []Doc) error {
	if err := ix.docs.DeleteWorkspaceDocs(ctx, ix.source); err != nil {
		return err
	}
	if err := ix.search.DeleteSearchItems(ctx, "workspace_doc", ix.source); err != nil {
		return err
	}

	for _, doc := range docs {
		err := ix.docs.InsertWorkspaceDoc(ctx, &storage.WorkspaceDoc{
			Path:      doc.Path,
			Content:   doc.Content,
			UpdatedAt: doc.UpdatedAt,
			Source:    ix.source,
		})
		if err != nil {
			return err
		}
		err = ix.search.InsertSearchItem(ctx, &storage.SearchItem{
			Kind:    "workspace_doc",
			Title:   doc.Path,
			Content: doc.Content,
			Source:  ix.source,
			RefID:   ix.source,
			Path:    doc.Path,
			Ts:      doc.UpdatedAt,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (ix *Indexer) ignored(rel string) bool {
	for _, g := range ix.ignore {
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}

func (ix *Indexer) recordEvent(ctx context.Context, status, summary string, details map[string]any) {
	_, err := ix.events.Ingest(ctx, &storage.ActivityEvent{
		Ts:      ix.now().UnixMilli(),
		Source:  "mission-control",
		Kind:    "indexer",
		Status:  status,
		Summary: summary,
		Details: details,
	})
	if err != nil {
		slog.Warn("Failed to record workspace index event", "error", err)
	}
}

func chunkContent(content string) []string {
	if content == "" {
		return nil
	}
	var chunks []string
	for len(content) > chunkSize {
		// Back up so a multi-byte rune never straddles the cut.
		cut := chunkSize
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		if cut == 0 {
			cut = chunkSize
		}
		chunks = append(chunks, content[:cut])
		content = content[cut:]
	}
	return append(chunks, content)
}
