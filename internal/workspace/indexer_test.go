package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

type fakeDocStore struct {
	docs    []*storage.WorkspaceDoc
	deletes []string
}

func (f *fakeDocStore) DeleteWorkspaceDocs(ctx context.Context, source string) error {
	f.deletes = append(f.deletes, source)
	kept := f.docs[:0]
	for _, doc := range f.docs {
		if doc.Source != source {
			kept = append(kept, doc)
		}
	}
	f.docs = kept
	return nil
}

func (f *fakeDocStore) InsertWorkspaceDoc(ctx context.Context, doc *storage.WorkspaceDoc) error {
	copied := *doc
	f.docs = append(f.docs, &copied)
	return nil
}

type fakeSearchStore struct {
	items []*storage.SearchItem
}

func (f *fakeSearchStore) InsertSearchItem(ctx context.Context, item *storage.SearchItem) error {
	copied := *item
	f.items = append(f.items, &copied)
	return nil
}

func (f *fakeSearchStore) DeleteSearchItems(ctx context.Context, kind, refID string) error {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.Kind == kind && item.RefID == refID {
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return nil
}

type fakeRecorder struct {
	events []*storage.ActivityEvent
}

func (f *fakeRecorder) Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error) {
	f.events = append(f.events, ev)
	return activity.Outcome{EventID: "ev-1"}, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexFiltersAndRecordsEvent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "meeting notes")
	writeFile(t, dir, "binary.exe", "not indexed")
	writeFile(t, dir, "node_modules/pkg/readme.md", "vendored")
	writeFile(t, dir, ".git/config", "git internals")
	writeFile(t, dir, "big.txt", strings.Repeat("x", maxFileSize+1))

	docs := &fakeDocStore{}
	search := &fakeSearchStore{}
	recorder := &fakeRecorder{}
	ix := NewIndexer(dir, []string{"**/node_modules/**", "**/.git/**"}, docs, search, recorder)
	ix.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	count, err := ix.Index(context.Background())
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 (only notes.md passes the filters)", count)
	}

	if len(docs.docs) != 1 || docs.docs[0].Path != "notes.md" {
		t.Fatalf("stored docs = %+v", docs.docs)
	}
	if docs.docs[0].Source != "workspace" {
		t.Errorf("source = %q", docs.docs[0].Source)
	}

	if len(search.items) != 1 {
		t.Fatalf("search items = %d, want 1", len(search.items))
	}
	item := search.items[0]
	if item.Kind != "workspace_doc" || item.RefID != "workspace" || item.Path != "notes.md" {
		t.Errorf("search projection = %+v", item)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("events = %d, want 1", len(recorder.events))
	}
	ev := recorder.events[0]
	if ev.Kind != "indexer" || ev.Status != "ok" || ev.Summary != "Workspace indexed" {
		t.Errorf("event = %+v", ev)
	}
}

func TestIndexChunksLargeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "transcript.log", strings.Repeat("a", chunkSize+100))

	docs := &fakeDocStore{}
	ix := NewIndexer(dir, nil, docs, &fakeSearchStore{}, &fakeRecorder{})

	count, err := ix.Index(context.Background())
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 chunks", count)
	}
	if docs.docs[0].Path != "transcript.log#1" || docs.docs[1].Path != "transcript.log#2" {
		t.Errorf("chunk paths = %q, %q", docs.docs[0].Path, docs.docs[1].Path)
	}
	if len(docs.docs[0].Content) != chunkSize || len(docs.docs[1].Content) != 100 {
		t.Errorf("chunk sizes = %d, %d", len(docs.docs[0].Content), len(docs.docs[1].Content))
	}
}

func TestChunkContentKeepsRunesIntact(t *testing.T) {
	content := strings.Repeat("a", chunkSize-1) + "é" + strings.Repeat("b", 50)

	chunks := chunkContent(content)

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d contains invalid UTF-8", i)
		}
	}
	if strings.Join(chunks, "") != content {
		t.Error("chunks do not reassemble the original content")
	}
	if !strings.HasPrefix(chunks[1], "é") {
		t.Errorf("chunk 2 starts with %q, want the full rune", chunks[1][:2])
	}
}

func TestIndexReplacesPriorSet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "first")

	docs := &fakeDocStore{}
	search := &fakeSearchStore{}
	ix := NewIndexer(dir, nil, docs, search, &fakeRecorder{})

	if _, err := ix.Index(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "a.md")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "b.md", "second")

	if _, err := ix.Index(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(docs.docs) != 1 || docs.docs[0].Path != "b.md" {
		t.Errorf("docs after replace = %+v", docs.docs)
	}
	if len(search.items) != 1 || search.items[0].Path != "b.md" {
		t.Errorf("search items after replace = %+v", search.items)
	}
}

func TestIndexMissingRootRecordsErrorEvent(t *testing.T) {
	recorder := &fakeRecorder{}
	ix := NewIndexer(filepath.Join(t.TempDir(), "missing"), nil, &fakeDocStore{}, &fakeSearchStore{}, recorder)

	if _, err := ix.Index(context.Background()); err == nil {
		t.Fatal("expected error for missing root")
	}
	if len(recorder.events) != 1 {
		t.Fatalf("events = %d, want 1", len(recorder.events))
	}
	ev := recorder.events[0]
	if ev.Status != "error" || ev.Summary != "Workspace indexing failed" {
		t.Errorf("event = %+v", ev)
	}
}

type fakeMetrics struct {
	docs int
}

func (f *fakeMetrics) AddWorkspaceDocs(n int) { f.docs += n }

func TestIndexCountsWrittenChunks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "hello")
	writeFile(t, dir, "transcript.log", strings.Repeat("a", chunkSize+100))
	counters := &fakeMetrics{}

	ix := NewIndexer(dir, nil, &fakeDocStore{}, &fakeSearchStore{}, &fakeRecorder{})
	ix.SetMetrics(counters)

	count, err := ix.Index(context.Background())
	if err != nil {
		t.Fatalf("Index error: %v", err)
	}
	if counters.docs != count {
		t.Errorf("docs counter = %d, want %d", counters.docs, count)
	}
	if counters.docs != 3 {
		t.Errorf("docs counter = %d, want 3", counters.docs)
	}
}
