package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), ".mission-control.json"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(s.WorkspaceIgnore, DefaultWorkspaceIgnore) {
		t.Errorf("workspaceIgnore = %v", s.WorkspaceIgnore)
	}
	if s.LiveCronImportEverySeconds != DefaultLiveCronImportEverySeconds {
		t.Errorf("liveCronImportEverySeconds = %d", s.LiveCronImportEverySeconds)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mission-control.json")
	if err := os.WriteFile(path, []byte(`{"liveCronImportEverySeconds": 45}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.LiveCronImportEverySeconds != 45 {
		t.Errorf("liveCronImportEverySeconds = %d, want 45", s.LiveCronImportEverySeconds)
	}
	if !reflect.DeepEqual(s.WorkspaceIgnore, DefaultWorkspaceIgnore) {
		t.Errorf("workspaceIgnore = %v, want defaults", s.WorkspaceIgnore)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mission-control.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mission-control.json")
	want := &Settings{
		WorkspaceIgnore:            []string{"**/tmp/**"},
		LiveCronImportEverySeconds: 120,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestCronImportIntervalClamps(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 15},
		{15, 15},
		{30, 30},
		{600, 600},
		{9999, 600},
	}
	for _, tt := range tests {
		s := &Settings{LiveCronImportEverySeconds: tt.in}
		if got := s.CronImportInterval(); got != tt.want {
			t.Errorf("CronImportInterval(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
