// Package settings loads and saves the operator-editable settings file.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default tuning values applied when the settings file is absent or partial.
const (
	DefaultLiveCronImportEverySeconds = 30
	MinLiveCronImportEverySeconds     = 15
	MaxLiveCronImportEverySeconds     = 600
)

// DefaultWorkspaceIgnore is the ignore list applied when none is configured.
var DefaultWorkspaceIgnore = []string{"**/node_modules/**", "**/.git/**", "**/.next/**"}

// Settings is the persisted shape of the settings file.
type Settings struct {
	WorkspaceIgnore            []string `json:"workspaceIgnore"`
	LiveCronImportEverySeconds int      `json:"liveCronImportEverySeconds"`
}

// Defaults returns a fresh settings value with every field defaulted.
func Defaults() *Settings {
	return &Settings{
		WorkspaceIgnore:            append([]string(nil), DefaultWorkspaceIgnore...),
		LiveCronImportEverySeconds: DefaultLiveCronImportEverySeconds,
	}
}

// Load reads the settings file at path. A missing file yields defaults; a
// malformed file is an error. Absent fields fall back to their defaults.
func Load(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Defaults()
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if s.WorkspaceIgnore == nil {
		s.WorkspaceIgnore = append([]string(nil), DefaultWorkspaceIgnore...)
	}
	if s.LiveCronImportEverySeconds == 0 {
		s.LiveCronImportEverySeconds = DefaultLiveCronImportEverySeconds
	}
	return s, nil
}

// Save writes the settings file at path.
func Save(path string, s *Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// CronImportInterval returns the live cron import interval in seconds, clamped
// to the supported range.
func (s *Settings) CronImportInterval() int {
	v := s.LiveCronImportEverySeconds
	if v < MinLiveCronImportEverySeconds {
		return MinLiveCronImportEverySeconds
	}
	if v > MaxLiveCronImportEverySeconds {
		return MaxLiveCronImportEverySeconds
	}
	return v
}
