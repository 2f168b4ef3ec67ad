package schedules

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const taskQueryTimeout = 30 * time.Second

// ExecTaskTableSource shells out to the platform scheduler CLI to dump the
// task table in LIST format.
type ExecTaskTableSource struct {
	bin string
}

// NewExecTaskTableSource creates a source backed by the given binary
// (normally "schtasks").
func NewExecTaskTableSource(bin string) *ExecTaskTableSource {
	return &ExecTaskTableSource{bin: bin}
}

// ListPlatformTasks runs `<bin> /Query /FO LIST /V` and returns its stdout.
func (s *ExecTaskTableSource) ListPlatformTasks(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, taskQueryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.bin, "/Query", "/FO", "LIST", "/V")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s query failed: %w (%s)", s.bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
