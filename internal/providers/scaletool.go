package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ScaleTool drives the external per-monitor scale CLI. The tool addresses
// monitors by target index:
//
//	<tool> get <index>           → prints the current scale percentage
//	<tool> set <percent> <index>
//
// The binary name is configurable; when it cannot be found the provider
// reports unavailable and all operations become no-ops at the dispatcher.
type ScaleTool struct {
	binary string
}

// NewScaleTool creates an adapter for the given binary.
func NewScaleTool(binary string) *ScaleTool {
	if binary == "" {
		binary = "deskscale"
	}
	return &ScaleTool{binary: binary}
}

// Available reports whether the scale binary is on PATH.
func (s *ScaleTool) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// Get reads the current scale value for a target index. Output that does not
// parse as a percentage is treated as unreadable.
func (s *ScaleTool) Get(ctx context.Context, targetIndex int) (string, bool) {
	out, err := exec.CommandContext(ctx, s.binary, "get", strconv.Itoa(targetIndex)).Output()
	if err != nil {
		slog.Debug("scaletool: get failed", "index", targetIndex, "err", err)
		return "", false
	}
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(string(out)), "%"))
	if _, err := strconv.Atoi(value); err != nil {
		slog.Debug("scaletool: unexpected output", "index", targetIndex, "out", string(out))
		return "", false
	}
	return value, true
}

// Set applies a scale percentage to a target index.
func (s *ScaleTool) Set(ctx context.Context, percent, targetIndex int) error {
	cmd := exec.CommandContext(ctx, s.binary, "set", strconv.Itoa(percent), strconv.Itoa(targetIndex))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("scaletool: set %d%% on %d: %w (%s)", percent, targetIndex, err, strings.TrimSpace(string(out)))
	}
	return nil
}
