package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// FFProbe measures video duration by piping the raw bytes through the
// ffprobe binary. Containers with trailing metadata can defeat a stdin
// probe; callers treat any failure as duration unknown.
type FFProbe struct {
	Bin string
}

// NewFFProbe creates a probe around the given ffprobe binary.
func NewFFProbe(bin string) *FFProbe {
	if bin == "" {
		bin = "ffprobe"
	}
	return &FFProbe{Bin: bin}
}

// Duration returns the media duration in whole seconds.
func (p *FFProbe) Duration(ctx context.Context, data []byte) (int, error) {
	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"-i", "-",
	)
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	raw := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration %q: %w", raw, err)
	}
	return int(math.Round(seconds)), nil
}
