package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"montage/timeline"
)

const (
	// DefaultImageDurationMs is the working duration for static images.
	DefaultImageDurationMs = 5000
	// TimeoutFallbackMs is the duration assumed when probing never finishes.
	TimeoutFallbackMs = 5000
	// DefaultProbeTimeout bounds how long a probe may take before the
	// fallback kicks in.
	DefaultProbeTimeout = 15 * time.Second
)

// Prober detects the true playable length of a media asset.
type Prober interface {
	ProbeDuration(ctx context.Context, url string) (int64, error)
}

// FFProbe probes media via the ffprobe binary, which handles both local
// paths and remote URLs.
type FFProbe struct{}

// ProbeDuration returns the asset's duration in milliseconds.
func (FFProbe) ProbeDuration(ctx context.Context, url string) (int64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		url)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %v", url, err)
	}

	durationStr := strings.TrimSpace(string(output))
	seconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output %q: %v", durationStr, err)
	}
	return int64(seconds * 1000), nil
}

// Resolver decides the working duration for a newly placed clip.
type Resolver struct {
	Prober  Prober
	Timeout time.Duration
}

// NewResolver returns a duration resolver with the default probe backend
// and timeout.
func NewResolver() *Resolver {
	return &Resolver{Prober: FFProbe{}, Timeout: DefaultProbeTimeout}
}

// ResolveDuration picks the clip duration for an asset, trying strategies in
// order of reliability: probe the actual asset, fall back to the duration
// declared in the payload, then to a fixed default. It always returns a
// value; the error, when non-nil, is a soft warning saying which fallback
// was used and why.
func (r *Resolver) ResolveDuration(ctx context.Context, asset Asset) (int64, error) {
	if asset.Type == timeline.MediaImage {
		return DefaultImageDurationMs, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if r.Prober != nil {
		ms, err := r.Prober.ProbeDuration(probeCtx, asset.URL)
		if err == nil && ms > 0 {
			return ms, nil
		}
		if asset.Duration != nil && *asset.Duration > 0 {
			return *asset.Duration, fmt.Errorf("probe failed, using declared duration: %v", err)
		}
		return TimeoutFallbackMs, fmt.Errorf("probe failed, using fallback duration: %v", err)
	}

	if asset.Duration != nil && *asset.Duration > 0 {
		return *asset.Duration, nil
	}
	return TimeoutFallbackMs, fmt.Errorf("no prober configured, using fallback duration")
}
