package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/tidwall/gjson"

	"ad-video-gen/internal/logging"
)

// ffmpegSem limits the number of concurrent ffmpeg processes to 1 to avoid
// "pthread_create() failed: Resource temporarily unavailable" under heavy load.
var ffmpegSem = make(chan struct{}, 1)

// runFFmpeg executes ffmpeg with the given arguments, serialized through the
// semaphore, and returns the captured stderr on failure.
func runFFmpeg(ctx context.Context, log *logging.Logger, args ...string) error {
	ffmpegSem <- struct{}{}
	defer func() { <-ffmpegSem }()

	full := append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", full...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		log.Errorf("[FFMPEG] ✗ ffmpeg failed (exit: %v): %s", err, errMsg)
		return fmt.Errorf("ffmpeg error: %s", errMsg)
	}
	return nil
}

// RunFFmpeg is the exported entry point for other stages that shell out to
// ffmpeg, so all invocations share the same semaphore.
func RunFFmpeg(ctx context.Context, log *logging.Logger, args ...string) error {
	return runFFmpeg(ctx, log, args...)
}

// ProbeDuration returns the container duration of a media file in seconds.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctxProbe, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctxProbe, "ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(string(out), "%f", &duration); err != nil || duration <= 0 {
		return 0, fmt.Errorf("ffprobe %s: unparseable duration %q", path, string(out))
	}
	return duration, nil
}

// StreamInfo holds the video stream properties the grading stage cares about.
type StreamInfo struct {
	AvgFrameRate string
	RFrameRate   string
}

// ProbeStream reads the first video stream's frame rates via ffprobe JSON.
func ProbeStream(ctx context.Context, path string) (StreamInfo, error) {
	ctxProbe, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctxProbe, "ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate,r_frame_rate",
		"-of", "json", path)
	out, err := cmd.Output()
	if err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	return StreamInfo{
		AvgFrameRate: gjson.GetBytes(out, "streams.0.avg_frame_rate").String(),
		RFrameRate:   gjson.GetBytes(out, "streams.0.r_frame_rate").String(),
	}, nil
}

// isPlaceholder reports whether path is missing or too small to be media.
func isPlaceholder(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Size() < 1000
}
