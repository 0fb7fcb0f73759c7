// Package audio synthesizes the background soundtrack with FFmpeg's lavfi
// sources so no external music assets are needed.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
	"ad-video-gen/internal/video"
)

type Synthesizer struct {
	log *logging.Logger
	dir string
}

func New(log *logging.Logger, dir string) *Synthesizer {
	return &Synthesizer{log: log, dir: dir}
}

// CafeNoise renders filtered brown noise that reads as cafe room tone.
func (s *Synthesizer) CafeNoise(ctx context.Context, duration float64, outPath string) error {
	src := fmt.Sprintf("anoisesrc=d=%.2f:c=brown:r=44100:a=0.3", duration)
	return video.RunFFmpeg(ctx, s.log,
		"-f", "lavfi", "-i", src,
		"-af", "highpass=f=200,lowpass=f=3000,volume=0.4",
		outPath)
}

// CalmMusic renders a soft A-major chord pad.
func (s *Synthesizer) CalmMusic(ctx context.Context, duration float64, outPath string) error {
	return video.RunFFmpeg(ctx, s.log,
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=440:duration=%.2f", duration),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=523:duration=%.2f", duration),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=659:duration=%.2f", duration),
		"-filter_complex", "amix=inputs=3:duration=first,volume=0.2,lowpass=f=2000",
		outPath)
}

// ProductMusic renders a brighter two-tone sting for product shots.
func (s *Synthesizer) ProductMusic(ctx context.Context, duration float64, outPath string) error {
	return video.RunFFmpeg(ctx, s.log,
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=880:duration=%.2f", duration),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=1046:duration=%.2f", duration),
		"-filter_complex", "amix=inputs=2:duration=first,volume=0.3,highpass=f=500",
		outPath)
}

// BuildTimeline synthesizes one audio segment per scene and concatenates
// them into a single track matching the storyboard durations.
func (s *Synthesizer) BuildTimeline(ctx context.Context, scenes []model.Scene, outPath string) error {
	if len(scenes) == 0 {
		return fmt.Errorf("no scenes to score")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	segments := make([]string, 0, len(scenes))
	for _, sc := range scenes {
		segPath := filepath.Join(s.dir, fmt.Sprintf("seg_%02d.wav", sc.Number))
		var err error
		switch sc.AudioType {
		case model.AudioCafe:
			err = s.CafeNoise(ctx, sc.Duration, segPath)
		case model.AudioProduct:
			err = s.ProductMusic(ctx, sc.Duration, segPath)
		default:
			err = s.CalmMusic(ctx, sc.Duration, segPath)
		}
		if err != nil {
			return fmt.Errorf("synthesize scene %d (%s): %w", sc.Number, sc.AudioType, err)
		}
		s.log.Infof("audio: ✓ scene %d %s segment (%.1fs)", sc.Number, sc.AudioType, sc.Duration)
		segments = append(segments, segPath)
	}

	args := make([]string, 0, len(segments)*2+6)
	for _, seg := range segments {
		args = append(args, "-i", seg)
	}
	args = append(args, "-filter_complex", concatFilter(len(segments)), "-map", "[out]", outPath)
	if err := video.RunFFmpeg(ctx, s.log, args...); err != nil {
		return fmt.Errorf("concat audio segments: %w", err)
	}

	for _, seg := range segments {
		os.Remove(seg)
	}
	s.log.Infof("audio: ✓ timeline written to %s", outPath)
	return nil
}

// AddFades applies a fade-in at the start and a fade-out at the tail.
func (s *Synthesizer) AddFades(ctx context.Context, inPath, outPath string) error {
	fadeOutStart := 58.0
	if dur, err := video.ProbeDuration(ctx, inPath); err == nil && dur > 2 {
		fadeOutStart = dur - 2
	}
	filter := fmt.Sprintf("afade=t=in:st=0:d=1,afade=t=out:st=%.2f:d=2", fadeOutStart)
	if err := video.RunFFmpeg(ctx, s.log, "-i", inPath, "-af", filter, outPath); err != nil {
		return fmt.Errorf("audio fades: %w", err)
	}
	return nil
}

// concatFilter builds the filter_complex graph joining n audio inputs.
func concatFilter(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:a]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=0:a=1[out]", n)
	return b.String()
}
