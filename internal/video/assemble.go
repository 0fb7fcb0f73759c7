package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

// Assembler joins the graded clips into one video, muxes the soundtrack and
// produces the compatibility re-encode.
type Assembler struct {
	log *logging.Logger
}

func NewAssembler(log *logging.Logger) *Assembler {
	return &Assembler{log: log}
}

// WriteConcatList writes a concat-demuxer list for every usable clip.
// Returns how many clips made the list.
func WriteConcatList(listPath string, clips []model.Clip) (int, error) {
	var b strings.Builder
	count := 0
	for _, c := range clips {
		path := c.BestPath()
		if c.Placeholder || isPlaceholder(path) {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return 0, fmt.Errorf("resolve clip path: %w", err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("no usable clips to merge")
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write concat list: %w", err)
	}
	return count, nil
}

// MergeClips concatenates the clips into outPath without re-encoding.
func (a *Assembler) MergeClips(ctx context.Context, clips []model.Clip, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	count, err := WriteConcatList(listPath, clips)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	a.log.Infof("assemble: merging %d clips", count)
	if err := runFFmpeg(ctx, a.log, "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath); err != nil {
		return fmt.Errorf("merge clips: %w", err)
	}
	a.log.Infof("assemble: ✓ merged video written to %s", outPath)
	return nil
}

// MuxAudio combines the silent video with the synthesized soundtrack.
// -shortest trims the audio to the video length.
func (a *Assembler) MuxAudio(ctx context.Context, videoPath, audioPath, outPath string) error {
	err := runFFmpeg(ctx, a.log,
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outPath)
	if err != nil {
		return fmt.Errorf("mux audio: %w", err)
	}
	a.log.Infof("assemble: ✓ audio muxed into %s", outPath)
	return nil
}

// ConvertCompat re-encodes the final video with conservative settings so it
// plays in stock Windows and mobile players.
func (a *Assembler) ConvertCompat(ctx context.Context, inPath, outPath string) error {
	err := runFFmpeg(ctx, a.log,
		"-i", inPath,
		"-c:v", "libx264",
		"-profile:v", "baseline",
		"-level", "3.0",
		"-pix_fmt", "yuv420p",
		"-crf", "23",
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "48000",
		"-ac", "2",
		"-movflags", "+faststart",
		"-max_muxing_queue_size", "1024",
		outPath)
	if err != nil {
		return fmt.Errorf("compat re-encode: %w", err)
	}
	a.log.Infof("assemble: ✓ compatible version written to %s", outPath)
	return nil
}

// FindFinalCandidates returns the finished videos in dir, best first.
func FindFinalCandidates(dir string) []string {
	var found []string
	for _, name := range []string{"final_with_text.mp4", "video_with_audio.mp4", "merged_video_silent.mp4"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			found = append(found, path)
		}
	}
	return found
}
