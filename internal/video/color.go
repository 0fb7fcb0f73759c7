package video

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

// normalizeFilter is the static brightness/contrast normalization applied to
// the reference clip and to any clip whose statistics cannot be measured.
const normalizeFilter = "eq=brightness=0:contrast=1.1:saturation=1.0,curves=preset=lighter"

const fadeDuration = 0.5

// ClipStats are per-clip averages of the signalstats frame metadata.
// Y is luma (0-255), U/V are chroma planes centered on 128, Sat is
// saturation in chroma units.
type ClipStats struct {
	YAvg   float64
	UAvg   float64
	VAvg   float64
	SatAvg float64
	Frames int
}

// Grader implements the color-matching stage: every clip is graded toward
// the statistics of the reference (first real) clip, then fade-out
// transitions are applied between scenes.
type Grader struct {
	log     *logging.Logger
	tempDir string
}

func NewGrader(log *logging.Logger, tempDir string) *Grader {
	return &Grader{log: log, tempDir: tempDir}
}

// MeasureStats runs the clip through FFmpeg's signalstats filter and
// averages the per-frame metadata.
func (g *Grader) MeasureStats(ctx context.Context, clipPath string, sceneNum int) (ClipStats, error) {
	statsPath := filepath.Join(g.tempDir, fmt.Sprintf("stats_%02d.txt", sceneNum))
	defer os.Remove(statsPath)

	filter := fmt.Sprintf("signalstats,metadata=mode=print:file=%s", statsPath)
	if err := runFFmpeg(ctx, g.log, "-i", clipPath, "-vf", filter, "-f", "null", "-"); err != nil {
		return ClipStats{}, fmt.Errorf("signalstats for scene %d: %w", sceneNum, err)
	}

	f, err := os.Open(statsPath)
	if err != nil {
		return ClipStats{}, fmt.Errorf("open stats file: %w", err)
	}
	defer f.Close()

	stats, err := ParseSignalStats(f)
	if err != nil {
		return ClipStats{}, fmt.Errorf("parse stats for scene %d: %w", sceneNum, err)
	}
	return stats, nil
}

// ParseSignalStats reads metadata=print output and averages the YAVG, UAVG,
// VAVG and SATAVG values over all frames.
func ParseSignalStats(r io.Reader) (ClipStats, error) {
	var sums ClipStats
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, valText, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(valText), 64)
		if err != nil {
			continue
		}
		switch strings.TrimSpace(key) {
		case "lavfi.signalstats.YAVG":
			sums.YAvg += val
			sums.Frames++
		case "lavfi.signalstats.UAVG":
			sums.UAvg += val
		case "lavfi.signalstats.VAVG":
			sums.VAvg += val
		case "lavfi.signalstats.SATAVG":
			sums.SatAvg += val
		}
	}
	if err := scanner.Err(); err != nil {
		return ClipStats{}, err
	}
	if sums.Frames == 0 {
		return ClipStats{}, fmt.Errorf("no signalstats frames found")
	}
	n := float64(sums.Frames)
	return ClipStats{
		YAvg:   sums.YAvg / n,
		UAvg:   sums.UAvg / n,
		VAvg:   sums.VAvg / n,
		SatAvg: sums.SatAvg / n,
		Frames: sums.Frames,
	}, nil
}

// DeriveGrade computes eq/colorbalance parameters that move a clip's
// statistics toward the reference's. Offsets are clamped so a badly
// measured clip cannot be blown out.
func DeriveGrade(ref, clip ClipStats) model.GradeParams {
	p := model.GradeParams{Contrast: 1.05, Saturation: 1.0}

	// eq brightness is a -1..1 offset on normalized luma.
	p.Brightness = clamp((ref.YAvg-clip.YAvg)/255, -0.15, 0.15)

	if clip.SatAvg > 1 {
		p.Saturation = clamp(ref.SatAvg/clip.SatAvg, 0.85, 1.15)
	}

	// V carries the red-green axis, U the blue-yellow axis; both are
	// centered on 128 so the delta maps onto colorbalance shadow shifts.
	p.RedShadow = clamp((ref.VAvg-clip.VAvg)/128, -0.2, 0.2)
	p.BlueShadow = clamp((ref.UAvg-clip.UAvg)/128, -0.2, 0.2)

	return p
}

// FilterGraph renders the derived parameters as an FFmpeg -vf argument.
func FilterGraph(p model.GradeParams) string {
	if p.Fallback {
		return normalizeFilter
	}
	return fmt.Sprintf("eq=brightness=%.3f:contrast=%.2f:saturation=%.2f,colorbalance=rs=%.3f:bs=%.3f",
		p.Brightness, p.Contrast, p.Saturation, p.RedShadow, p.BlueShadow)
}

// GradeAll color-matches every clip against the first real clip and then
// applies fade-out transitions. Placeholder clips pass through untouched.
// Returns the updated clips and the per-scene parameters that were applied.
func (g *Grader) GradeAll(ctx context.Context, clipsIn []model.Clip) ([]model.Clip, map[int]model.GradeParams, error) {
	if err := os.MkdirAll(g.tempDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create grading dir: %w", err)
	}

	grades := make(map[int]model.GradeParams)
	out := make([]model.Clip, len(clipsIn))
	copy(out, clipsIn)

	// The first real clip is the reference: it is only normalized, every
	// other clip is matched to its measured statistics.
	refIdx := -1
	var refStats ClipStats
	for i, c := range out {
		if c.Placeholder || isPlaceholder(c.Path) {
			continue
		}
		stats, err := g.MeasureStats(ctx, c.Path, c.Scene)
		if err != nil {
			g.log.Warnf("grade: reference candidate scene %d not measurable: %v", c.Scene, err)
			continue
		}
		refIdx = i
		refStats = stats
		break
	}
	if refIdx < 0 {
		g.log.Warnf("grade: no measurable clips, skipping color matching")
		return out, grades, nil
	}
	g.log.Infof("grade: scene %d is the reference (YAVG=%.1f SATAVG=%.1f)", out[refIdx].Scene, refStats.YAvg, refStats.SatAvg)

	for i := range out {
		c := &out[i]
		if c.Placeholder || isPlaceholder(c.Path) {
			g.log.Infof("grade: scene %d skipped (placeholder)", c.Scene)
			continue
		}

		var params model.GradeParams
		if i == refIdx {
			params = model.GradeParams{Contrast: 1.1, Saturation: 1.0, Fallback: true}
		} else {
			stats, err := g.MeasureStats(ctx, c.Path, c.Scene)
			if err != nil {
				g.log.Warnf("grade: scene %d stats failed, using normalization fallback: %v", c.Scene, err)
				params = model.GradeParams{Contrast: 1.1, Saturation: 1.0, Fallback: true}
			} else {
				params = DeriveGrade(refStats, stats)
				g.log.Infof("grade: scene %d matched (brightness=%+.3f saturation=%.2f rs=%+.3f bs=%+.3f)",
					c.Scene, params.Brightness, params.Saturation, params.RedShadow, params.BlueShadow)
			}
		}

		gradedPath := filepath.Join(g.tempDir, fmt.Sprintf("matched_%02d.mp4", c.Scene))
		if err := runFFmpeg(ctx, g.log, "-i", c.Path, "-vf", FilterGraph(params), "-c:a", "copy", gradedPath); err != nil {
			g.log.Warnf("grade: scene %d grading failed, keeping original: %v", c.Scene, err)
			continue
		}
		c.GradedPath = gradedPath
		grades[c.Scene] = params
	}

	if err := g.smoothTransitions(ctx, out); err != nil {
		return out, grades, err
	}
	return out, grades, nil
}

// smoothTransitions adds a fade-out to the tail of every clip except the
// last so the concat cuts read as intentional transitions.
func (g *Grader) smoothTransitions(ctx context.Context, clipsIn []model.Clip) error {
	for i := range clipsIn {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := &clipsIn[i]
		if c.Placeholder || isPlaceholder(c.BestPath()) {
			continue
		}
		smoothedPath := filepath.Join(g.tempDir, fmt.Sprintf("smoothed_%02d.mp4", c.Scene))

		if i == len(clipsIn)-1 {
			if err := runFFmpeg(ctx, g.log, "-i", c.BestPath(), "-c", "copy", smoothedPath); err != nil {
				g.log.Warnf("grade: scene %d copy failed, keeping graded clip: %v", c.Scene, err)
				continue
			}
		} else {
			fadeStart := 7.5
			if dur, err := ProbeDuration(ctx, c.BestPath()); err == nil {
				fadeStart = dur - fadeDuration
				if fadeStart < 0 {
					fadeStart = 0
				}
			}
			fade := fmt.Sprintf("fade=t=out:st=%.2f:d=%.2f", fadeStart, fadeDuration)
			if err := runFFmpeg(ctx, g.log, "-i", c.BestPath(), "-vf", fade, "-c:a", "copy", smoothedPath); err != nil {
				g.log.Warnf("grade: scene %d fade failed, keeping graded clip: %v", c.Scene, err)
				continue
			}
		}
		c.GradedPath = smoothedPath
		g.log.Infof("grade: ✓ scene %d transition applied", c.Scene)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
