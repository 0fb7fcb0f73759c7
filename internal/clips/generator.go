package clips

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mowshon/moviego"

	"ad-video-gen/internal"
	"ad-video-gen/internal/ark"
	"ad-video-gen/internal/keyframes"
	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

// maxClipSeconds is the longest segment the i2v model accepts.
const maxClipSeconds = 10

type Generator struct {
	cfg internal.Config
	ark *ark.Client
	log *logging.Logger
}

func NewGenerator(cfg internal.Config, arkc *ark.Client, log *logging.Logger) *Generator {
	return &Generator{cfg: cfg, ark: arkc, log: log}
}

// GenerateAll turns each keyframe into a video clip under dir. Each scene
// submits one task and blocks on the poll loop; placeholder keyframes yield
// placeholder clips without touching the API.
func (g *Generator) GenerateAll(ctx context.Context, scenes []model.Scene, frames []model.Keyframe, dir string) ([]model.Clip, error) {
	if len(frames) != len(scenes) {
		return nil, fmt.Errorf("clips: %d frames for %d scenes", len(frames), len(scenes))
	}

	out := make([]model.Clip, 0, len(scenes))
	for i, scene := range scenes {
		frame := frames[i]
		path := filepath.Join(dir, fmt.Sprintf("clip_%02d.mp4", scene.Number))
		clip := model.Clip{Scene: scene.Number, Path: path}

		g.log.Infof("clips: scene %d: generating %.0fs video", scene.Number, scene.Duration)

		imageData, err := os.ReadFile(frame.BestPath())
		if err != nil || keyframes.IsPlaceholderFile(frame.BestPath()) {
			g.log.Warnf("clips: scene %d keyframe is a placeholder, skipping generation", scene.Number)
			if werr := writeClipPlaceholder(dir, scene, frame.BestPath(), fmt.Errorf("keyframe unavailable")); werr != nil {
				return nil, werr
			}
			clip.Placeholder = true
			out = append(out, clip)
			continue
		}

		data, err := g.generateOne(ctx, scene, imageData)
		if err != nil {
			g.log.Errorf("clips: scene %d generation failed: %v", scene.Number, err)
			if werr := writeClipPlaceholder(dir, scene, frame.BestPath(), err); werr != nil {
				return nil, werr
			}
			clip.Placeholder = true
			out = append(out, clip)
		} else {
			if werr := os.WriteFile(path, data, 0o644); werr != nil {
				return nil, fmt.Errorf("write clip %d: %w", scene.Number, werr)
			}
			if verr := validateClip(path); verr != nil {
				g.log.Warnf("clips: scene %d produced an unreadable clip: %v", scene.Number, verr)
				clip.Placeholder = true
			} else {
				g.log.Infof("clips: ✓ scene %d saved (%d bytes)", scene.Number, len(data))
			}
			out = append(out, clip)
		}

		if i < len(scenes)-1 && g.cfg.ClipPause > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(g.cfg.ClipPause):
			}
		}
	}

	g.log.Infof("clips: all scenes processed (%d clips)", len(out))
	return out, nil
}

func (g *Generator) generateOne(ctx context.Context, scene model.Scene, firstFrame []byte) ([]byte, error) {
	text := MotionPrompt(scene.Action, scene.Duration)

	taskID, err := g.ark.CreateVideoTask(ctx, g.cfg.VideoModel, firstFrame, text)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	g.log.Infof("clips: scene %d task created: %s", scene.Number, taskID)

	return g.ark.WaitForVideo(ctx, taskID, g.cfg.PollInterval, g.cfg.PollAttempts)
}

// MotionPrompt renders the seedance text content: the motion description
// plus the fixed generation switches.
func MotionPrompt(action string, duration float64) string {
	d := int(duration)
	if d > maxClipSeconds {
		d = maxClipSeconds
	}
	if d <= 0 {
		d = maxClipSeconds
	}
	return fmt.Sprintf("%s --duration %d --ratio 16:9 --resolution 720p --fps 24 --watermark false", action, d)
}

// validateClip loads the downloaded file to confirm it is decodable video.
// moviego shells out to ffprobe underneath and panics on garbage input, so
// the load is wrapped.
func validateClip(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clip load panicked: %v", r)
		}
	}()
	if _, err = moviego.Load(path); err != nil {
		return fmt.Errorf("clip load: %w", err)
	}
	return nil
}

func writeClipPlaceholder(dir string, scene model.Scene, imagePath string, cause error) error {
	clipPath := filepath.Join(dir, fmt.Sprintf("clip_%02d.mp4", scene.Number))
	motionPath := filepath.Join(dir, fmt.Sprintf("clip_%02d_motion.txt", scene.Number))

	note := fmt.Sprintf("Scene %d video parameters:\n\nInput image: %s\nDuration: %.0fs\nMotion prompt: %s\n\nError: %v\n",
		scene.Number, imagePath, scene.Duration, scene.Action, cause)
	if err := os.WriteFile(motionPath, []byte(note), 0o644); err != nil {
		return fmt.Errorf("write motion placeholder: %w", err)
	}
	marker := fmt.Sprintf("Placeholder for video clip %d", scene.Number)
	if err := os.WriteFile(clipPath, []byte(marker), 0o644); err != nil {
		return fmt.Errorf("write clip placeholder: %w", err)
	}
	return nil
}
