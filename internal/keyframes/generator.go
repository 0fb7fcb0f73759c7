package keyframes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ad-video-gen/internal"
	"ad-video-gen/internal/ark"
	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

// placeholderLimit: anything smaller than this is a placeholder artifact
// written after a failed generation, not a real image.
const placeholderLimit = 1000

type Generator struct {
	cfg internal.Config
	ark *ark.Client
	log *logging.Logger
}

func NewGenerator(cfg internal.Config, arkc *ark.Client, log *logging.Logger) *Generator {
	return &Generator{cfg: cfg, ark: arkc, log: log}
}

// GenerateAll produces one keyframe image per scene under dir. The first
// successfully generated image becomes the style reference for all middle
// scenes. Failures degrade to placeholder files so later stages can skip
// the scene instead of aborting the run.
func (g *Generator) GenerateAll(ctx context.Context, scenes []model.Scene, dir string) ([]model.Keyframe, error) {
	frames := make([]model.Keyframe, 0, len(scenes))
	var reference []byte

	for i, scene := range scenes {
		prompt := enhancePrompt(scene.VisualDescription, i, len(scenes))
		g.log.Infof("keyframes: scene %d: %s", scene.Number, describePosition(i, len(scenes)))

		req := ark.ImageRequest{
			Model:  g.cfg.ImageModel,
			Prompt: prompt,
			Size:   g.cfg.ImageSize,
		}
		if i > 0 && reference != nil {
			req.Reference = reference
			g.log.Infof("keyframes: scene %d uses the reference image", scene.Number)
		}

		path := filepath.Join(dir, fmt.Sprintf("scene_%02d.png", scene.Number))
		frame := model.Keyframe{Scene: scene.Number, Path: path}

		data, err := g.ark.GenerateImage(ctx, req)
		if err != nil {
			g.log.Errorf("keyframes: scene %d generation failed: %v", scene.Number, err)
			if werr := writePlaceholder(dir, scene.Number, prompt, err); werr != nil {
				return nil, werr
			}
			frame.Placeholder = true
			frames = append(frames, frame)
		} else {
			if werr := os.WriteFile(path, data, 0o644); werr != nil {
				return nil, fmt.Errorf("write keyframe %d: %w", scene.Number, werr)
			}
			g.log.Infof("keyframes: ✓ scene %d saved (%d bytes)", scene.Number, len(data))
			frames = append(frames, frame)

			if reference == nil && len(data) > placeholderLimit {
				reference = data
				g.log.Infof("keyframes: scene %d set as style reference", scene.Number)
			}
		}

		if i < len(scenes)-1 && g.cfg.ImagePause > 0 {
			select {
			case <-ctx.Done():
				return frames, ctx.Err()
			case <-time.After(g.cfg.ImagePause):
			}
		}
	}

	g.log.Infof("keyframes: all scenes processed (%d images)", len(frames))
	return frames, nil
}

func enhancePrompt(visual string, index, total int) string {
	switch {
	case index == 0:
		return "High quality commercial photography, cinematic lighting, 4K resolution. " + visual
	case index == total-1:
		return "Professional product photography, studio lighting, clean background, 4K. " + visual
	default:
		return "High quality commercial photography, consistent style, cinematic lighting. Same person as reference image. " + visual
	}
}

func describePosition(index, total int) string {
	switch {
	case index == 0:
		return "first frame - establishing style"
	case index == total-1:
		return "last frame - product closeup"
	default:
		return "middle scene (using reference)"
	}
}

// writePlaceholder leaves a marker image plus a prompt dump so a failed
// scene can be regenerated by hand.
func writePlaceholder(dir string, sceneNum int, prompt string, cause error) error {
	imagePath := filepath.Join(dir, fmt.Sprintf("scene_%02d.png", sceneNum))
	promptPath := filepath.Join(dir, fmt.Sprintf("scene_%02d_prompt.txt", sceneNum))

	note := fmt.Sprintf("Scene %d prompt:\n\n%s\n\nError: %v\n", sceneNum, prompt, cause)
	if err := os.WriteFile(promptPath, []byte(note), 0o644); err != nil {
		return fmt.Errorf("write prompt placeholder: %w", err)
	}
	marker := fmt.Sprintf("Placeholder for scene %d", sceneNum)
	if err := os.WriteFile(imagePath, []byte(marker), 0o644); err != nil {
		return fmt.Errorf("write image placeholder: %w", err)
	}
	return nil
}

// IsPlaceholderFile reports whether path holds a placeholder artifact
// rather than real media.
func IsPlaceholderFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Size() < placeholderLimit
}
