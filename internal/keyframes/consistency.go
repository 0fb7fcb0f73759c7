package keyframes

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vitali-fedulov/imagehash2"
	"github.com/vitali-fedulov/images4"

	"ad-video-gen/internal"
	"ad-video-gen/internal/ark"
	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

const (
	// imagehash2 parameters for the duplicate pre-filter.
	hashNumBuckets = 4
	hashEpsilon    = 0.25
)

// Editor runs the keyframe consistency pass: it measures how far each frame
// drifted from the reference (scene 1) and sends drifting frames through the
// Seededit model with the reference image attached.
type Editor struct {
	cfg internal.Config
	ark *ark.Client
	log *logging.Logger
}

func NewEditor(cfg internal.Config, arkc *ark.Client, log *logging.Logger) *Editor {
	return &Editor{cfg: cfg, ark: arkc, log: log}
}

// ProcessAll edits keyframes in place for visual consistency and returns the
// updated slice. The first non-placeholder frame is the reference and is
// never edited. Edit failures keep the original frame.
func (e *Editor) ProcessAll(ctx context.Context, scenes []model.Scene, frames []model.Keyframe) ([]model.Keyframe, error) {
	refIdx := -1
	var refData []byte
	var refIcon images4.IconT

	for i, f := range frames {
		if f.Placeholder {
			continue
		}
		data, err := os.ReadFile(f.Path)
		if err != nil || len(data) < placeholderLimit {
			continue
		}
		icon, err := decodeIcon(data)
		if err != nil {
			e.log.Warnf("consistency: decode scene %d failed: %v", f.Scene, err)
			continue
		}
		refIdx = i
		refData = data
		refIcon = icon
		frames[i].ImageHash = imagehash2.CentralHash9(icon, hashEpsilon, hashNumBuckets)
		e.log.Infof("consistency: scene %d set as reference image", f.Scene)
		break
	}
	if refIdx < 0 {
		e.log.Warnf("consistency: no usable reference frame, skipping pass")
		return frames, nil
	}

	seenHashes := map[uint64]int{frames[refIdx].ImageHash: frames[refIdx].Scene}

	for i := range frames {
		if i == refIdx || frames[i].Placeholder {
			continue
		}
		scene := scenes[i]

		data, err := os.ReadFile(frames[i].Path)
		if err != nil || len(data) < placeholderLimit {
			e.log.Infof("consistency: scene %d skipped (placeholder)", frames[i].Scene)
			continue
		}

		styleMatches := false
		icon, err := decodeIcon(data)
		if err != nil {
			e.log.Warnf("consistency: decode scene %d failed: %v", frames[i].Scene, err)
		} else {
			frames[i].ImageHash = imagehash2.CentralHash9(icon, hashEpsilon, hashNumBuckets)
			styleMatches = images4.Similar(refIcon, icon)

			// Pre-filter with the hash table before accusing two scenes of
			// being identical renders.
			for _, h := range imagehash2.HashSet9(icon, hashEpsilon, hashNumBuckets) {
				if prior, ok := seenHashes[h]; ok && prior != frames[i].Scene {
					e.log.Warnf("consistency: scene %d looks identical to scene %d", frames[i].Scene, prior)
					break
				}
			}
			seenHashes[frames[i].ImageHash] = frames[i].Scene
		}

		edits := BuildEditInstructions(scene, i == len(frames)-1, styleMatches)
		if len(edits) == 0 {
			e.log.Infof("consistency: scene %d needs no edits", frames[i].Scene)
			continue
		}

		instruction := CombineInstructions(edits)
		e.log.Infof("consistency: editing scene %d (%d items)", frames[i].Scene, len(edits))

		edited, err := e.ark.GenerateImage(ctx, ark.ImageRequest{
			Model:     e.cfg.EditModel,
			Prompt:    instruction,
			Size:      e.cfg.ImageSize,
			Image:     data,
			Reference: refData,
		})
		if err != nil {
			e.log.Warnf("consistency: edit of scene %d failed, keeping original: %v", frames[i].Scene, err)
			continue
		}

		editedPath := editedName(frames[i].Path)
		if err := os.WriteFile(editedPath, edited, 0o644); err != nil {
			return frames, fmt.Errorf("write edited keyframe %d: %w", frames[i].Scene, err)
		}
		frames[i].EditedPath = editedPath
		e.log.Infof("consistency: ✓ scene %d edited", frames[i].Scene)

		if e.cfg.ImagePause > 0 {
			select {
			case <-ctx.Done():
				return frames, ctx.Err()
			case <-time.After(e.cfg.ImagePause):
			}
		}
	}

	return frames, nil
}

// BuildEditInstructions derives the edit list for one scene the same way a
// human retoucher would review it: stray product copies, drifted style,
// character mismatch, and a product-focus instruction for the closing scene.
func BuildEditInstructions(scene model.Scene, isLast, styleMatches bool) []string {
	var edits []string

	visual := strings.ToLower(scene.VisualDescription)
	if strings.Contains(visual, "wearing headphones") || strings.Contains(visual, "with headphones") {
		edits = append(edits, "Remove extra headphones from table or other locations, keep only worn headphones")
	}
	if !styleMatches {
		edits = append(edits, "Match background style, lighting, and color tone of first frame")
	}
	edits = append(edits, "Ensure character appearance and clothing match reference image")
	if isLast {
		edits = append(edits, "Clear product closeup, highlight brand logo, professional lighting")
	}
	return edits
}

// CombineInstructions folds the edit list into a single Seededit prompt.
func CombineInstructions(edits []string) string {
	return "Maintain consistent style, lighting, and color tone with reference image. " +
		strings.Join(edits, " ") +
		" Ensure character appearance and clothing exactly match reference image."
}

func editedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_edited" + ext
}

func decodeIcon(data []byte) (images4.IconT, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return images4.IconT{}, fmt.Errorf("decode image: %w", err)
	}
	return images4.Icon(img), nil
}
