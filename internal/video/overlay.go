package video

import (
	"context"
	"fmt"
	"strings"

	"ad-video-gen/internal/logging"
)

const overlaySeconds = 5.0

// drawtextFilter builds the brand-name overlay: centered white text with a
// drop shadow that fades in at the start of the overlay window and back out
// over its last second.
func drawtextFilter(brand string, start, fade float64) string {
	// drawtext treats ' and : specially inside the text value.
	escaped := strings.NewReplacer(`'`, `\'`, `:`, `\:`).Replace(brand)
	end := start + overlaySeconds
	alpha := fmt.Sprintf("if(lt(t\\,%.2f)\\,0\\,if(lt(t\\,%.2f)\\,(t-%.2f)/%.2f\\,if(lt(t\\,%.2f)\\,1\\,(%.2f-t)/%.2f)))",
		start, start+fade, start, fade, end-fade, end, fade)
	return fmt.Sprintf(
		"drawtext=text='%s':fontsize=90:fontcolor=white:x=(w-text_w)/2:y=(h-text_h)/2:shadowcolor=black@0.8:shadowx=4:shadowy=4:alpha='%s'",
		escaped, alpha)
}

// AddBrandOverlay burns the brand name into the last seconds of the video.
func AddBrandOverlay(ctx context.Context, log *logging.Logger, inPath, outPath, brand string) error {
	start := 0.0
	if dur, err := ProbeDuration(ctx, inPath); err == nil {
		start = dur - overlaySeconds
		if start < 0 {
			start = 0
		}
	} else {
		log.Warnf("overlay: could not probe duration, overlaying from start: %v", err)
	}

	filter := drawtextFilter(brand, start, 1.0)
	if err := runFFmpeg(ctx, log, "-i", inPath, "-vf", filter, "-c:a", "copy", outPath); err != nil {
		return fmt.Errorf("brand overlay: %w", err)
	}
	log.Infof("overlay: ✓ brand text added from %.1fs", start)
	return nil
}
