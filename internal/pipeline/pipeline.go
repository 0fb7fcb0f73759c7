// Package pipeline runs the eight stages of the ad generation flow in
// order: storyboard, keyframes, consistency edit, clips, color grade,
// audio, assembly and publish.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ad-video-gen/internal"
	"ad-video-gen/internal/ai"
	"ad-video-gen/internal/ark"
	"ad-video-gen/internal/audio"
	"ad-video-gen/internal/clips"
	"ad-video-gen/internal/keyframes"
	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
	"ad-video-gen/internal/publish"
	"ad-video-gen/internal/s3"
	"ad-video-gen/internal/video"
)

// Workspace maps the flat-file output layout of one run.
type Workspace struct {
	Root          string
	StoryboardDir string
	ImagesDir     string
	ClipsDir      string
	FinalDir      string
	AudioDir      string
	GradeTempDir  string
}

func NewWorkspace(root string) Workspace {
	return Workspace{
		Root:          root,
		StoryboardDir: filepath.Join(root, "01_storyboard"),
		ImagesDir:     filepath.Join(root, "02_images"),
		ClipsDir:      filepath.Join(root, "03_video_clips"),
		FinalDir:      filepath.Join(root, "04_final"),
		AudioDir:      filepath.Join(root, "audio"),
		GradeTempDir:  filepath.Join(root, "04_final", "temp_color_match"),
	}
}

func (w Workspace) EnsureDirs() error {
	for _, dir := range []string{w.StoryboardDir, w.ImagesDir, w.ClipsDir, w.FinalDir, w.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

type Pipeline struct {
	cfg internal.Config
	log *logging.Logger
	ws  Workspace
}

func New(cfg internal.Config, log *logging.Logger) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		log: log,
		ws:  NewWorkspace(cfg.OutputDir),
	}
}

// Run executes the whole flow and returns the path of the best finished
// video. Placeholder scenes degrade the output but do not abort the run.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	if err := p.ws.EnsureDirs(); err != nil {
		return "", err
	}

	manifest := model.RunManifest{
		Brand:        p.cfg.BrandName,
		CreatedAt:    time.Now().UTC(),
		StageSeconds: make(map[string]float64),
	}

	story, err := os.ReadFile(p.cfg.StoryPath)
	if err != nil {
		return "", fmt.Errorf("read story file: %w", err)
	}

	arkClient := ark.New(p.cfg, p.log)

	// Stage 1: storyboard.
	p.log.Infof("pipeline: [1/8] generating storyboard")
	stageStart := time.Now()
	sg := ai.NewStoryboardGenerator(p.cfg.GeminiAPIKey, p.cfg.StoryboardModel, p.log)
	scenes, err := sg.Generate(ctx, string(story))
	if err != nil {
		return "", fmt.Errorf("storyboard stage: %w", err)
	}
	jsonPath := filepath.Join(p.ws.StoryboardDir, "storyboard.json")
	readablePath := filepath.Join(p.ws.StoryboardDir, "storyboard_readable.txt")
	if err := ai.SaveStoryboard(scenes, jsonPath, readablePath); err != nil {
		return "", fmt.Errorf("save storyboard: %w", err)
	}
	manifest.Scenes = scenes
	manifest.StageSeconds["storyboard"] = time.Since(stageStart).Seconds()
	p.log.Infof("pipeline: ✓ %d scenes, %.0fs total", len(scenes), model.TotalDuration(scenes))

	// Stage 2: keyframe images.
	p.log.Infof("pipeline: [2/8] generating keyframes")
	stageStart = time.Now()
	kg := keyframes.NewGenerator(p.cfg, arkClient, p.log)
	frames, err := kg.GenerateAll(ctx, scenes, p.ws.ImagesDir)
	if err != nil {
		return "", fmt.Errorf("keyframe stage: %w", err)
	}
	manifest.StageSeconds["keyframes"] = time.Since(stageStart).Seconds()

	// Stage 3: consistency edit.
	p.log.Infof("pipeline: [3/8] editing keyframes for consistency")
	stageStart = time.Now()
	editor := keyframes.NewEditor(p.cfg, arkClient, p.log)
	frames, err = editor.ProcessAll(ctx, scenes, frames)
	if err != nil {
		return "", fmt.Errorf("consistency stage: %w", err)
	}
	manifest.Keyframes = frames
	manifest.StageSeconds["consistency"] = time.Since(stageStart).Seconds()

	// Stage 4: image-to-video clips.
	p.log.Infof("pipeline: [4/8] generating video clips")
	stageStart = time.Now()
	cg := clips.NewGenerator(p.cfg, arkClient, p.log)
	clipList, err := cg.GenerateAll(ctx, scenes, frames, p.ws.ClipsDir)
	if err != nil {
		return "", fmt.Errorf("clip stage: %w", err)
	}
	manifest.StageSeconds["clips"] = time.Since(stageStart).Seconds()

	// Stage 5: color matching.
	p.log.Infof("pipeline: [5/8] color matching clips")
	stageStart = time.Now()
	grader := video.NewGrader(p.log, p.ws.GradeTempDir)
	clipList, grades, err := grader.GradeAll(ctx, clipList)
	if err != nil {
		return "", fmt.Errorf("grading stage: %w", err)
	}
	manifest.Clips = clipList
	manifest.Grades = grades
	manifest.StageSeconds["grade"] = time.Since(stageStart).Seconds()

	// Stage 6: soundtrack.
	p.log.Infof("pipeline: [6/8] synthesizing soundtrack")
	stageStart = time.Now()
	synth := audio.New(p.log, p.ws.AudioDir)
	rawAudio := filepath.Join(p.ws.AudioDir, "timeline_raw.wav")
	finalAudio := filepath.Join(p.ws.AudioDir, "background_audio.wav")
	if err := synth.BuildTimeline(ctx, scenes, rawAudio); err != nil {
		return "", fmt.Errorf("audio stage: %w", err)
	}
	if err := synth.AddFades(ctx, rawAudio, finalAudio); err != nil {
		return "", fmt.Errorf("audio fades: %w", err)
	}
	os.Remove(rawAudio)
	manifest.AudioPath = finalAudio
	manifest.StageSeconds["audio"] = time.Since(stageStart).Seconds()

	// Stage 7: assembly and brand overlay.
	p.log.Infof("pipeline: [7/8] assembling final video")
	stageStart = time.Now()
	asm := video.NewAssembler(p.log)
	mergedPath := filepath.Join(p.ws.FinalDir, "merged_video_silent.mp4")
	withAudioPath := filepath.Join(p.ws.FinalDir, "video_with_audio.mp4")
	finalPath := filepath.Join(p.ws.FinalDir, "final_with_text.mp4")
	if err := asm.MergeClips(ctx, clipList, mergedPath); err != nil {
		return "", fmt.Errorf("assembly stage: %w", err)
	}
	manifest.MergedPath = mergedPath

	best := mergedPath
	if err := asm.MuxAudio(ctx, mergedPath, finalAudio, withAudioPath); err != nil {
		p.log.Warnf("pipeline: audio mux failed, continuing with silent video: %v", err)
	} else {
		manifest.WithAudioPath = withAudioPath
		best = withAudioPath
	}

	if err := video.AddBrandOverlay(ctx, p.log, best, finalPath, p.cfg.BrandName); err != nil {
		p.log.Warnf("pipeline: brand overlay failed, continuing without text: %v", err)
	} else {
		manifest.FinalPath = finalPath
		best = finalPath
	}

	compatPath := strings.TrimSuffix(best, ".mp4") + "_compatible.mp4"
	if err := asm.ConvertCompat(ctx, best, compatPath); err != nil {
		p.log.Warnf("pipeline: compat re-encode failed: %v", err)
	} else {
		manifest.CompatPath = compatPath
	}
	manifest.StageSeconds["assemble"] = time.Since(stageStart).Seconds()

	// Stage 8: publish. Never fails the run.
	p.log.Infof("pipeline: [8/8] publishing")
	stageStart = time.Now()
	p.publishResults(ctx, &manifest, best)
	manifest.StageSeconds["publish"] = time.Since(stageStart).Seconds()

	if err := p.writeManifest(manifest); err != nil {
		p.log.Warnf("pipeline: manifest write failed: %v", err)
	}

	return best, nil
}

func (p *Pipeline) publishResults(ctx context.Context, manifest *model.RunManifest, videoPath string) {
	if p.cfg.S3Configured() {
		p.mirrorToS3(ctx, manifest, videoPath)
	}

	mgr := publish.NewManager(p.cfg, p.log)
	platforms := mgr.AvailablePlatforms()
	if len(platforms) == 0 {
		p.log.Infof("publish: no destinations configured, skipping")
		return
	}

	req := &publish.Request{
		VideoPath:   videoPath,
		Title:       fmt.Sprintf("%s ad (%s)", p.cfg.BrandName, manifest.CreatedAt.Format("2006-01-02")),
		Description: fmt.Sprintf("One-minute ad for %s.", p.cfg.BrandName),
		Privacy:     p.cfg.YouTubePrivacy,
	}
	mgr.PublishAll(ctx, req)
}

func (p *Pipeline) mirrorToS3(ctx context.Context, manifest *model.RunManifest, videoPath string) {
	client, err := s3.New(p.cfg)
	if err != nil {
		p.log.Warnf("publish: s3 init failed: %v", err)
		return
	}

	run := manifest.CreatedAt.Format("20060102_150405")
	prefix := p.cfg.PublishPrefix + run + "/"

	if err := client.PutFile(ctx, prefix+filepath.Base(videoPath), videoPath); err != nil {
		p.log.Warnf("publish: ✗ video upload failed: %v", err)
	} else {
		p.log.Infof("publish: ✓ video mirrored to s3://%s/%s", p.cfg.S3Bucket, prefix+filepath.Base(videoPath))
	}

	if b, err := json.MarshalIndent(manifest.Scenes, "", "  "); err == nil {
		if err := client.PutBytes(ctx, prefix+"storyboard.json", b, "application/json"); err != nil {
			p.log.Warnf("publish: ✗ storyboard upload failed: %v", err)
		}
	}

	if err := client.WriteJSON(ctx, prefix+"manifest.json", manifest); err != nil {
		p.log.Warnf("publish: ✗ manifest upload failed: %v", err)
	}
}

func (p *Pipeline) writeManifest(manifest model.RunManifest) error {
	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.ws.Root, "manifest.json"), b, 0o644)
}
