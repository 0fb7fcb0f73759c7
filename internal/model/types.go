package model

import "time"

type AudioKind string

const (
	AudioCafe    AudioKind = "cafe"
	AudioCalm    AudioKind = "calm"
	AudioProduct AudioKind = "product"
)

// ValidAudioKind reports whether k is one of the three soundtrack types.
func ValidAudioKind(k AudioKind) bool {
	return k == AudioCafe || k == AudioCalm || k == AudioProduct
}

// Scene is one storyboard entry driving image and clip generation.
type Scene struct {
	Number            int       `json:"scene_number"`
	Duration          float64   `json:"duration"`
	VisualDescription string    `json:"visual_description"`
	Action            string    `json:"action"`
	Dialogue          string    `json:"dialogue"`
	CameraAngle       string    `json:"camera_angle"`
	AudioType         AudioKind `json:"audio_type"`
}

// Normalize repairs fields the model is allowed to get slightly wrong:
// 1-based numbering by position, default 8s duration, default calm audio.
func Normalize(scenes []Scene) []Scene {
	out := make([]Scene, len(scenes))
	copy(out, scenes)
	for i := range out {
		out[i].Number = i + 1
		if out[i].Duration <= 0 {
			out[i].Duration = 8
		}
		if !ValidAudioKind(out[i].AudioType) {
			out[i].AudioType = AudioCalm
		}
	}
	return out
}

// TotalDuration is the sum of scene durations in seconds.
func TotalDuration(scenes []Scene) float64 {
	var total float64
	for _, s := range scenes {
		total += s.Duration
	}
	return total
}

// Keyframe is the generated still image for one scene.
type Keyframe struct {
	Scene       int    `json:"scene"`
	Path        string `json:"path"`
	Placeholder bool   `json:"placeholder"`
	EditedPath  string `json:"edited_path,omitempty"`
	ImageHash   uint64 `json:"image_hash,omitempty"`
}

// BestPath returns the consistency-edited image when one exists.
func (k Keyframe) BestPath() string {
	if k.EditedPath != "" {
		return k.EditedPath
	}
	return k.Path
}

// Clip is the generated video segment for one scene.
type Clip struct {
	Scene       int    `json:"scene"`
	Path        string `json:"path"`
	Placeholder bool   `json:"placeholder"`
	GradedPath  string `json:"graded_path,omitempty"`
}

// BestPath returns the color-graded clip when one exists.
func (c Clip) BestPath() string {
	if c.GradedPath != "" {
		return c.GradedPath
	}
	return c.Path
}

// GradeParams are the derived color-matching filter parameters for a clip.
type GradeParams struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	RedShadow  float64 `json:"red_shadow"`
	BlueShadow float64 `json:"blue_shadow"`
	Fallback   bool    `json:"fallback"`
}

// RunManifest is the flat-file record of one pipeline invocation.
type RunManifest struct {
	Brand     string    `json:"brand"`
	CreatedAt time.Time `json:"created_at"`

	Scenes    []Scene    `json:"scenes"`
	Keyframes []Keyframe `json:"keyframes"`
	Clips     []Clip     `json:"clips"`

	// Grades maps scene number to the parameters applied during color
	// matching. The reference clip carries the normalization fallback.
	Grades map[int]GradeParams `json:"grades,omitempty"`

	AudioPath     string `json:"audio_path,omitempty"`
	MergedPath    string `json:"merged_path,omitempty"`
	WithAudioPath string `json:"with_audio_path,omitempty"`
	FinalPath     string `json:"final_path,omitempty"`
	CompatPath    string `json:"compat_path,omitempty"`

	// StageSeconds records wall time per stage, keyed by stage name.
	StageSeconds map[string]float64 `json:"stage_seconds,omitempty"`
}
