package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"google.golang.org/genai"

	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/model"
)

type StoryboardGenerator struct {
	apiKey string
	model  string
	log    *logging.Logger
}

func NewStoryboardGenerator(apiKey, modelName string, log *logging.Logger) *StoryboardGenerator {
	return &StoryboardGenerator{apiKey: apiKey, model: modelName, log: log}
}

const storyboardPromptTemplate = `Based on the following product advertisement story, create a detailed storyboard for a 60-second video.

Requirements:
1. Break the story into 6-8 scenes, each 8-10 seconds
2. Each scene must include:
   - scene_number: Scene number
   - duration: Duration in seconds
   - visual_description: Detailed visual description with character appearance, environment, lighting, product display angle, color tone
   - action: Specific action description for video animation
   - dialogue: Dialogue or voiceover text if any
   - camera_angle: Camera angle
   - audio_type: Type of audio for this scene, must be one of: "cafe", "calm", "product"
     * "cafe": Use for scenes before wearing headphones (noisy cafe ambience)
     * "calm": Use for scenes with headphones on (calm music)
     * "product": Use for final product showcase scenes (upbeat music)

3. Special attention:
   - First scene: Establish character and product style with detailed description, audio_type should be "cafe"
   - Middle scenes with headphones: audio_type should be "calm"
   - Last scene: Product close-up highlighting brand logo, audio_type should be "product"
   - Keep character appearance and clothing consistent across all scenes
   - Ensure logical continuity between scenes

4. Output format: Pure JSON array only

Original story:
%s

Output JSON storyboard.`

// Generate asks the model for a scene breakdown of the story and returns the
// normalized storyboard.
func (sg *StoryboardGenerator) Generate(ctx context.Context, story string) ([]model.Scene, error) {
	if sg.apiKey == "" {
		return nil, fmt.Errorf("storyboard: api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  sg.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	prompt := fmt.Sprintf(storyboardPromptTemplate, story)

	sg.log.Infof("storyboard: generating scene breakdown (model=%s)", sg.model)
	resp, err := client.Models.GenerateContent(ctx, sg.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	scenes, err := ParseStoryboard(resp.Text())
	if err != nil {
		return nil, err
	}
	sg.log.Infof("storyboard: ✓ generated %d scenes (total %.0fs)", len(scenes), model.TotalDuration(scenes))
	return scenes, nil
}

// ParseStoryboard extracts the JSON scene array from a model response.
// The response may wrap the array in markdown fences or in a {"scenes": [...]}
// envelope; both forms are accepted.
func ParseStoryboard(response string) ([]model.Scene, error) {
	jsonText := StripCodeFence(response)

	var scenes []model.Scene
	if err := json.Unmarshal([]byte(jsonText), &scenes); err != nil {
		var envelope struct {
			Scenes []model.Scene `json:"scenes"`
		}
		if err2 := json.Unmarshal([]byte(jsonText), &envelope); err2 != nil || len(envelope.Scenes) == 0 {
			return nil, fmt.Errorf("parse storyboard json: %w", err)
		}
		scenes = envelope.Scenes
	}

	if len(scenes) == 0 {
		return nil, fmt.Errorf("storyboard is empty")
	}
	if lo.EveryBy(scenes, func(s model.Scene) bool { return s.VisualDescription == "" }) {
		return nil, fmt.Errorf("storyboard has no visual descriptions")
	}
	return model.Normalize(scenes), nil
}

// StripCodeFence removes a ```json ... ``` (or plain ``` ... ```) wrapper
// if the text carries one.
func StripCodeFence(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}

// SaveStoryboard writes the machine-readable storyboard.json plus the
// storyboard_readable.txt companion for manual review.
func SaveStoryboard(scenes []model.Scene, jsonPath, readablePath string) error {
	b, err := json.MarshalIndent(scenes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storyboard: %w", err)
	}
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		return fmt.Errorf("write storyboard.json: %w", err)
	}

	var sb strings.Builder
	divider := strings.Repeat("=", 60)
	for _, s := range scenes {
		fmt.Fprintf(&sb, "\n%s\n", divider)
		fmt.Fprintf(&sb, "Scene %d: %.0fs\n", s.Number, s.Duration)
		fmt.Fprintf(&sb, "%s\n", divider)
		fmt.Fprintf(&sb, "Visual: %s\n\n", s.VisualDescription)
		fmt.Fprintf(&sb, "Action: %s\n\n", s.Action)
		fmt.Fprintf(&sb, "Dialogue: %s\n\n", s.Dialogue)
		fmt.Fprintf(&sb, "Camera: %s\n", s.CameraAngle)
		fmt.Fprintf(&sb, "Audio Type: %s\n", s.AudioType)
	}
	if err := os.WriteFile(readablePath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write readable storyboard: %w", err)
	}
	return nil
}
