package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ad-video-gen/internal/model"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[{"scene_number": 1}]`, `[{"scene_number": 1}]`},
		{"json fence", "Here you go:\n```json\n[1, 2]\n```\nEnjoy!", "[1, 2]"},
		{"plain fence", "```\n[1, 2]\n```", "[1, 2]"},
		{"unterminated fence", "```json\n[1, 2]", "[1, 2]"},
		{"surrounding whitespace", "  \n[1]\n  ", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStoryboardBareArray(t *testing.T) {
	response := "```json\n" + `[
	  {"scene_number": 1, "duration": 8, "visual_description": "Cafe interior", "audio_type": "cafe"},
	  {"scene_number": 2, "duration": 9, "visual_description": "Headphones on", "audio_type": "calm"}
	]` + "\n```"

	scenes, err := ParseStoryboard(response)
	if err != nil {
		t.Fatalf("ParseStoryboard: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(scenes))
	}
	if scenes[0].AudioType != model.AudioCafe {
		t.Errorf("scene 1 audio = %q, want cafe", scenes[0].AudioType)
	}
	if scenes[1].Duration != 9 {
		t.Errorf("scene 2 duration = %v, want 9", scenes[1].Duration)
	}
}

func TestParseStoryboardEnvelope(t *testing.T) {
	response := `{"scenes": [{"scene_number": 1, "visual_description": "Product close-up", "audio_type": "product"}]}`

	scenes, err := ParseStoryboard(response)
	if err != nil {
		t.Fatalf("ParseStoryboard: %v", err)
	}
	if len(scenes) != 1 {
		t.Fatalf("got %d scenes, want 1", len(scenes))
	}
	if scenes[0].AudioType != model.AudioProduct {
		t.Errorf("audio = %q, want product", scenes[0].AudioType)
	}
}

func TestParseStoryboardNormalizes(t *testing.T) {
	// Out-of-order numbers, zero duration and a bogus audio type must all
	// come out of normalization fixed.
	response := `[
	  {"scene_number": 5, "visual_description": "A", "audio_type": "techno"},
	  {"scene_number": 2, "visual_description": "B", "duration": 10, "audio_type": "calm"}
	]`

	scenes, err := ParseStoryboard(response)
	if err != nil {
		t.Fatalf("ParseStoryboard: %v", err)
	}
	if scenes[0].Number != 1 || scenes[1].Number != 2 {
		t.Errorf("scene numbers = %d, %d, want 1, 2", scenes[0].Number, scenes[1].Number)
	}
	if scenes[0].Duration != 8 {
		t.Errorf("default duration = %v, want 8", scenes[0].Duration)
	}
	if scenes[0].AudioType != model.AudioCalm {
		t.Errorf("invalid audio type normalized to %q, want calm", scenes[0].AudioType)
	}
}

func TestParseStoryboardErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "sorry, I cannot do that"},
		{"empty array", "[]"},
		{"empty envelope", `{"scenes": []}`},
		{"no visuals", `[{"scene_number": 1}, {"scene_number": 2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseStoryboard(tt.in); err == nil {
				t.Errorf("ParseStoryboard(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestSaveStoryboard(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "storyboard.json")
	readablePath := filepath.Join(dir, "storyboard_readable.txt")

	scenes := []model.Scene{
		{Number: 1, Duration: 8, VisualDescription: "Cafe interior", Action: "She sits down", AudioType: model.AudioCafe},
	}
	if err := SaveStoryboard(scenes, jsonPath, readablePath); err != nil {
		t.Fatalf("SaveStoryboard: %v", err)
	}

	readable, err := os.ReadFile(readablePath)
	if err != nil {
		t.Fatalf("read readable: %v", err)
	}
	for _, want := range []string{"Scene 1: 8s", "Visual: Cafe interior", "Audio Type: cafe"} {
		if !strings.Contains(string(readable), want) {
			t.Errorf("readable output missing %q", want)
		}
	}

	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Errorf("storyboard.json missing or empty: %v", err)
	}
}
