package model

import "testing"

func TestNormalize(t *testing.T) {
	scenes := Normalize([]Scene{
		{Number: 9, VisualDescription: "A"},
		{Number: 2, Duration: 10, VisualDescription: "B", AudioType: AudioProduct},
		{Number: 0, Duration: 6, VisualDescription: "C", AudioType: "disco"},
	})

	for i, s := range scenes {
		if s.Number != i+1 {
			t.Errorf("scene %d renumbered to %d, want %d", i, s.Number, i+1)
		}
	}
	if scenes[0].Duration != 8 {
		t.Errorf("default duration = %v, want 8", scenes[0].Duration)
	}
	if scenes[1].AudioType != AudioProduct {
		t.Errorf("valid audio type changed to %q", scenes[1].AudioType)
	}
	if scenes[2].AudioType != AudioCalm {
		t.Errorf("invalid audio type = %q, want calm default", scenes[2].AudioType)
	}
}

func TestTotalDuration(t *testing.T) {
	got := TotalDuration([]Scene{{Duration: 8}, {Duration: 9.5}, {Duration: 10}})
	if got != 27.5 {
		t.Errorf("TotalDuration = %v, want 27.5", got)
	}
}

func TestBestPath(t *testing.T) {
	k := Keyframe{Path: "scene_01.png"}
	if k.BestPath() != "scene_01.png" {
		t.Errorf("BestPath = %q", k.BestPath())
	}
	k.EditedPath = "scene_01_edited.png"
	if k.BestPath() != "scene_01_edited.png" {
		t.Errorf("BestPath = %q, want edited", k.BestPath())
	}

	c := Clip{Path: "clip_01.mp4"}
	if c.BestPath() != "clip_01.mp4" {
		t.Errorf("BestPath = %q", c.BestPath())
	}
	c.GradedPath = "matched_01.mp4"
	if c.BestPath() != "matched_01.mp4" {
		t.Errorf("BestPath = %q, want graded", c.BestPath())
	}
}

func TestValidAudioKind(t *testing.T) {
	for _, k := range []AudioKind{AudioCafe, AudioCalm, AudioProduct} {
		if !ValidAudioKind(k) {
			t.Errorf("ValidAudioKind(%q) = false", k)
		}
	}
	for _, k := range []AudioKind{"", "techno", "CAFE"} {
		if ValidAudioKind(k) {
			t.Errorf("ValidAudioKind(%q) = true", k)
		}
	}
}
