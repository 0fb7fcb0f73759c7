package video

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ad-video-gen/internal/model"
)

func writeFakeClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, 2000), 0o644); err != nil {
		t.Fatalf("write fake clip: %v", err)
	}
	return path
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	clip1 := writeFakeClip(t, dir, "clip_01.mp4")
	clip2 := writeFakeClip(t, dir, "clip_02.mp4")
	graded2 := writeFakeClip(t, dir, "matched_02.mp4")

	clips := []model.Clip{
		{Scene: 1, Path: clip1},
		{Scene: 2, Path: clip2, GradedPath: graded2},
		{Scene: 3, Path: filepath.Join(dir, "clip_03.mp4"), Placeholder: true},
	}

	listPath := filepath.Join(dir, "concat_list.txt")
	count, err := WriteConcatList(listPath, clips)
	if err != nil {
		t.Fatalf("WriteConcatList: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (placeholder skipped)", count)
	}

	content, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), content)
	}
	if !strings.Contains(lines[0], clip1) {
		t.Errorf("line 1 = %q, want path %q", lines[0], clip1)
	}
	// Graded output wins over the raw clip.
	if !strings.Contains(lines[1], graded2) {
		t.Errorf("line 2 = %q, want graded path %q", lines[1], graded2)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Errorf("line %q is not concat demuxer syntax", line)
		}
	}
}

func TestWriteConcatListAllPlaceholders(t *testing.T) {
	dir := t.TempDir()
	clips := []model.Clip{
		{Scene: 1, Path: filepath.Join(dir, "missing.mp4")},
		{Scene: 2, Path: filepath.Join(dir, "clip.mp4"), Placeholder: true},
	}
	if _, err := WriteConcatList(filepath.Join(dir, "list.txt"), clips); err == nil {
		t.Error("WriteConcatList with no usable clips succeeded, want error")
	}
}

func TestFindFinalCandidates(t *testing.T) {
	dir := t.TempDir()
	if got := FindFinalCandidates(dir); len(got) != 0 {
		t.Errorf("empty dir returned %v", got)
	}

	writeFakeClip(t, dir, "merged_video_silent.mp4")
	writeFakeClip(t, dir, "final_with_text.mp4")

	got := FindFinalCandidates(dir)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if filepath.Base(got[0]) != "final_with_text.mp4" {
		t.Errorf("best candidate = %q, want final_with_text.mp4 first", got[0])
	}
}

func TestIsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	real := writeFakeClip(t, dir, "real.mp4")
	tiny := filepath.Join(dir, "tiny.mp4")
	if err := os.WriteFile(tiny, []byte("Placeholder for video clip 3"), 0o644); err != nil {
		t.Fatal(err)
	}

	if isPlaceholder(real) {
		t.Error("real clip flagged as placeholder")
	}
	if !isPlaceholder(tiny) {
		t.Error("tiny marker file not flagged as placeholder")
	}
	if !isPlaceholder(filepath.Join(dir, "missing.mp4")) {
		t.Error("missing file not flagged as placeholder")
	}
}
