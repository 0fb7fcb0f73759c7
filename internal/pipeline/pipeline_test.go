package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceEnsureDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	ws := NewWorkspace(root)

	if err := ws.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}

	for _, dir := range []string{
		ws.StoryboardDir,
		ws.ImagesDir,
		ws.ClipsDir,
		ws.FinalDir,
		ws.AudioDir,
	} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}

	if ws.GradeTempDir != filepath.Join(root, "04_final", "temp_color_match") {
		t.Errorf("GradeTempDir = %q", ws.GradeTempDir)
	}

	// Idempotent for repeated runs over the same output dir.
	if err := ws.EnsureDirs(); err != nil {
		t.Errorf("second EnsureDirs: %v", err)
	}
}
