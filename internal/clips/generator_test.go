package clips

import (
	"strings"
	"testing"
)

func TestMotionPrompt(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		duration float64
		wantDur  string
	}{
		{"normal duration", "she walks to the window", 8, "--duration 8"},
		{"clamped to max", "slow pan across the room", 15, "--duration 10"},
		{"zero falls back to max", "product rotates", 0, "--duration 10"},
		{"fractional truncates", "she smiles", 8.9, "--duration 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MotionPrompt(tt.action, tt.duration)
			if !strings.HasPrefix(got, tt.action+" ") {
				t.Errorf("prompt %q does not start with action", got)
			}
			if !strings.Contains(got, tt.wantDur) {
				t.Errorf("prompt %q missing %q", got, tt.wantDur)
			}
			for _, fixed := range []string{"--ratio 16:9", "--resolution 720p", "--fps 24", "--watermark false"} {
				if !strings.Contains(got, fixed) {
					t.Errorf("prompt %q missing switch %q", got, fixed)
				}
			}
		})
	}
}
