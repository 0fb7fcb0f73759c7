package publish

import (
	"os"
	"path/filepath"
	"testing"

	"ad-video-gen/internal"
	"ad-video-gen/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(filepath.Join(t.TempDir(), "errors.log"))
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestNewManagerWiring(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, "client_secrets.json")
	token := filepath.Join(dir, "youtube_token.json")
	for _, p := range []string{secrets, token} {
		if err := os.WriteFile(p, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		cfg  internal.Config
		want int
	}{
		{"nothing configured", internal.Config{}, 0},
		{
			"telegram only",
			internal.Config{TelegramToken: "tok", PostsChatID: -100},
			1,
		},
		{
			"telegram without chat id stays off",
			internal.Config{TelegramToken: "tok"},
			0,
		},
		{
			"youtube only",
			internal.Config{YouTubeClientSecrets: secrets, YouTubeToken: token},
			1,
		},
		{
			"youtube with missing token file stays off",
			internal.Config{YouTubeClientSecrets: secrets, YouTubeToken: filepath.Join(dir, "nope.json")},
			0,
		},
		{
			"both destinations",
			internal.Config{
				TelegramToken:        "tok",
				PostsChatID:          -100,
				YouTubeClientSecrets: secrets,
				YouTubeToken:         token,
			},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.cfg, testLogger(t))
			if got := len(m.AvailablePlatforms()); got != tt.want {
				t.Errorf("platforms = %v, want %d", m.AvailablePlatforms(), tt.want)
			}
		})
	}
}
