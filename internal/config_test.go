package internal

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("ARK_API_KEY", "ark-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ArkBaseURL != "https://ark.ap-southeast.bytepluses.com/api/v3" {
		t.Errorf("ArkBaseURL = %q", cfg.ArkBaseURL)
	}
	if cfg.BrandName != "HAHA HEADPHONE" {
		t.Errorf("BrandName = %q", cfg.BrandName)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.PollInterval != 10*time.Second || cfg.PollAttempts != 60 {
		t.Errorf("polling = %v x %d, want 10s x 60", cfg.PollInterval, cfg.PollAttempts)
	}
	if cfg.YouTubePrivacy != "unlisted" {
		t.Errorf("YouTubePrivacy = %q", cfg.YouTubePrivacy)
	}
	if cfg.S3Configured() {
		t.Error("S3Configured() = true with no S3 env")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BRAND_NAME", "ACME AUDIO")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("POLL_ATTEMPTS", "5")
	t.Setenv("POSTS_CHATID", "-1001234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BrandName != "ACME AUDIO" {
		t.Errorf("BrandName = %q", cfg.BrandName)
	}
	if cfg.PollInterval != 2*time.Second || cfg.PollAttempts != 5 {
		t.Errorf("polling = %v x %d", cfg.PollInterval, cfg.PollAttempts)
	}
	if cfg.PostsChatID != -1001234 {
		t.Errorf("PostsChatID = %d", cfg.PostsChatID)
	}
}

func TestLoadConfigGeminiKeyFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback-key")
	t.Setenv("ARK_API_KEY", "ark-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigMissingKeys(t *testing.T) {
	tests := []struct {
		name   string
		google string
		ark    string
	}{
		{"missing gemini key", "", "ark-key"},
		{"missing ark key", "g-key", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_API_KEY", tt.google)
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("ARK_API_KEY", tt.ark)
			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig succeeded, want error")
			}
		})
	}
}

func TestS3Configured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "ads")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_SECRET_ACCESS_KEY", "sk")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.S3Configured() {
		t.Error("S3Configured() = false with full S3 env")
	}
}
