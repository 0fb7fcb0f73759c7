package internal

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	GeminiAPIKey string
	ArkAPIKey    string
	ArkBaseURL   string

	StoryboardModel string
	ImageModel      string
	EditModel       string
	VideoModel      string

	StoryPath string
	BrandName string
	OutputDir string
	ImageSize string

	PollInterval time.Duration // delay between video task status checks
	PollAttempts int
	ImagePause   time.Duration // courtesy pause between image API calls
	ClipPause    time.Duration

	// Optional publishing targets. Empty values disable the stage.
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	PublishPrefix string

	TelegramToken string
	PostsChatID   int64

	YouTubeClientSecrets string
	YouTubeToken         string
	YouTubePrivacy       string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		GeminiAPIKey: firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		ArkAPIKey:    os.Getenv("ARK_API_KEY"),
		ArkBaseURL:   firstNonEmpty(os.Getenv("ARK_BASE_URL"), "https://ark.ap-southeast.bytepluses.com/api/v3"),

		StoryboardModel: firstNonEmpty(os.Getenv("STORYBOARD_MODEL"), "gemini-2.0-flash-exp"),
		ImageModel:      firstNonEmpty(os.Getenv("IMAGE_MODEL"), "seedream-4-0-250828"),
		EditModel:       firstNonEmpty(os.Getenv("EDIT_MODEL"), "seededit-1-0-250828"),
		VideoModel:      firstNonEmpty(os.Getenv("VIDEO_MODEL"), "seedance-1-0-lite-i2v-250428"),

		StoryPath: firstNonEmpty(os.Getenv("STORY_PATH"), "story.txt"),
		BrandName: firstNonEmpty(os.Getenv("BRAND_NAME"), "HAHA HEADPHONE"),
		OutputDir: firstNonEmpty(os.Getenv("OUTPUT_DIR"), "output"),
		ImageSize: firstNonEmpty(os.Getenv("IMAGE_SIZE"), "1920x1080"),

		PollInterval: 10 * time.Second,
		PollAttempts: 60,
		ImagePause:   3 * time.Second,
		ClipPause:    2 * time.Second,

		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      os.Getenv("S3_REGION"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3AccessKey:   firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey:   firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_ACCESS_KEY_ID")),
		PublishPrefix: firstNonEmpty(os.Getenv("PUBLISH_PREFIX"), "ads/"),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		YouTubeClientSecrets: firstNonEmpty(os.Getenv("YOUTUBE_CLIENT_SECRETS"), "client_secrets.json"),
		YouTubeToken:         firstNonEmpty(os.Getenv("YOUTUBE_TOKEN"), "youtube_token.json"),
		YouTubePrivacy:       firstNonEmpty(os.Getenv("YOUTUBE_PRIVACY"), "unlisted"),
	}

	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("POLL_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollAttempts = n
		}
	}
	if v := os.Getenv("POSTS_CHATID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
			cfg.PostsChatID = n
		}
	}

	if cfg.GeminiAPIKey == "" {
		return cfg, errors.New("GOOGLE_API_KEY or GEMINI_API_KEY is required")
	}
	if cfg.ArkAPIKey == "" {
		return cfg, errors.New("ARK_API_KEY is required")
	}
	return cfg, nil
}

// S3Configured reports whether all S3 settings are present.
func (c Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3Region != "" && c.S3Bucket != "" &&
		c.S3AccessKey != "" && c.S3SecretKey != ""
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}
