package publish

import (
	"context"
	"os"

	"ad-video-gen/internal"
	"ad-video-gen/internal/logging"
)

// Manager holds the publishers that are actually configured.
type Manager struct {
	publishers map[string]Publisher
	log        *logging.Logger
}

// NewManager wires up every destination whose credentials are present.
func NewManager(cfg internal.Config, log *logging.Logger) *Manager {
	m := &Manager{
		publishers: make(map[string]Publisher),
		log:        log,
	}

	if cfg.TelegramToken != "" && cfg.PostsChatID != 0 {
		m.publishers["telegram"] = NewTelegramPublisher(cfg.TelegramToken, cfg.PostsChatID)
	}

	if fileExists(cfg.YouTubeClientSecrets) && fileExists(cfg.YouTubeToken) {
		m.publishers["youtube"] = NewYouTubePublisher(cfg.YouTubeClientSecrets, cfg.YouTubeToken)
	}

	return m
}

// AvailablePlatforms returns the destinations that will receive the video.
func (m *Manager) AvailablePlatforms() []string {
	platforms := make([]string, 0, len(m.publishers))
	for platform := range m.publishers {
		platforms = append(platforms, platform)
	}
	return platforms
}

// PublishAll sends the video to every configured destination. Individual
// failures are logged and reported in the result map.
func (m *Manager) PublishAll(ctx context.Context, req *Request) map[string]*Result {
	results := make(map[string]*Result)
	for platform, p := range m.publishers {
		result, err := p.Publish(ctx, req)
		if err != nil {
			m.log.Warnf("publish: ✗ %s failed: %v", platform, err)
		} else {
			m.log.Infof("publish: ✓ sent to %s", platform)
		}
		results[platform] = result
	}
	return results
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
