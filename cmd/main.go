package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ad-video-gen/internal"
	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (try multiple paths)
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		_ = godotenv.Load(path)
	}

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}

	log.Infof("generating ad for %q from %s", cfg.BrandName, cfg.StoryPath)

	final, err := pipeline.New(cfg, log).Run(ctx)
	if err != nil {
		log.Errorf("pipeline failed: %v", err)
		os.Exit(1)
	}

	log.Infof("✓ done, final video: %s", final)
	log.Infof("  all artifacts are under %s", cfg.OutputDir)
}
