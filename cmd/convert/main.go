// Standalone compatibility converter: re-encodes finished videos with
// conservative H.264 settings for stock Windows and mobile players.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ad-video-gen/internal/logging"
	"ad-video-gen/internal/video"

	"github.com/joho/godotenv"
)

func main() {
	outDir := flag.String("dir", filepath.Join("output", "04_final"), "directory to sweep when no file is given")
	flag.Parse()

	_ = godotenv.Load(".env")

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	ctx := context.Background()
	asm := video.NewAssembler(log)

	targets := flag.Args()
	if len(targets) == 0 {
		targets = video.FindFinalCandidates(*outDir)
		if len(targets) == 0 {
			fmt.Fprintf(os.Stderr, "no finished videos found in %s\n", *outDir)
			os.Exit(1)
		}
	}

	for _, in := range targets {
		out := strings.TrimSuffix(in, filepath.Ext(in)) + "_compatible.mp4"
		if info, err := video.ProbeStream(ctx, in); err == nil {
			log.Infof("converting %s (source fps %s)", in, info.AvgFrameRate)
		} else {
			log.Infof("converting %s", in)
		}
		if err := asm.ConvertCompat(ctx, in, out); err != nil {
			log.Errorf("convert %s: %v", in, err)
			os.Exit(1)
		}
	}
}
