package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/asanakit/surya/internal/smoke"
	"github.com/asanakit/surya/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumFrames    = 60
	defaultDegradeAfter = 0
	defaultTimeout      = 10 * time.Second
	defaultInterval     = 50 * time.Millisecond
	defaultRunTimeout   = 5 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		pose         = flag.String("pose", "cycle", "Pose to stream, or 'cycle' for the full sequence")
		numFrames    = flag.Int("frames", defaultNumFrames, "Number of frames to stream")
		degradeAfter = flag.Int("degrade-after", defaultDegradeAfter, "Start degrading alignment after N frames (0 disables)")
		level        = flag.String("level", "intermediate", "Profile experience level")
		conditions   = flag.String("conditions", "", "Comma-separated medical condition codes")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		interval     = flag.Duration("interval", defaultInterval, "Delay between frames")
		verbose      = flag.Bool("verbose", false, "Enable per-frame logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	var conditionList []string
	if *conditions != "" {
		conditionList = strings.Split(*conditions, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL:       *baseURL,
		Pose:          *pose,
		NumFrames:     *numFrames,
		DegradeAfter:  *degradeAfter,
		Level:         *level,
		Conditions:    conditionList,
		Timeout:       *timeout,
		FrameInterval: *interval,
		Verbose:       *verbose,
	}

	if err := smoke.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
