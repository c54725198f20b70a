// Package smoke drives a running surya server end to end: it opens a
// session, streams generated pose frames at it and checks that the
// rolling statistics behave.
package smoke

import "time"

// Config holds the smoke run parameters.
type Config struct {
	// BaseURL of the service under test.
	BaseURL string

	// Pose to stream, or "cycle" to rotate through all known poses.
	Pose string

	// NumFrames to send in total.
	NumFrames int

	// DegradeAfter starts degrading alignment after this many frames;
	// 0 disables degradation.
	DegradeAfter int

	// Level and Conditions form the session profile.
	Level      string
	Conditions []string

	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// FrameInterval paces the stream.
	FrameInterval time.Duration

	// Verbose enables per-frame logging.
	Verbose bool
}

// Stats accumulates the outcome of a smoke run.
type Stats struct {
	FramesSent      int
	FramesAccepted  int
	Errors          int
	FirstScore      float64
	LastScore       float64
	FatigueDetected bool
	Duration        time.Duration
}
