package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/asanakit/surya/pkg/logger"
)

// Run executes one smoke pass against a live server: open a session,
// stream frames, check the statistics move in the expected direction,
// stop the session and report.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("smoke")
	c := newClient(cfg)
	stats := &Stats{}
	begin := time.Now()

	sessionID, err := c.startSession(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	log.Info(ctx, "session opened",
		logger.String("sessionID", sessionID),
		logger.String("pose", cfg.Pose),
		logger.Int("frames", cfg.NumFrames),
	)

	poses := []string{cfg.Pose}
	if cfg.Pose == "cycle" {
		poses = poseNames()
	}

	for i := 0; i < cfg.NumFrames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("smoke run cancelled: %w", ctx.Err())
		default:
		}

		pose := poses[i%len(poses)]
		angles, landmarks := generateFrame(pose, i, cfg.DegradeAfter)

		outcome, err := c.postFrame(ctx, sessionID, pose, angles, landmarks)
		stats.FramesSent++
		if err != nil {
			stats.Errors++
			log.Warn(ctx, "frame rejected", logger.Int("frame", i), logger.Error(err))
			continue
		}
		stats.FramesAccepted++
		if stats.FramesAccepted == 1 {
			stats.FirstScore = outcome.Evaluation.AlignmentScore
		}
		stats.LastScore = outcome.Evaluation.AlignmentScore
		stats.FatigueDetected = outcome.SessionStats.FatigueDetected

		if cfg.Verbose {
			log.Info(ctx, "frame evaluated",
				logger.Int("frame", i),
				logger.String("pose", pose),
				logger.Float64("score", outcome.Evaluation.AlignmentScore),
				logger.Any("issues", outcome.Evaluation.Issues),
			)
		}

		if cfg.FrameInterval > 0 {
			time.Sleep(cfg.FrameInterval)
		}
	}

	live, err := c.sessionStats(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session stats: %w", err)
	}
	if live.Frames != stats.FramesAccepted {
		return fmt.Errorf("session counted %d frames, runner sent %d accepted", live.Frames, stats.FramesAccepted)
	}

	summary, err := c.stopSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	stats.Duration = time.Since(begin)
	stats.FatigueDetected = summary.FatigueDetected

	if cfg.DegradeAfter > 0 && stats.LastScore >= stats.FirstScore {
		log.Warn(ctx, "degradation did not lower the score",
			logger.Float64("first", stats.FirstScore),
			logger.Float64("last", stats.LastScore),
		)
	}

	log.Info(ctx, "smoke run complete",
		logger.Int("sent", stats.FramesSent),
		logger.Int("accepted", stats.FramesAccepted),
		logger.Int("errors", stats.Errors),
		logger.Float64("averageAlignment", summary.AverageAlignment),
		logger.Float64("stability", summary.StabilityScore),
		logger.Float64("symmetry", summary.SymmetryScore),
		logger.Bool("fatigue", summary.FatigueDetected),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}
