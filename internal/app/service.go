// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	repository "github.com/asanakit/surya/internal/adapters/repository"
	"github.com/asanakit/surya/internal/coach"
	"github.com/asanakit/surya/internal/domain/correction"
	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/physics"
	"github.com/asanakit/surya/internal/domain/pose"
	"github.com/asanakit/surya/internal/domain/progress"
	"github.com/asanakit/surya/internal/domain/safety"
	"github.com/asanakit/surya/internal/domain/types"
	"github.com/asanakit/surya/internal/knowledge"
	"github.com/asanakit/surya/pkg/logger"
	"github.com/asanakit/surya/pkg/metrics"
)

// Default service configuration.
const (
	defaultSessionTTL    = 30 * time.Minute
	defaultFrameCapacity = 1000
	historyOrderRecent   = "recent"
	historyOrderBest     = "best"
)

// session pairs a progress tracker with the profile it was opened for.
// closed marks sessions stopped by the client so the cache eviction
// hook can tell an explicit stop from a TTL expiry.
type session struct {
	tracker *progress.Tracker
	profile model.UserProfile
	closed  atomic.Bool
}

// Service implements the API dependencies for the pose evaluation
// system.
type Service struct {
	mu sync.RWMutex

	// Core components
	physics     *physics.Engine
	rules       *pose.Engine
	safety      *safety.Engine
	corrections *correction.Mapper
	coach       coach.Generator
	sessions    *gocache.Cache
	history     repository.Store

	// Configuration
	sessionTTL      time.Duration
	frameCapacity   int
	historyCapacity int
	coachTone       string
	posesPath       string
	safetyPath      string
	correctionsPath string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCoach sets the coaching sentence generator.
func WithCoach(g coach.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.coach = g
		}
	}
}

// WithCoachTone sets the tone requested from the coach generator.
func WithCoachTone(tone string) Option {
	return func(s *Service) {
		if tone != "" {
			s.coachTone = tone
		}
	}
}

// WithSessionTTL sets how long an idle session survives between frames.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithFrameHistoryCapacity bounds each session's frame history.
func WithFrameHistoryCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.frameCapacity = n
		}
	}
}

// WithHistoryCapacity bounds the completed-session summary store.
func WithHistoryCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCapacity = n
		}
	}
}

// WithKnowledgePaths overrides the embedded knowledge bases with
// external YAML files. Empty paths keep the embedded defaults.
func WithKnowledgePaths(poses, safetyTables, corrections string) Option {
	return func(s *Service) {
		s.posesPath = poses
		s.safetyPath = safetyTables
		s.correctionsPath = corrections
	}
}

// WithStore sets a custom session summary store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessionTTL:    defaultSessionTTL,
		frameCapacity: defaultFrameCapacity,
		coachTone:     coach.DefaultTone,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the knowledge bases and initializes the service
// components. The loaded tables are immutable for the process
// lifetime.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting pose evaluation service...")

	base, err := knowledge.Load(ctx,
		knowledge.WithPosesPath(s.posesPath),
		knowledge.WithSafetyPath(s.safetyPath),
		knowledge.WithCorrectionsPath(s.correctionsPath),
	)
	if err != nil {
		return err
	}

	s.physics = physics.New()
	s.rules = pose.NewEngine(base.Rules)
	s.safety = safety.NewEngine(base.Safety)
	s.corrections = correction.NewMapper(base.Corrections)
	if s.coach == nil {
		s.coach = coach.NewTemplateGenerator()
	}
	if s.history == nil {
		var storeOpts []repository.Option
		if s.historyCapacity > 0 {
			storeOpts = append(storeOpts, repository.WithCapacity(s.historyCapacity))
		}
		s.history = repository.NewMemoryStore(storeOpts...)
	}

	s.sessions = gocache.New(s.sessionTTL, s.sessionTTL)
	s.sessions.OnEvicted(func(id string, v interface{}) {
		sess, ok := v.(*session)
		if !ok || sess.closed.Load() {
			return
		}
		metrics.RecordSessionExpired()
		s.logger.Warn(context.Background(), "session expired without stop",
			logger.String("sessionID", id),
		)
	})

	s.started = true
	s.logger.Info(ctx, "pose evaluation service started",
		logger.Int("poses", len(s.rules.Poses())),
		logger.String("sessionTTL", s.sessionTTL.String()),
		logger.Int("frameCapacity", s.frameCapacity),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping pose evaluation service...")

	if s.sessions != nil {
		s.sessions.Flush()
	}

	s.started = false
	s.logger.Info(context.Background(), "pose evaluation service stopped")
}

// Evaluate scores a single frame against the pose's rule set, adapted
// to the profile. Expected failure modes (invalid angles, unknown
// pose, contraindication) are encoded in the result, not returned as
// errors; only a service that was never started errs.
func (s *Service) Evaluate(ctx context.Context, poseName string, angles model.JointAngles, rawLandmarks map[string][]float64, profile model.UserProfile) (types.EvaluationResult, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.EvaluationResult{}, ErrNotStarted
	}

	begin := time.Now()
	name := strings.ToLower(strings.TrimSpace(poseName))

	if !s.physics.ValidateAngles(angles) {
		metrics.RecordFrameInvalid()
		s.logger.Warn(ctx, "frame rejected for out-of-range angles",
			logger.String("pose", name),
		)
		return types.EvaluationResult{
			PoseName:         name,
			PoseDetected:     false,
			Issues:           model.Issues{model.IssueEvaluationError}.Strings(),
			PassedRules:      map[string]bool{},
			FailedRules:      map[string]bool{},
			CoachingSentence: correction.GenericReminder,
			RiskLevel:        model.RiskLow,
		}, nil
	}

	base := s.rules.Rules(name)
	if base.Empty() {
		metrics.RecordUnknownPose()
		s.logger.Debug(ctx, "unknown pose requested", logger.String("pose", name))
		return types.EvaluationResult{
			PoseName:         name,
			PoseDetected:     false,
			Issues:           []string{},
			PassedRules:      map[string]bool{},
			FailedRules:      map[string]bool{},
			CoachingSentence: correction.UnknownPoseHint,
			RiskLevel:        model.RiskLow,
		}, nil
	}

	adaptation := s.safety.Adapt(name, base, profile)
	if !adaptation.Allowed {
		metrics.RecordContraindication()
		s.logger.Info(ctx, "pose contraindicated for profile",
			logger.String("pose", name),
			logger.Any("conditions", profile.Conditions),
		)
		return types.EvaluationResult{
			PoseName:         name,
			PoseDetected:     true,
			Issues:           model.Issues{model.IssuePoseContraindicated}.Strings(),
			PassedRules:      map[string]bool{},
			FailedRules:      map[string]bool{},
			CoachingSentence: adaptation.Reason,
			RiskLevel:        adaptation.RiskLevel,
		}, nil
	}

	lm := s.physics.ReshapeLandmarks(rawLandmarks)
	eval := s.rules.Evaluate(name, lm, angles, adaptation.Rules)

	sentence, err := s.coach.Coach(ctx, name, eval.Issues, s.coachTone)
	if err != nil {
		s.logger.Warn(ctx, "coach generator failed, using correction fallback",
			logger.Error(err),
		)
		sentence = s.corrections.Corrections(name, eval.Issues).Spoken()
	}

	metrics.RecordFrameEvaluated()
	metrics.RecordAlignmentScore(eval.AlignmentScore)
	metrics.RecordEvaluationLatency(float64(time.Since(begin).Microseconds()) / 1000.0)

	return types.EvaluationResult{
		PoseName:         name,
		PoseDetected:     true,
		AlignmentScore:   eval.AlignmentScore,
		Issues:           eval.Issues.Strings(),
		PassedRules:      eval.PassedRules,
		FailedRules:      eval.FailedRules,
		CoachingSentence: sentence,
		RiskLevel:        adaptation.RiskLevel,
	}, nil
}

// Corrections resolves the detected issues against the pose's phrase
// library without re-evaluating the frame.
func (s *Service) Corrections(_ context.Context, poseName string, issues []string) (correction.Result, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return correction.Result{}, ErrNotStarted
	}

	name := strings.ToLower(strings.TrimSpace(poseName))
	coded := make(model.Issues, 0, len(issues))
	for _, issue := range issues {
		coded = coded.Append(model.Issue(issue))
	}
	return s.corrections.Corrections(name, coded), nil
}

// StartSession opens a new practice session for the profile and
// returns its identifier. The session expires after the idle TTL.
func (s *Service) StartSession(ctx context.Context, profile model.UserProfile) (string, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	tracker := progress.New(progress.WithHistoryCapacity(s.frameCapacity))
	id := tracker.Start()
	s.sessions.Set(id, &session{tracker: tracker, profile: profile}, s.sessionTTL)

	metrics.RecordSessionStarted()
	metrics.UpdateActiveSessions(s.sessions.ItemCount())
	s.logger.Info(ctx, "session started",
		logger.String("sessionID", id),
		logger.String("level", string(profile.Level)),
	)
	return id, nil
}

// RecordFrame evaluates one frame inside a session, folds it into the
// session's rolling statistics and refreshes the idle TTL.
func (s *Service) RecordFrame(ctx context.Context, sessionID, poseName string, angles model.JointAngles, rawLandmarks map[string][]float64) (types.EvaluationResult, types.SessionStats, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return types.EvaluationResult{}, types.SessionStats{}, err
	}

	result, err := s.Evaluate(ctx, poseName, angles, rawLandmarks, sess.profile)
	if err != nil {
		return types.EvaluationResult{}, types.SessionStats{}, err
	}

	if result.PoseDetected {
		sess.tracker.Update(model.FrameMetrics{
			PoseName:       result.PoseName,
			AlignmentScore: result.AlignmentScore,
			JointAngles:    angles,
			Timestamp:      time.Now(),
		})
	}
	s.sessions.Set(sessionID, sess, s.sessionTTL)

	return result, sess.tracker.Stats(), nil
}

// SessionStats returns the current rolling statistics for a live
// session.
func (s *Service) SessionStats(_ context.Context, sessionID string) (types.SessionStats, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return types.SessionStats{}, err
	}
	return sess.tracker.Stats(), nil
}

// StopSession closes a session, persists its summary to the history
// store and returns the summary.
func (s *Service) StopSession(ctx context.Context, sessionID string) (types.SessionSummary, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return types.SessionSummary{}, err
	}

	summary := sess.tracker.Summary()
	sess.closed.Store(true)
	s.sessions.Delete(sessionID)

	if err := s.history.Save(ctx, summary); err != nil {
		return types.SessionSummary{}, err
	}

	metrics.RecordSessionCompleted()
	metrics.UpdateActiveSessions(s.sessions.ItemCount())
	metrics.UpdateStoredSummaries(s.history.Count(ctx))
	if summary.FatigueDetected {
		metrics.RecordFatigueDetection()
	}

	s.logger.Info(ctx, "session stopped",
		logger.String("sessionID", sessionID),
		logger.Int("frames", summary.Frames),
		logger.Float64("averageAlignment", summary.AverageAlignment),
		logger.Bool("fatigue", summary.FatigueDetected),
	)
	return summary, nil
}

// History returns up to n completed session summaries, newest first or
// by average alignment when order is "best".
func (s *Service) History(ctx context.Context, n int, order string) ([]types.SessionSummary, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	switch order {
	case historyOrderBest:
		return s.history.Best(ctx, n)
	case "", historyOrderRecent:
		return s.history.Recent(ctx, n)
	default:
		return nil, ErrInvalidOrder
	}
}

// session resolves a live session by id.
func (s *Service) session(sessionID string) (*session, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	v, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess, ok := v.(*session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"sessionTTL":    s.sessionTTL.String(),
		"frameCapacity": s.frameCapacity,
	}

	if s.started {
		active := s.sessions.ItemCount()
		stored := s.history.Count(ctx)

		stats["knownPoses"] = s.rules.Poses()
		stats["activeSessions"] = active
		stats["storedSummaries"] = stored

		// Update metrics
		metrics.UpdateActiveSessions(active)
		metrics.UpdateStoredSummaries(stored)
	}

	return stats
}
