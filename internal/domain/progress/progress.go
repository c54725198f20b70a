// Package progress maintains per-session rolling statistics over a
// stream of evaluated frames: stability (angle variance), symmetry
// (left/right agreement) and a trend-based fatigue flag.
package progress

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/types"
)

// Window and threshold constants for the rolling statistics.
const (
	defaultHistoryCapacity = 1000
	statsWindow            = 50 // recent samples per side for stability/symmetry
	minKeySamples          = 10 // samples a key needs before its variance counts
	fatigueWindowSize      = 24
	fatigueHalf            = fatigueWindowSize / 2
	fatigueBaseline        = 70.0 // first-half mean must exceed this
	fatigueDrop            = 15.0 // second-half mean must fall this far below
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithHistoryCapacity bounds the frame history buffer.
func WithHistoryCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// Tracker is the only component with cross-frame state. One tracker
// serves exactly one session; its mutex serializes concurrent frames
// for that session while distinct sessions stay fully independent.
type Tracker struct {
	mu       sync.Mutex
	capacity int

	sessionID string
	startedAt time.Time
	active    bool

	history         []model.FrameMetrics
	scores          []float64
	leftAngles      []map[string]float64
	rightAngles     []map[string]float64
	spineExtensions []float64
	poses           []string
	posesSeen       map[string]struct{}

	fatigueWindow   []float64
	fatigueDetected bool
}

// New creates an idle tracker. Call Start before recording frames.
func New(opts ...Option) *Tracker {
	t := &Tracker{capacity: defaultHistoryCapacity}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start resets all rolling buffers and assigns a fresh session
// identifier, which it returns.
func (t *Tracker) Start() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessionID = uuid.NewString()
	t.startedAt = time.Now()
	t.active = true
	t.history = nil
	t.scores = nil
	t.leftAngles = nil
	t.rightAngles = nil
	t.spineExtensions = nil
	t.poses = nil
	t.posesSeen = make(map[string]struct{})
	t.fatigueWindow = nil
	t.fatigueDetected = false
	return t.sessionID
}

// SessionID returns the current session identifier, empty when idle.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Update appends one evaluated frame to the session history, buckets
// its joint angles into left/right collections and feeds the fatigue
// window. Oldest entries are evicted once capacity is exceeded.
func (t *Tracker) Update(fm model.FrameMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	if fm.Timestamp.IsZero() {
		fm.Timestamp = time.Now()
	}

	t.history = appendBounded(t.history, fm, t.capacity)
	t.scores = appendBounded(t.scores, fm.AlignmentScore, t.capacity)
	if _, seen := t.posesSeen[fm.PoseName]; !seen {
		t.posesSeen[fm.PoseName] = struct{}{}
		t.poses = append(t.poses, fm.PoseName)
	}

	t.trackAngles(fm.JointAngles)
	t.updateFatigue(fm.AlignmentScore)
}

// trackAngles buckets joint angles by side, matched on key substring.
func (t *Tracker) trackAngles(angles model.JointAngles) {
	left := make(map[string]float64)
	right := make(map[string]float64)
	for key, value := range angles {
		switch {
		case strings.Contains(key, "left"):
			left[key] = value
		case strings.Contains(key, "right"):
			right[key] = value
		}
	}
	if len(left) > 0 {
		t.leftAngles = appendBounded(t.leftAngles, left, t.capacity)
	}
	if len(right) > 0 {
		t.rightAngles = appendBounded(t.rightAngles, right, t.capacity)
	}
	if spine, ok := angles["spine_angle"]; ok {
		t.spineExtensions = appendBounded(t.spineExtensions, model.MaxAngle-spine, t.capacity)
	}
}

// updateFatigue feeds the fixed-size score window and, once it fills,
// compares the two halves. The flag is sticky for the session.
func (t *Tracker) updateFatigue(score float64) {
	t.fatigueWindow = appendBounded(t.fatigueWindow, score, fatigueWindowSize)
	if len(t.fatigueWindow) < fatigueWindowSize {
		return
	}
	first := mean(t.fatigueWindow[:fatigueHalf])
	second := mean(t.fatigueWindow[fatigueHalf:])
	if first > fatigueBaseline && second < first-fatigueDrop {
		t.fatigueDetected = true
	}
}

// Stability scores how steady the joint angles have been over the most
// recent window: per-key population variances are averaged and mapped
// onto 0..100 where higher is steadier. Fewer than ten recorded
// samples yields 0.0, which means insufficient data, not instability.
func (t *Tracker) Stability() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stabilityLocked()
}

func (t *Tracker) stabilityLocked() float64 {
	if len(t.leftAngles) < minKeySamples {
		return 0.0
	}

	var variances []float64
	for _, side := range [][]map[string]float64{
		tail(t.leftAngles, statsWindow),
		tail(t.rightAngles, statsWindow),
	} {
		for _, key := range collectKeys(side) {
			values := make([]float64, 0, len(side))
			for _, angles := range side {
				if v, ok := angles[key]; ok {
					values = append(values, v)
				}
			}
			if len(values) >= minKeySamples {
				variances = append(variances, variance(values))
			}
		}
	}
	if len(variances) == 0 {
		return 0.0
	}
	return round2(math.Max(0, 100-mean(variances)))
}

// Symmetry scores left/right agreement: the most recent window of each
// side is paired positionally, left keys matched to their right
// counterparts by substring substitution, and the average absolute
// difference mapped onto 0..100. No matched pairs yields 0.0.
func (t *Tracker) Symmetry() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.symmetryLocked()
}

func (t *Tracker) symmetryLocked() float64 {
	left := tail(t.leftAngles, statsWindow)
	right := tail(t.rightAngles, statsWindow)
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	var diffs []float64
	for i := 0; i < n; i++ {
		for leftKey, leftValue := range left[i] {
			rightKey := strings.ReplaceAll(leftKey, "left", "right")
			if rightValue, ok := right[i][rightKey]; ok {
				diffs = append(diffs, math.Abs(leftValue-rightValue))
			}
		}
	}
	if len(diffs) == 0 {
		return 0.0
	}
	return round2(math.Max(0, 100-mean(diffs)))
}

// Stats recomputes the session view from the live buffers.
func (t *Tracker) Stats() types.SessionStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statsLocked()
}

func (t *Tracker) statsLocked() types.SessionStats {
	stats := types.SessionStats{
		SessionID:       t.sessionID,
		Frames:          len(t.history),
		StabilityScore:  t.stabilityLocked(),
		SymmetryScore:   t.symmetryLocked(),
		FatigueDetected: t.fatigueDetected,
		PosesPerformed:  append([]string(nil), t.poses...),
	}
	if len(t.scores) > 0 {
		stats.AverageAlignment = round2(mean(t.scores))
	}
	if t.active {
		stats.DurationSeconds = time.Since(t.startedAt).Seconds()
	}
	return stats
}

// Summary closes out the session and returns its final record. Stats
// are computed under the same lock that deactivates the tracker, so no
// concurrent Update can land between the count and the close. The
// tracker becomes idle; buffers survive until the next Start so the
// summary stays reproducible.
func (t *Tracker) Summary() types.SessionSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := t.statsLocked()
	t.active = false
	endedAt := time.Now()
	return types.SessionSummary{
		SessionID:        stats.SessionID,
		StartedAt:        t.startedAt,
		EndedAt:          endedAt,
		DurationSeconds:  endedAt.Sub(t.startedAt).Seconds(),
		Frames:           stats.Frames,
		AverageAlignment: stats.AverageAlignment,
		StabilityScore:   stats.StabilityScore,
		SymmetryScore:    stats.SymmetryScore,
		FatigueDetected:  stats.FatigueDetected,
		PosesPerformed:   stats.PosesPerformed,
	}
}

// appendBounded appends to a slice evicting the oldest entry beyond
// capacity.
func appendBounded[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// tail returns the most recent n entries.
func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// collectKeys returns the union of keys across the window, sorted for
// deterministic iteration.
func collectKeys(window []map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, angles := range window {
		for key := range angles {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance, matching the windowed
// semantics the stability score is defined over.
func variance(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
