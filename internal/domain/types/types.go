// Package types contains common read shapes shared across the application.
package types

import "time"

// EvaluationResult is the structured outcome of evaluating one frame.
// The core always returns a well-formed result; expected failure modes
// (invalid input, unknown pose, contraindication) are encoded here
// rather than surfaced as errors.
type EvaluationResult struct {
	PoseName         string          `json:"pose_name"`
	PoseDetected     bool            `json:"pose_detected"`
	AlignmentScore   float64         `json:"alignment_score"`
	Issues           []string        `json:"issues"`
	PassedRules      map[string]bool `json:"passed_rules"`
	FailedRules      map[string]bool `json:"failed_rules"`
	CoachingSentence string          `json:"coaching_sentence"`
	RiskLevel        string          `json:"risk_level"`
}

// SessionStats is a point-in-time view over a live session's buffers.
// It is recomputed on demand, never maintained incrementally.
type SessionStats struct {
	SessionID        string   `json:"session_id"`
	Frames           int      `json:"frames"`
	AverageAlignment float64  `json:"average_alignment"`
	StabilityScore   float64  `json:"stability_score"`
	SymmetryScore    float64  `json:"symmetry_score"`
	FatigueDetected  bool     `json:"fatigue_detected"`
	PosesPerformed   []string `json:"poses_performed"`
	DurationSeconds  float64  `json:"duration_seconds"`
}

// SessionSummary is the final record of a completed session.
type SessionSummary struct {
	SessionID        string    `json:"session_id"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	DurationSeconds  float64   `json:"duration_seconds"`
	Frames           int       `json:"frames"`
	AverageAlignment float64   `json:"average_alignment"`
	StabilityScore   float64   `json:"stability_score"`
	SymmetryScore    float64   `json:"symmetry_score"`
	FatigueDetected  bool      `json:"fatigue_detected"`
	PosesPerformed   []string  `json:"poses_performed"`
}
