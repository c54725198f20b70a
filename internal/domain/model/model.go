// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Angle bounds accepted anywhere in the pipeline, in degrees.
const (
	MinAngle = 0.0
	MaxAngle = 180.0
)

// JointAngles maps a named joint (e.g. "left_knee_angle") to degrees.
// Required keys vary by pose; a missing key means the corresponding
// rule is not applicable, never an error.
type JointAngles map[string]float64

// Landmark is a single body point in normalized image coordinates.
// X and Y are in [0,1] with Y growing downward; Z is relative depth.
type Landmark struct {
	X float64
	Y float64
	Z float64
}

// Landmarks maps a body-point name (e.g. "left_hip") to its position.
type Landmarks map[string]Landmark

// Level is a user's experience level.
type Level string

// Enumerated experience levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel normalizes a raw level string. Unknown levels collapse to
// intermediate, which carries zero tolerance adjustment.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelBeginner:
		return LevelBeginner
	case LevelAdvanced:
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}

// UserProfile carries the experience level and medical conditions that
// drive rule adaptation. Construct with NewUserProfile so conditions
// are normalized and deduplicated.
type UserProfile struct {
	Level      Level
	Conditions []string
	Age        int // 0 means unset
}

// NewUserProfile builds a profile with normalized fields. Condition
// codes are lowercased, trimmed and deduplicated preserving first
// occurrence order.
func NewUserProfile(level string, conditions []string, age int) UserProfile {
	seen := make(map[string]struct{}, len(conditions))
	normalized := make([]string, 0, len(conditions))
	for _, c := range conditions {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		normalized = append(normalized, c)
	}
	return UserProfile{
		Level:      ParseLevel(level),
		Conditions: normalized,
		Age:        age,
	}
}

// HasCondition reports whether the profile carries the given condition
// code. The argument is normalized before comparison.
func (p UserProfile) HasCondition(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range p.Conditions {
		if c == code {
			return true
		}
	}
	return false
}

// FrameMetrics is the per-frame record consumed by the progress
// tracker. It is owned exclusively by one session's tracker.
type FrameMetrics struct {
	PoseName       string
	AlignmentScore float64
	JointAngles    JointAngles
	Timestamp      time.Time
}

// RiskLevel values propagated into evaluation results.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)
