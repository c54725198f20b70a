// Package safety adapts pose rules to an individual before scoring:
// it rejects contraindicated poses outright and shifts angle
// thresholds by experience level and medical condition.
package safety

import (
	"fmt"
	"strings"

	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/pose"
)

// Per-level tolerance applied to angle thresholds, in degrees. A
// positive tolerance loosens minimums and raises maximums.
const (
	beginnerTolerance = 10.0
	advancedTolerance = -5.0
)

// Adaptation is the outcome of adapting a rule set to a profile. When
// Allowed is false the rule engine must never run; Rules is empty and
// Reason explains the rejection.
type Adaptation struct {
	Allowed   bool
	Rules     pose.RuleSet
	Reason    string
	RiskLevel string
}

// Engine holds the static contraindication and condition-adaptation
// tables loaded once at startup.
type Engine struct {
	tables Tables
}

// NewEngine creates a safety engine over the given tables. Missing
// condition tables fall back to the built-in defaults.
func NewEngine(tables Tables) *Engine {
	if tables.Contraindications == nil {
		tables.Contraindications = make(map[string][]string)
	}
	if tables.Conditions == nil {
		tables.Conditions = DefaultConditionTable()
	}
	return &Engine{tables: tables}
}

// Adapt gates the pose on contraindications, then returns a deep copy
// of base with thresholds adjusted for the profile. The base rule set
// is never mutated.
func (e *Engine) Adapt(poseName string, base pose.RuleSet, profile model.UserProfile) Adaptation {
	if condition, hit := e.contraindicated(poseName, profile); hit {
		return Adaptation{
			Allowed:   false,
			Rules:     pose.NewRuleSet(),
			Reason:    fmt.Sprintf("Pose contraindicated due to %s", condition),
			RiskLevel: model.RiskHigh,
		}
	}

	adapted := base.Clone()
	applyLevelTolerance(adapted, profile.Level)
	risky := e.applyConditionReductions(adapted, profile)

	risk := model.RiskLow
	if risky {
		risk = model.RiskMedium
	}
	return Adaptation{
		Allowed:   true,
		Rules:     adapted,
		RiskLevel: risk,
	}
}

// contraindicated returns the first profile condition found in the
// pose's contraindication set.
func (e *Engine) contraindicated(poseName string, profile model.UserProfile) (string, bool) {
	forbidden := e.tables.Contraindications[poseName]
	for _, condition := range profile.Conditions {
		for _, f := range forbidden {
			if condition == strings.ToLower(strings.TrimSpace(f)) {
				return condition, true
			}
		}
	}
	return "", false
}

// applyLevelTolerance shifts every angle-named threshold by the
// level's tolerance: minimums loosen for beginners and tighten for
// advanced practitioners, other angle bounds move the opposite way.
// Intermediate and unknown levels leave the rules untouched.
func applyLevelTolerance(rules pose.RuleSet, level model.Level) {
	var tolerance float64
	switch level {
	case model.LevelBeginner:
		tolerance = beginnerTolerance
	case model.LevelAdvanced:
		tolerance = advancedTolerance
	default:
		return
	}
	for key, value := range rules.Thresholds {
		if !strings.Contains(key, "angle") {
			continue
		}
		if strings.Contains(key, "min") {
			rules.Thresholds[key] = value - tolerance
		} else {
			rules.Thresholds[key] = value + tolerance
		}
	}
}

// applyConditionReductions scales thresholds by the per-condition
// reduction factors and reports whether any present condition raises
// risk. Reductions compound when multiple conditions apply.
func (e *Engine) applyConditionReductions(rules pose.RuleSet, profile model.UserProfile) bool {
	risky := false
	for _, condition := range profile.Conditions {
		adaptation, ok := e.tables.Conditions[condition]
		if !ok {
			continue
		}
		if adaptation.RiskIncrease > 0 {
			risky = true
		}
		if adaptation.SpineExtensionReduction > 0 {
			if v, ok := rules.Threshold(pose.KeySpineExtensionMin); ok {
				rules.Thresholds[pose.KeySpineExtensionMin] = v * (1 - adaptation.SpineExtensionReduction)
			}
		}
	}
	return risky
}
