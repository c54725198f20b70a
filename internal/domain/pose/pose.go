// Package pose holds per-pose alignment rules and the scoring
// algorithm that evaluates a single frame against them.
package pose

import (
	"math"

	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/physics"
)

// Rule group names reported in the passed/failed maps.
const (
	groupKneesExtended  = "knees_extended"
	groupElbowsExtended = "elbows_extended"
	groupHipElevation   = "hip_elevation"
	groupSpineExtension = "spine_extension"
	groupPelvisGrounded = "pelvis_grounded"
	groupFrontKneeBend  = "front_knee_bend"
	groupFrontKneeDepth = "front_knee_depth"
	groupBackKnee       = "back_knee_extension"
	groupHeelsGrounded  = "heels_grounded"
	groupArmsOverhead   = "arms_overhead"
	groupSpineVertical  = "spine_vertical"
	groupFeetTogether   = "feet_together"
)

// Lateral alignment tolerances in normalized image coordinates.
const (
	spineVerticalTolerance = 0.05
	feetTogetherTolerance  = 0.10
)

// Evaluation is the rule engine's verdict for one frame. RiskLevel is
// always "low" here; elevated risk originates in the safety engine.
type Evaluation struct {
	Issues         model.Issues
	AlignmentScore float64
	PassedRules    map[string]bool
	FailedRules    map[string]bool
	RiskLevel      string
}

// Engine evaluates frames against a static per-pose rules map loaded
// once at startup.
type Engine struct {
	rules   map[string]RuleSet
	physics *physics.Engine
}

// NewEngine creates a rule engine over the given pose rule templates.
// The map is not copied; callers must treat it as read-only after
// construction.
func NewEngine(rules map[string]RuleSet) *Engine {
	if rules == nil {
		rules = make(map[string]RuleSet)
	}
	return &Engine{rules: rules, physics: physics.New()}
}

// Rules returns the rule template for the pose, or an empty set when
// the pose name is unknown. Callers must treat an empty set as "pose
// unrecognized".
func (e *Engine) Rules(poseName string) RuleSet {
	if rs, ok := e.rules[poseName]; ok {
		return rs
	}
	return NewRuleSet()
}

// Poses lists the pose names with rule templates.
func (e *Engine) Poses() []string {
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	return names
}

// tally accumulates weighted rule results during evaluation.
type tally struct {
	issues model.Issues
	passed map[string]bool
	failed map[string]bool
	total  int
	score  int
}

// add records one rule-group outcome. A group failing contributes its
// full weight to the total but nothing to the passed count, so an
// asymmetric pose with one bent knee loses the whole knee group.
func (t *tally) add(group string, weight int, pass bool, issue model.Issue) {
	t.total += weight
	if pass {
		t.passed[group] = true
		t.score += weight
		return
	}
	t.failed[group] = false
	t.issues = t.issues.Append(issue)
}

// Evaluate scores a frame's angles and landmarks against the given
// rule set. Rules whose inputs are absent from the frame are skipped
// as not applicable. The full issue list is returned; downstream
// coaching truncates to the first three.
func (e *Engine) Evaluate(poseName string, lm model.Landmarks, angles model.JointAngles, rules RuleSet) Evaluation {
	t := &tally{
		passed: make(map[string]bool),
		failed: make(map[string]bool),
	}

	e.checkPairedMin(t, rules, KeyKneeAngleMin, angles, "left_knee_angle", "right_knee_angle", groupKneesExtended, model.IssueKneesBent)
	e.checkPairedMin(t, rules, KeyElbowAngleMin, angles, "left_elbow_angle", "right_elbow_angle", groupElbowsExtended, model.IssueElbowsBent)
	e.checkHipElevation(t, rules, lm)
	e.checkSpineExtension(t, rules, angles)
	e.checkPelvisGrounded(t, rules, lm)
	e.checkLungeKnees(t, rules, angles)
	e.checkHeelHeight(t, rules, lm)
	e.checkArmsOverhead(t, rules, lm)
	e.checkSpineVertical(t, rules, lm)
	e.checkFeetTogether(t, rules, lm)

	score := 0.0
	if t.total > 0 {
		score = round2(float64(t.score) / float64(t.total) * 100)
	}
	return Evaluation{
		Issues:         t.issues,
		AlignmentScore: score,
		PassedRules:    t.passed,
		FailedRules:    t.failed,
		RiskLevel:      model.RiskLow,
	}
}

// checkPairedMin evaluates a left/right angle pair against a shared
// minimum. Each side is one sub-rule, so the group weighs 2; the group
// passes only when both sides clear the threshold and emits its issue
// once on failure.
func (e *Engine) checkPairedMin(t *tally, rules RuleSet, key string, angles model.JointAngles, leftKey, rightKey, group string, issue model.Issue) {
	threshold, ok := rules.Threshold(key)
	if !ok {
		return
	}
	left, lok := angles[leftKey]
	right, rok := angles[rightKey]
	if !lok || !rok {
		return
	}
	t.add(group, 2, left >= threshold && right >= threshold, issue)
}

func (e *Engine) checkHipElevation(t *tally, rules RuleSet, lm model.Landmarks) {
	if !rules.Flag(KeyHipHeightAboveShoulder) {
		return
	}
	diff, ok := e.physics.HipShoulderHeightDiff(lm)
	if !ok {
		return
	}
	// Positive diff means hips sit above shoulders (smaller y).
	t.add(groupHipElevation, 1, diff > 0, model.IssueHipsLow)
}

func (e *Engine) checkSpineExtension(t *tally, rules RuleSet, angles model.JointAngles) {
	threshold, ok := rules.Threshold(KeySpineExtensionMin)
	if !ok {
		return
	}
	spineAngle, ok := angles["spine_angle"]
	if !ok {
		return
	}
	extension := model.MaxAngle - spineAngle
	t.add(groupSpineExtension, 1, extension >= threshold, model.IssueSpineMisaligned)
}

func (e *Engine) checkPelvisGrounded(t *tally, rules RuleSet, lm model.Landmarks) {
	if !rules.Flag(KeyPelvisGrounded) {
		return
	}
	diff, ok := e.physics.HipShoulderHeightDiff(lm)
	if !ok {
		return
	}
	// Grounded pelvis keeps the hips at or below the shoulders.
	t.add(groupPelvisGrounded, 1, diff <= 0, model.IssuePelvisLifted)
}

// checkLungeKnees evaluates front/back knee bounds. The front knee is
// the more bent side (smaller angle), the back knee the straighter.
func (e *Engine) checkLungeKnees(t *tally, rules RuleSet, angles model.JointAngles) {
	left, lok := angles["left_knee_angle"]
	right, rok := angles["right_knee_angle"]
	if !lok || !rok {
		return
	}
	front := math.Min(left, right)
	back := math.Max(left, right)

	if minThreshold, ok := rules.Threshold(KeyFrontKneeAngleMin); ok {
		t.add(groupFrontKneeBend, 1, front >= minThreshold, model.IssueFrontKneeTooBent)
	}
	if maxThreshold, ok := rules.Threshold(KeyFrontKneeAngleMax); ok {
		t.add(groupFrontKneeDepth, 1, front <= maxThreshold, model.IssueFrontKneeShallow)
	}
	if backThreshold, ok := rules.Threshold(KeyBackKneeAngleMin); ok {
		t.add(groupBackKnee, 1, back >= backThreshold, model.IssueBackKneeBent)
	}
}

func (e *Engine) checkHeelHeight(t *tally, rules RuleSet, lm model.Landmarks) {
	maxLift, ok := rules.Threshold(KeyHeelHeightMax)
	if !ok {
		return
	}
	la, ok1 := lm["left_ankle"]
	ra, ok2 := lm["right_ankle"]
	lh, ok3 := lm["left_heel"]
	rh, ok4 := lm["right_heel"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}
	// Heels lift when they rise above the ankle line (smaller y).
	lift := physics.Midpoint(la, ra).Y - physics.Midpoint(lh, rh).Y
	t.add(groupHeelsGrounded, 1, lift <= maxLift, model.IssueHeelsLifted)
}

func (e *Engine) checkArmsOverhead(t *tally, rules RuleSet, lm model.Landmarks) {
	if !rules.Flag(KeyArmsOverhead) {
		return
	}
	lw, ok1 := lm["left_wrist"]
	rw, ok2 := lm["right_wrist"]
	le, ok3 := lm["left_ear"]
	re, ok4 := lm["right_ear"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}
	t.add(groupArmsOverhead, 1, physics.Midpoint(lw, rw).Y < physics.Midpoint(le, re).Y, model.IssueArmsLow)
}

func (e *Engine) checkSpineVertical(t *tally, rules RuleSet, lm model.Landmarks) {
	if !rules.Flag(KeySpineVertical) {
		return
	}
	ls, ok1 := lm["left_shoulder"]
	rs, ok2 := lm["right_shoulder"]
	lh, ok3 := lm["left_hip"]
	rh, ok4 := lm["right_hip"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}
	offset := math.Abs(physics.Midpoint(ls, rs).X - physics.Midpoint(lh, rh).X)
	t.add(groupSpineVertical, 1, offset <= spineVerticalTolerance, model.IssueSpineMisaligned)
}

func (e *Engine) checkFeetTogether(t *tally, rules RuleSet, lm model.Landmarks) {
	if !rules.Flag(KeyFeetTogether) {
		return
	}
	la, ok1 := lm["left_ankle"]
	ra, ok2 := lm["right_ankle"]
	if !ok1 || !ok2 {
		return
	}
	t.add(groupFeetTogether, 1, math.Abs(la.X-ra.X) <= feetTogetherTolerance, model.IssueFeetApart)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
