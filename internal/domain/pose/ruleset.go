package pose

// Rule keys understood by the evaluator. Knowledge bases are free to
// carry additional keys; unknown keys are ignored by evaluation but
// still travel through adaptation.
const (
	KeyKneeAngleMin           = "knee_angle_min"
	KeyElbowAngleMin          = "elbow_angle_min"
	KeyHipHeightAboveShoulder = "hip_height_above_shoulder"
	KeySpineExtensionMin      = "spine_extension_min"
	KeyPelvisGrounded         = "pelvis_grounded"
	KeyFrontKneeAngleMin      = "front_knee_angle_min"
	KeyFrontKneeAngleMax      = "front_knee_angle_max"
	KeyBackKneeAngleMin       = "back_knee_angle_min"
	KeyHeelHeightMax          = "heel_height_max"
	KeyArmsOverhead           = "arms_overhead"
	KeySpineVertical          = "spine_vertical"
	KeyFeetTogether           = "feet_together"
)

// RuleSet holds the alignment rules for one pose: numeric thresholds
// and boolean flags keyed by rule name. Templates loaded from the
// knowledge base are immutable; adaptation always works on a Clone.
type RuleSet struct {
	Thresholds map[string]float64
	Flags      map[string]bool
}

// NewRuleSet returns an empty, initialized rule set.
func NewRuleSet() RuleSet {
	return RuleSet{
		Thresholds: make(map[string]float64),
		Flags:      make(map[string]bool),
	}
}

// Empty reports whether the set carries no rules at all. An empty set
// for a requested pose means "pose unrecognized", not "perfectly
// aligned".
func (r RuleSet) Empty() bool {
	return len(r.Thresholds) == 0 && len(r.Flags) == 0
}

// Clone returns a deep copy safe to mutate.
func (r RuleSet) Clone() RuleSet {
	out := RuleSet{
		Thresholds: make(map[string]float64, len(r.Thresholds)),
		Flags:      make(map[string]bool, len(r.Flags)),
	}
	for k, v := range r.Thresholds {
		out.Thresholds[k] = v
	}
	for k, v := range r.Flags {
		out.Flags[k] = v
	}
	return out
}

// Threshold returns a numeric rule value and whether it is present.
func (r RuleSet) Threshold(key string) (float64, bool) {
	v, ok := r.Thresholds[key]
	return v, ok
}

// Flag returns true when a boolean rule is present and enabled.
func (r RuleSet) Flag(key string) bool {
	return r.Flags[key]
}
