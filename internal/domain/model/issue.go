package model

// Issue is a closed enumeration of biomechanical issue codes emitted
// by the rule engine. Correction libraries key their phrases on these
// codes; an unmapped code is a knowledge-base gap, not a new issue.
type Issue string

// Issue codes, one per failing rule group.
const (
	IssueKneesBent           Issue = "knees_bent"
	IssueElbowsBent          Issue = "elbows_bent"
	IssueHipsLow             Issue = "hips_low"
	IssueSpineMisaligned     Issue = "spine_misaligned"
	IssuePelvisLifted        Issue = "pelvis_lifted"
	IssueFrontKneeTooBent    Issue = "front_knee_too_bent"
	IssueFrontKneeShallow    Issue = "front_knee_shallow"
	IssueBackKneeBent        Issue = "back_knee_bent"
	IssueHeelsLifted         Issue = "heels_lifted"
	IssueArmsLow             Issue = "arms_low"
	IssueFeetApart           Issue = "feet_apart"
	IssuePoseContraindicated Issue = "pose_contraindicated"
	IssueEvaluationError     Issue = "evaluation_error"
)

// Issues is an ordered, deduplicated list of issue codes.
type Issues []Issue

// Append adds an issue preserving first-encountered order; duplicates
// are dropped.
func (is Issues) Append(issue Issue) Issues {
	for _, existing := range is {
		if existing == issue {
			return is
		}
	}
	return append(is, issue)
}

// Strings converts the list for transport layers.
func (is Issues) Strings() []string {
	out := make([]string, len(is))
	for i, issue := range is {
		out[i] = string(issue)
	}
	return out
}

// Truncate caps the list at n issues for downstream coaching.
func (is Issues) Truncate(n int) Issues {
	if len(is) <= n {
		return is
	}
	return is[:n]
}
