// Package correction is the deterministic fallback translator from
// issue codes to human-readable correction phrases. It never talks to
// a network service and never fails.
package correction

import "github.com/asanakit/surya/internal/domain/model"

// Priority levels reported alongside corrections.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
)

// Issue count above which the correction priority escalates.
const mediumPriorityThreshold = 2

// Fixed phrases for the empty and unknown-pose cases.
const (
	Affirmation     = "Excellent alignment. Maintain steady breathing."
	UnknownPoseHint = "Pose not found in knowledge base."
	GenericReminder = "Focus on your alignment and breathing."
)

// Phrases joined into one spoken fallback sentence.
const maxSpokenPhrases = 2

// Library maps pose name to its issue-code phrase table.
type Library map[string]map[string]string

// Result carries the corrections for one evaluated frame.
type Result struct {
	PoseName string   `json:"pose_name"`
	Issues   []string `json:"biomechanical_issues"`
	Phrases  []string `json:"verbal_corrections"`
	Priority string   `json:"priority_level"`
}

// Mapper resolves issue codes against a static correction library.
type Mapper struct {
	lib Library
}

// NewMapper creates a correction mapper over the given library.
func NewMapper(lib Library) *Mapper {
	if lib == nil {
		lib = make(Library)
	}
	return &Mapper{lib: lib}
}

// Corrections maps issues to pose-specific phrases. Issues without a
// phrase entry are silently dropped; no issues yields the fixed
// affirmation. Priority is medium only when more than two issues were
// detected.
func (m *Mapper) Corrections(poseName string, issues model.Issues) Result {
	result := Result{
		PoseName: poseName,
		Issues:   issues.Strings(),
		Priority: PriorityLow,
	}
	if len(issues) > mediumPriorityThreshold {
		result.Priority = PriorityMedium
	}

	phrases, known := m.lib[poseName]
	if !known {
		result.Phrases = []string{UnknownPoseHint}
		return result
	}
	if len(issues) == 0 {
		result.Phrases = []string{Affirmation}
		return result
	}
	for _, issue := range issues {
		if phrase, ok := phrases[string(issue)]; ok {
			result.Phrases = append(result.Phrases, phrase)
		}
	}
	return result
}

// Spoken folds a result into a single fallback coaching sentence,
// limited to the first two phrases. It always returns something.
func (r Result) Spoken() string {
	if len(r.Phrases) == 0 {
		return GenericReminder
	}
	sentence := r.Phrases[0]
	if len(r.Phrases) >= maxSpokenPhrases {
		sentence += " " + r.Phrases[1]
	}
	return sentence
}
