// Package coach defines the contract for natural-language coaching
// generation. The service treats any Generator as optional: a failure
// is caught at the call site and replaced by the deterministic
// correction mapper, so no result ever depends on this package
// succeeding.
package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/asanakit/surya/internal/domain/model"
)

// Default tone requested from generators.
const DefaultTone = "calm"

// Issues surfaced to a generator per frame.
const maxCoachedIssues = 3

// Generator turns detected issues into one short spoken sentence.
type Generator interface {
	// Coach produces a coaching sentence, honoring ctx for
	// cancellation. Implementations may call remote services and fail.
	Coach(ctx context.Context, poseName string, issues model.Issues, tone string) (string, error)
}

// TemplateGenerator is the built-in deterministic generator. It maps
// issue codes to short imperative phrases and composes them without
// any external dependency, so it cannot fail.
type TemplateGenerator struct {
	phrases map[model.Issue]string
}

// NewTemplateGenerator creates a generator with the default issue
// phrasing.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		phrases: map[model.Issue]string{
			model.IssueKneesBent:        "straighten your knees gently",
			model.IssueElbowsBent:       "extend your elbows fully",
			model.IssueHipsLow:          "lift your hips higher",
			model.IssueSpineMisaligned:  "lengthen through your spine",
			model.IssueHeelsLifted:      "press your heels toward the floor",
			model.IssuePelvisLifted:     "keep your pelvis grounded",
			model.IssueBackKneeBent:     "extend your back leg fully",
			model.IssueFrontKneeTooBent: "avoid pushing your knee too far",
			model.IssueFrontKneeShallow: "sink deeper into your front knee",
			model.IssueArmsLow:          "reach your arms higher overhead",
			model.IssueFeetApart:        "bring your feet together",
		},
	}
}

// Coach composes one sentence from the first three issues. Unknown
// issue codes fall back to their raw code so nothing is lost silently.
func (g *TemplateGenerator) Coach(_ context.Context, _ string, issues model.Issues, _ string) (string, error) {
	if len(issues) == 0 {
		return "Excellent alignment. Maintain steady breathing.", nil
	}
	corrections := make([]string, 0, maxCoachedIssues)
	for _, issue := range issues.Truncate(maxCoachedIssues) {
		phrase, ok := g.phrases[issue]
		if !ok {
			phrase = strings.ReplaceAll(string(issue), "_", " ")
		}
		corrections = append(corrections, phrase)
	}
	return compose(corrections), nil
}

// compose joins up to three corrections into one sentence.
func compose(corrections []string) string {
	switch len(corrections) {
	case 1:
		return fmt.Sprintf("Try to %s.", corrections[0])
	case 2:
		return fmt.Sprintf("%s and %s.", capitalize(corrections[0]), corrections[1])
	default:
		return fmt.Sprintf("%s, %s, and %s.", capitalize(corrections[0]), corrections[1], corrections[2])
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
