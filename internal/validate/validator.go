package validate

import (
	"fmt"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/compile"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

var hairTerms = []string{"hair", "ponytail", "braid", "bangs", "curls", "fringe"}

// Check runs every invariant contract against the compiled text and the
// spec it came from. The enum on the subject is the source of truth for
// visibility; nothing is re-derived from the emitted text.
func Check(spec *vbs.Spec, prompt string) []Issue {
	var issues []Issue

	for i, s := range spec.Subjects {
		if s.IdentityTrigger != "" && !strings.Contains(prompt, s.IdentityTrigger) {
			issues = append(issues, Issue{
				Code:         IssueMissingTrigger,
				Severity:     SeverityError,
				SubjectIndex: i,
				Field:        "description",
				Detail:       fmt.Sprintf("identity trigger %q absent from compiled text", s.IdentityTrigger),
			})
		}

		if s.HelmetState.Sealed() {
			if term, found := findHairTerm(s.Description); found {
				issues = append(issues, Issue{
					Code:         IssueHairWithSealed,
					Severity:     SeverityError,
					SubjectIndex: i,
					Field:        "description",
					Detail:       fmt.Sprintf("hair term %q on sealed subject", term),
				})
			}
			if s.Expression.Resolved && !s.Expression.Null {
				issues = append(issues, Issue{
					Code:         IssueExpressionOnSealed,
					Severity:     SeverityError,
					SubjectIndex: i,
					Field:        "expression",
					Detail:       "sealed subject has a non-null expression",
				})
			}
		}

		if s.FaceVisible && s.Segments.Face != "" && !strings.Contains(prompt, s.Segments.Face) {
			issues = append(issues, Issue{
				Code:         IssueMissingFaceSegment,
				Severity:     SeverityWarning,
				SubjectIndex: i,
				Field:        "segments.face",
				Detail:       fmt.Sprintf("face segment tag %s not emitted", s.Segments.Face),
			})
		}
	}

	if estimated := compile.EstimateTokens(prompt); estimated > spec.Constraints.TokenBudget.Total {
		issues = append(issues, Issue{
			Code:         IssueTokenBudgetExceeded,
			Severity:     SeverityError,
			SubjectIndex: -1,
			Field:        "prompt",
			Detail:       fmt.Sprintf("estimated %d tokens over budget %d", estimated, spec.Constraints.TokenBudget.Total),
		})
	}

	return issues
}

func findHairTerm(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, t := range hairTerms {
		if strings.Contains(lower, t) {
			return t, true
		}
	}
	return "", false
}
