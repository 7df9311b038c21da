package validate

import (
	"fmt"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/specbuild"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Repair mutates the spec to address the given issues, one strategy per
// issue code, and returns a description of every repair applied. Budget
// overruns run a single compaction step per call so each recompile can
// re-measure before more content is destroyed.
func Repair(spec *vbs.Spec, issues []Issue) []string {
	var applied []string
	compacted := false

	for _, issue := range issues {
		switch issue.Code {
		case IssueMissingTrigger:
			s := subjectAt(spec, issue.SubjectIndex)
			if s == nil {
				continue
			}
			s.Description = strings.TrimSpace(s.IdentityTrigger + ", " + s.Description)
			applied = append(applied, fmt.Sprintf("prepended identity trigger for subject %d", issue.SubjectIndex))

		case IssueHairWithSealed:
			s := subjectAt(spec, issue.SubjectIndex)
			if s == nil {
				continue
			}
			s.Description = specbuild.StripHairTerms(s.Description)
			applied = append(applied, fmt.Sprintf("stripped hair detail from subject %d", issue.SubjectIndex))

		case IssueMissingFaceSegment:
			s := subjectAt(spec, issue.SubjectIndex)
			if s == nil {
				continue
			}
			s.EmitFaceSegment = true
			applied = append(applied, fmt.Sprintf("injected face segment tag for subject %d", issue.SubjectIndex))

		case IssueExpressionOnSealed:
			s := subjectAt(spec, issue.SubjectIndex)
			if s == nil {
				continue
			}
			s.Expression = vbs.NullExpression()
			applied = append(applied, fmt.Sprintf("forced expression to null for subject %d", issue.SubjectIndex))

		case IssueTokenBudgetExceeded:
			if compacted {
				continue
			}
			if step, ok := compact(spec); ok {
				applied = append(applied, "compacted "+step)
				compacted = true
			}
		}
	}
	return applied
}

func subjectAt(spec *vbs.Spec, index int) *vbs.Subject {
	if index < 0 || index >= len(spec.Subjects) {
		return nil
	}
	return &spec.Subjects[index]
}

// compact walks the spec's drop order and applies the first step that
// actually reduces content, reporting which step fired.
func compact(spec *vbs.Spec) (string, bool) {
	for _, target := range spec.Constraints.CompactionDropOrder {
		if applyCompaction(spec, target) {
			return target, true
		}
	}
	return "", false
}

func applyCompaction(spec *vbs.Spec, target string) bool {
	switch target {
	case "vehicle.spatialNote":
		if spec.Vehicle != nil && spec.Vehicle.SpatialNote != "" {
			spec.Vehicle.SpatialNote = ""
			return true
		}
	case "environment.props":
		if len(spec.Environment.Props) > 0 {
			spec.Environment.Props = nil
			return true
		}
	case "environment.fx":
		if spec.Environment.FX != "" {
			spec.Environment.FX = ""
			return true
		}
	case "environment.atmosphere":
		if truncated, ok := truncateClauses(spec.Environment.Atmosphere, 1); ok {
			spec.Environment.Atmosphere = truncated
			return true
		}
	case "subject2.description":
		if len(spec.Subjects) > 1 {
			if truncated, ok := truncateClauses(spec.Subjects[1].Description, 2); ok {
				spec.Subjects[1].Description = truncated
				return true
			}
		}
	}
	return false
}

// truncateClauses keeps the first keep comma-separated clauses. The second
// return is false when nothing was removed.
func truncateClauses(text string, keep int) (string, bool) {
	parts := strings.Split(text, ",")
	if len(parts) <= keep {
		return text, false
	}
	kept := make([]string, 0, keep)
	for _, p := range parts[:keep] {
		kept = append(kept, strings.TrimSpace(p))
	}
	return strings.Join(kept, ", "), true
}
