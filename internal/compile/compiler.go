// Package compile is phase C: pure, order-preserving serialization of a
// completed Visual Beat Spec into final prompt text. Nothing is computed
// or invented here; the emission order governs encoder attention and is
// never changed.
package compile

import (
	"regexp"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	multiComma = regexp.MustCompile(`(,\s*)+,`)
	segmentTag = regexp.MustCompile(`<segment:[^>]*>`)
)

// Prompt serializes the spec. Invoking it twice on an unmodified spec
// yields identical output. All fields join with ", " except segment tags,
// which concatenate with no separating whitespace at the very end.
func Prompt(spec *vbs.Spec) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(spec.Shot.ShotType)
	add(spec.Shot.DepthOfField)
	add(spec.Shot.CameraAngle)
	add(spec.Shot.Composition)

	// The identity trigger leads each description by phase A contract, so
	// the trigger → description order falls out of a single field.
	for _, s := range spec.Subjects {
		add(s.Description)
		add(s.Action)
		if s.Expression.Resolved && !s.Expression.Null {
			add(s.Expression.Text)
		}
		add(s.Position)
	}

	add(spec.Environment.LocationVisual)
	for _, a := range spec.Environment.Anchors {
		add(a)
	}
	add(spec.Environment.Lighting)
	add(spec.Environment.Atmosphere)
	add(spec.Environment.FX)
	for _, p := range spec.Environment.Props {
		add(p)
	}

	if spec.Vehicle != nil {
		add(spec.Vehicle.Description)
		add(spec.Vehicle.SpatialNote)
	}

	add(spec.Environment.ColorGrade)

	text := cleanup(strings.Join(parts, ", "))

	tags := segmentTags(spec)
	if tags == "" {
		return text
	}
	if text == "" {
		return tags
	}
	return text + ", " + tags
}

func segmentTags(spec *vbs.Spec) string {
	var sb strings.Builder
	for _, s := range spec.Subjects {
		if t := strings.TrimSpace(s.Segments.Clothing); t != "" {
			sb.WriteString(t)
		}
		if s.EmitFaceSegment {
			if t := strings.TrimSpace(s.Segments.Face); t != "" {
				sb.WriteString(t)
			}
		}
	}
	return sb.String()
}

// cleanup collapses repeated commas and whitespace. Content is never
// dropped or reordered here.
func cleanup(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiComma.ReplaceAllString(text, ",")
	text = strings.Trim(text, ", ")
	return text
}

// EstimateTokens approximates the encoder token count of a prompt: text
// length divided by four, with segment tags excluded from the count.
func EstimateTokens(prompt string) int {
	stripped := segmentTag.ReplaceAllString(prompt, "")
	return len(strings.TrimSpace(stripped)) / 4
}
