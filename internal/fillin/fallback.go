package fillin

import (
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/specbuild"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// toneExpressions maps emotional-tone keywords onto safe expression
// phrases. First match wins; the order goes from specific to generic.
var toneExpressions = []struct {
	keywords   []string
	expression string
}{
	{[]string{"tense", "fear", "anxious", "dread", "nervous"}, "tense, guarded expression"},
	{[]string{"urgent", "action", "danger", "alarm"}, "focused, determined expression"},
	{[]string{"somber", "grief", "sad", "loss", "mourning"}, "subdued, distant expression"},
	{[]string{"joy", "warm", "hopeful", "relief", "tender"}, "soft, hopeful expression"},
	{[]string{"awe", "wonder", "discovery"}, "wide-eyed, wondering expression"},
	{[]string{"angry", "fury", "rage", "confront"}, "hard, set expression"},
}

const defaultExpression = "calm, attentive expression"

// Fallback derives a structurally complete fill-in result without any model
// call: action from shot class, expression from the beat's emotional tone,
// forced null when the face is not visible. Phase D treats this output
// identically to generated output.
func Fallback(spec *vbs.Spec, beat narrative.Beat) Result {
	class := specbuild.ClassifyShot(spec.Shot.ShotType)

	result := Result{
		ShotComposition: fallbackComposition(class, len(spec.Subjects)),
	}

	for _, s := range spec.Subjects {
		fill := SubjectFill{
			Name:   s.CharacterName,
			Action: fallbackAction(class),
		}
		if s.FaceVisible {
			expr := expressionForTone(beat.EmotionalTone)
			fill.Expression = &expr
		}
		result.Subjects = append(result.Subjects, fill)
	}

	if spec.Vehicle != nil {
		result.VehicleSpatialNote = fallbackSpatialNote(class)
	}
	return result
}

func fallbackAction(class specbuild.ShotClass) string {
	switch class {
	case specbuild.ClassTight:
		return "holds still, attention fixed on the moment at hand"
	case specbuild.ClassWide:
		return "moves through the space, full figure framed against the surroundings"
	default:
		return "engages with the scene, posture alert"
	}
}

func expressionForTone(tone string) string {
	lower := strings.ToLower(tone)
	for _, entry := range toneExpressions {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.expression
			}
		}
	}
	return defaultExpression
}

func fallbackComposition(class specbuild.ShotClass, subjectCount int) string {
	switch {
	case subjectCount == 0:
		return "environment-centered composition, strong leading lines"
	case subjectCount == 1 && class == specbuild.ClassTight:
		return "single subject dominating the frame, background softly blurred"
	case subjectCount == 1:
		return "single subject placed off-center, environment giving context"
	case class == specbuild.ClassWide:
		return "two figures small in frame, environment dominating the composition"
	default:
		return "two subjects sharing the frame, balanced left-right composition"
	}
}

func fallbackSpatialNote(class specbuild.ShotClass) string {
	if class == specbuild.ClassTight {
		return "vehicle edge visible at the side of the frame"
	}
	return "vehicle positioned behind the subjects"
}
