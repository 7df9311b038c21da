package specbuild

import (
	"regexp"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Substrings that mark a clause as encoding a headgear state. Every such
// clause is stripped from the base description before the single current
// state fragment is appended.
var headgearTerms = []string{"helmet", "visor", "seal", "faceplate"}

// Hair detail is never permissible on a sealed subject.
var hairTerms = []string{"hair", "ponytail", "braid", "bangs", "curls", "fringe"}

var segmentTagPattern = regexp.MustCompile(`<segment:[^>]*>`)

// sealedFallbackFragment is used when a visor-down fragment survives
// sanitization with nothing left. It deliberately avoids every banned term.
const sealedFallbackFragment = "face fully hidden behind a dark reflective faceguard"

// ApplyHelmetState rewrites a description so the emitted text encodes one,
// and only one, coherent headgear state. Prior helmet/visor/seal clauses and
// stray segment tags are stripped, then the fragment for the current state
// is appended. For VISOR_DOWN the result additionally never carries hair,
// visor, or helmet substrings, regardless of input.
func ApplyHelmetState(description string, state vbs.HelmetState, ctx vbs.LocationContext) string {
	banned := headgearTerms
	if state.Sealed() {
		banned = append(append([]string(nil), headgearTerms...), hairTerms...)
	}

	base := stripClauses(description, banned)
	fragment := fragmentFor(state, ctx)
	if state.Sealed() {
		fragment = stripClauses(fragment, banned)
		if strings.TrimSpace(fragment) == "" {
			fragment = sealedFallbackFragment
		}
	}

	switch {
	case base == "":
		return fragment
	case fragment == "":
		return base
	default:
		return base + ", " + fragment
	}
}

func fragmentFor(state vbs.HelmetState, ctx vbs.LocationContext) string {
	switch state {
	case vbs.HelmetVisorDown:
		return strings.TrimSpace(ctx.VisorDownFragment)
	case vbs.HelmetVisorUp:
		return strings.TrimSpace(ctx.VisorUpFragment)
	case vbs.HelmetInHand:
		// The off fragment may itself place the helmet somewhere; strip
		// those clauses so the carried clause is the only headgear state.
		frag := stripClauses(ctx.HelmetOffFragment, headgearTerms)
		if frag == "" {
			return "helmet carried in hand"
		}
		return frag + ", helmet carried in hand"
	default:
		return strings.TrimSpace(ctx.HelmetOffFragment)
	}
}

// stripClauses drops every comma-separated clause containing one of the
// banned substrings, and removes segment tags wherever they appear.
func stripClauses(text string, banned []string) string {
	text = segmentTagPattern.ReplaceAllString(text, "")
	parts := strings.Split(text, ",")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		clause := strings.TrimSpace(part)
		if clause == "" {
			continue
		}
		if containsAny(clause, banned) {
			continue
		}
		kept = append(kept, clause)
	}
	return strings.Join(kept, ", ")
}

func containsAny(clause string, terms []string) bool {
	lower := strings.ToLower(clause)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// StripHairTerms removes hair-detail clauses from a description. Used by
// the repair pass when hair text co-occurs with a sealed subject.
func StripHairTerms(description string) string {
	return stripClauses(description, hairTerms)
}
