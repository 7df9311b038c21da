// Package resolver selects the single applicable appearance variant for a
// character in a beat. Pure functions only; missing data is reported, not
// raised.
package resolver

import (
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Input bundles everything variant selection depends on.
type Input struct {
	// BeatLocation is the beat's own location when it overrides the scene.
	BeatLocation string
	// SceneLocation is the scene's default location.
	SceneLocation string
	// PreviousLocation is where the previous beat took place. Differing
	// from the resolved location signals a transition.
	PreviousLocation string
	// PersistedPhase is the character's current phase from scene state.
	PersistedPhase string
}

// Resolve picks the one applicable LocationContext for a character from its
// candidate records, in source order. The second return is false when no
// candidate exists; callers drop the character from the beat rather than
// failing.
func Resolve(in Input, records []vbs.LocationContext) (vbs.LocationContext, bool) {
	location := strings.TrimSpace(in.BeatLocation)
	if location == "" {
		location = strings.TrimSpace(in.SceneLocation)
	}

	candidates := atLocation(records, location)
	if len(candidates) == 0 && !strings.EqualFold(location, in.SceneLocation) {
		candidates = atLocation(records, in.SceneLocation)
	}
	if len(candidates) == 0 {
		return vbs.LocationContext{}, false
	}

	if phase := strings.TrimSpace(in.PersistedPhase); phase != "" {
		for _, c := range candidates {
			if c.Phase.Is(phase) {
				return c, true
			}
		}
	}

	locationChanged := in.PreviousLocation != "" && !strings.EqualFold(in.PreviousLocation, location)
	if locationChanged {
		for _, c := range candidates {
			if isTransitionPhase(c.Phase) {
				return c, true
			}
		}
	}

	for _, c := range candidates {
		if c.Phase.Kind == vbs.PhaseDefault {
			return c, true
		}
	}

	return candidates[0], true
}

func atLocation(records []vbs.LocationContext, location string) []vbs.LocationContext {
	if strings.TrimSpace(location) == "" {
		return nil
	}
	var out []vbs.LocationContext
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.Location), location) {
			out = append(out, r)
		}
	}
	return out
}

func isTransitionPhase(p vbs.ContextPhase) bool {
	switch p.Kind {
	case vbs.PhaseNamed:
		return p.Name == "arrival" || p.Name == "transit"
	default:
		return false
	}
}
