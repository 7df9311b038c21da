package resolver

import (
	"testing"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

func contexts() []vbs.LocationContext {
	return []vbs.LocationContext{
		{Character: "Kira", Location: "hangar", BaseDescription: "hangar default", Phase: vbs.DefaultPhase()},
		{Character: "Kira", Location: "hangar", BaseDescription: "hangar arrival", Phase: vbs.NamedPhase("arrival")},
		{Character: "Kira", Location: "cockpit", BaseDescription: "cockpit default", Phase: vbs.DefaultPhase()},
		{Character: "Kira", Location: "cockpit", BaseDescription: "cockpit strapped-in", Phase: vbs.NamedPhase("strapped_in")},
	}
}

func TestResolveBeatLocationOverridesScene(t *testing.T) {
	ctx, ok := Resolve(Input{BeatLocation: "cockpit", SceneLocation: "hangar"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "cockpit default" {
		t.Fatalf("beat location must win over scene default, got %q", ctx.BaseDescription)
	}
}

func TestResolvePersistedPhaseWins(t *testing.T) {
	ctx, ok := Resolve(Input{SceneLocation: "cockpit", PersistedPhase: "strapped_in"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "cockpit strapped-in" {
		t.Fatalf("persisted phase must win, got %q", ctx.BaseDescription)
	}
}

func TestResolveTransitionPrefersArrival(t *testing.T) {
	ctx, ok := Resolve(Input{SceneLocation: "hangar", PreviousLocation: "cockpit"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "hangar arrival" {
		t.Fatalf("location change should prefer the arrival variant, got %q", ctx.BaseDescription)
	}
}

func TestResolveDefaultWhenNoTransition(t *testing.T) {
	ctx, ok := Resolve(Input{SceneLocation: "hangar", PreviousLocation: "hangar"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "hangar default" {
		t.Fatalf("same-location beat should resolve the default variant, got %q", ctx.BaseDescription)
	}
}

func TestResolveFirstCandidateWhenNoDefault(t *testing.T) {
	records := []vbs.LocationContext{
		{Character: "Kira", Location: "airlock", BaseDescription: "airlock cycling", Phase: vbs.NamedPhase("cycling")},
		{Character: "Kira", Location: "airlock", BaseDescription: "airlock waiting", Phase: vbs.NamedPhase("waiting")},
	}
	ctx, ok := Resolve(Input{SceneLocation: "airlock"}, records)
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "airlock cycling" {
		t.Fatalf("source order should break ties, got %q", ctx.BaseDescription)
	}
}

func TestResolveSceneFallbackWhenBeatLocationUnknown(t *testing.T) {
	ctx, ok := Resolve(Input{BeatLocation: "ridge", SceneLocation: "hangar"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution via scene default fallback")
	}
	if ctx.Location != "hangar" {
		t.Fatalf("unknown beat location should fall back to the scene default, got %q", ctx.Location)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	if _, ok := Resolve(Input{SceneLocation: "ridge"}, contexts()); ok {
		t.Fatalf("no context at location must report false, not fail")
	}
}

func TestResolvePersistedPhaseMissingFallsThrough(t *testing.T) {
	ctx, ok := Resolve(Input{SceneLocation: "hangar", PersistedPhase: "wounded"}, contexts())
	if !ok {
		t.Fatalf("expected a resolution")
	}
	if ctx.BaseDescription != "hangar default" {
		t.Fatalf("unknown persisted phase should fall through to default, got %q", ctx.BaseDescription)
	}
}
