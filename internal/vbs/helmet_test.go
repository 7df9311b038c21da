package vbs

import "testing"

func TestHelmetStateRoundtrip(t *testing.T) {
	for _, state := range []HelmetState{HelmetOff, HelmetInHand, HelmetVisorUp, HelmetVisorDown} {
		if got := ParseHelmetState(state.String()); got != state {
			t.Fatalf("roundtrip failed for %s: got %s", state, got)
		}
	}
}

func TestParseHelmetStateUnknownIsOff(t *testing.T) {
	for _, in := range []string{"", "garbage", "HELMET"} {
		if got := ParseHelmetState(in); got != HelmetOff {
			t.Fatalf("ParseHelmetState(%q) = %s, want OFF", in, got)
		}
	}
}

func TestHelmetStateVisibility(t *testing.T) {
	if !HelmetVisorDown.Sealed() || HelmetVisorDown.FaceVisible() {
		t.Fatalf("VISOR_DOWN must be sealed with no visible face")
	}
	for _, state := range []HelmetState{HelmetOff, HelmetInHand, HelmetVisorUp} {
		if state.Sealed() || !state.FaceVisible() {
			t.Fatalf("%s must not be sealed and must show the face", state)
		}
	}
}

func TestHelmetStateFromGear(t *testing.T) {
	cases := map[string]HelmetState{
		"suited_sealed":   HelmetVisorDown,
		"visor_down":      HelmetVisorDown,
		"suited_visor_up": HelmetVisorUp,
		"helmet_in_hand":  HelmetInHand,
		"helmet_carried":  HelmetInHand,
		"casual":          HelmetOff,
		"":                HelmetOff,
	}
	for gear, want := range cases {
		if got := HelmetStateFromGear(gear); got != want {
			t.Fatalf("HelmetStateFromGear(%q) = %s, want %s", gear, got, want)
		}
	}
}

func TestContextPhaseNormalization(t *testing.T) {
	if NamedPhase("") != DefaultPhase() {
		t.Fatalf("empty phase must collapse to default")
	}
	if NamedPhase("Default") != DefaultPhase() {
		t.Fatalf("the literal name must collapse to default")
	}
	p := NamedPhase("  Arrival ")
	if p.Kind != PhaseNamed || p.Name != "arrival" {
		t.Fatalf("named phase not normalized: %+v", p)
	}
	if !p.Is("ARRIVAL") {
		t.Fatalf("Is must match under normalization")
	}
	if p.Is("transit") {
		t.Fatalf("Is must not match a different phase")
	}
}

func TestParseFaceSegmentPolicy(t *testing.T) {
	cases := map[string]FaceSegmentPolicy{
		"ALWAYS":          FaceSegmentAlways,
		"never":           FaceSegmentNever,
		"IF_FACE_VISIBLE": FaceSegmentIfVisible,
		"":                FaceSegmentIfVisible,
	}
	for in, want := range cases {
		if got := ParseFaceSegmentPolicy(in); got != want {
			t.Fatalf("ParseFaceSegmentPolicy(%q) = %s, want %s", in, got, want)
		}
	}
}
