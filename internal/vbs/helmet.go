package vbs

import "strings"

// HelmetState is the closed headgear enum gating face visibility and
// permissible descriptive text. Exactly one state applies per subject.
type HelmetState int

const (
	HelmetOff HelmetState = iota
	HelmetInHand
	HelmetVisorUp
	HelmetVisorDown
)

// String returns the canonical wire name of the state.
func (h HelmetState) String() string {
	switch h {
	case HelmetOff:
		return "OFF"
	case HelmetInHand:
		return "IN_HAND"
	case HelmetVisorUp:
		return "VISOR_UP"
	case HelmetVisorDown:
		return "VISOR_DOWN"
	default:
		return "OFF"
	}
}

// Sealed reports whether the helmet fully encloses the face.
func (h HelmetState) Sealed() bool {
	return h == HelmetVisorDown
}

// FaceVisible reports whether the subject's face can appear in frame.
func (h HelmetState) FaceVisible() bool {
	return h != HelmetVisorDown
}

// ParseHelmetState maps a wire name onto the enum. Unknown input yields
// HelmetOff.
func ParseHelmetState(s string) HelmetState {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN_HAND":
		return HelmetInHand
	case "VISOR_UP":
		return HelmetVisorUp
	case "VISOR_DOWN":
		return HelmetVisorDown
	default:
		return HelmetOff
	}
}

// HelmetStateFromGear derives the headgear state from a scene-wide gear
// state tag (e.g. "suited_sealed", "suited_visor_up", "helmet_in_hand",
// "casual"). The enum is the single source of truth downstream; nothing
// re-derives visibility from emitted text.
func HelmetStateFromGear(gear string) HelmetState {
	g := strings.ToLower(strings.TrimSpace(gear))
	switch {
	case strings.Contains(g, "sealed"), strings.Contains(g, "visor_down"):
		return HelmetVisorDown
	case strings.Contains(g, "visor_up"):
		return HelmetVisorUp
	case strings.Contains(g, "in_hand"), strings.Contains(g, "carried"):
		return HelmetInHand
	default:
		return HelmetOff
	}
}

// FaceSegmentPolicy controls when a character's face segment tag is
// serialized into the prompt.
type FaceSegmentPolicy int

const (
	FaceSegmentIfVisible FaceSegmentPolicy = iota
	FaceSegmentAlways
	FaceSegmentNever
)

// String returns the canonical wire name of the policy.
func (p FaceSegmentPolicy) String() string {
	switch p {
	case FaceSegmentAlways:
		return "ALWAYS"
	case FaceSegmentNever:
		return "NEVER"
	default:
		return "IF_FACE_VISIBLE"
	}
}

// ParseFaceSegmentPolicy maps a wire name onto the enum. Unknown input
// yields FaceSegmentIfVisible.
func ParseFaceSegmentPolicy(s string) FaceSegmentPolicy {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALWAYS":
		return FaceSegmentAlways
	case "NEVER":
		return FaceSegmentNever
	default:
		return FaceSegmentIfVisible
	}
}

// PhaseKind discriminates the context phase variant.
type PhaseKind int

const (
	PhaseDefault PhaseKind = iota
	PhaseNamed
)

// ContextPhase is a closed tagged variant distinguishing narrative-state
// appearance variants ("default" versus a named phase such as "arrival"
// or "transit"). Selection switches on Kind rather than comparing raw
// strings scattered through the resolver.
type ContextPhase struct {
	Kind PhaseKind
	Name string
}

// DefaultPhase returns the default variant.
func DefaultPhase() ContextPhase {
	return ContextPhase{Kind: PhaseDefault}
}

// NamedPhase returns a named variant; "default" and empty input collapse
// onto the default variant.
func NamedPhase(name string) ContextPhase {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "default" {
		return DefaultPhase()
	}
	return ContextPhase{Kind: PhaseNamed, Name: n}
}

// Is reports whether the phase matches the given name under the same
// normalization used by NamedPhase.
func (p ContextPhase) Is(name string) bool {
	return p == NamedPhase(name)
}

// String returns the canonical name of the phase.
func (p ContextPhase) String() string {
	if p.Kind == PhaseDefault {
		return "default"
	}
	return p.Name
}

// LocationContext is one character-and-location appearance variant: a base
// description, the three conditional helmet-state fragments, a face-segment
// policy, and the phase tag.
type LocationContext struct {
	Character         string
	Location          string
	BaseDescription   string
	HelmetOffFragment string
	VisorUpFragment   string
	VisorDownFragment string
	FaceSegmentPolicy FaceSegmentPolicy
	Phase             ContextPhase
}
