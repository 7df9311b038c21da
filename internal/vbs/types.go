// Package vbs defines the Visual Beat Spec: the structured intermediate
// representation compiled into one beat's rendering prompt.
package vbs

// ModelRoute selects the rendering backend variant for a beat.
type ModelRoute string

const (
	// RouteFaceDetail is used whenever at least one subject's face is visible.
	RouteFaceDetail ModelRoute = "face-detail"
	// RouteGeneric is used when no face is visible in the frame.
	RouteGeneric ModelRoute = "generic"
)

// ShotSpec describes the camera setup for a beat.
type ShotSpec struct {
	ShotType     string
	CameraAngle  string
	Composition  string // creative slot, empty until fill-in
	DepthOfField string
}

// Expression is a tri-state creative slot: pending, explicitly null (face
// not visible), or populated text. The explicit null is distinct from
// "not yet populated" so later phases can tell "not applicable" from
// "pending".
type Expression struct {
	Resolved bool
	Null     bool
	Text     string
}

// NullExpression marks the slot as resolved with no permissible expression.
func NullExpression() Expression {
	return Expression{Resolved: true, Null: true}
}

// TextExpression marks the slot as resolved with concrete text.
func TextExpression(text string) Expression {
	return Expression{Resolved: true, Text: text}
}

// Segments holds the rendering-backend segment tags for one subject.
// Fields carry the full tag text (e.g. "<segment:flightsuit>").
type Segments struct {
	Clothing string
	Face     string
}

// Subject is one character present in a beat.
type Subject struct {
	CharacterName   string
	IdentityTrigger string
	Description     string
	Action          string // creative slot, empty until fill-in
	Expression      Expression
	Position        string
	FaceVisible     bool
	HelmetState     HelmetState
	FacePolicy      FaceSegmentPolicy
	Segments        Segments
	// EmitFaceSegment controls whether the face segment tag is serialized.
	EmitFaceSegment bool
}

// Environment describes the location side of a beat.
type Environment struct {
	LocationShorthand string
	LocationVisual    string
	Anchors           []string
	Lighting          string
	Atmosphere        string
	FX                string
	Props             []string
	ColorGrade        string
}

// Vehicle is an optional vehicle present in the frame.
type Vehicle struct {
	Description string
	SpatialNote string // creative slot, empty until fill-in
}

// TokenBudget allocates the encoder's effective input length per semantic
// field. Sub-allocations sum to Total within integer rounding.
type TokenBudget struct {
	Total       int
	Composition int
	Character1  int
	Character2  int
	Environment int
	Atmosphere  int
	Segments    int
}

// Constraints carries the budget and the compaction contract for a beat.
type Constraints struct {
	TokenBudget         TokenBudget
	SegmentPolicy       string
	CompactionDropOrder []string
}

// SceneState is the immutable snapshot of scene-level continuity consumed
// by the compiler. It is produced and mutated by the surrounding pipeline,
// never by this package.
type SceneState struct {
	CharactersPresent  []string
	GearState          string
	Vehicle            string // empty when no vehicle in scene
	CharacterPositions map[string]string
	CharacterPhases    map[string]string
}

// Clone returns a deep copy so a pipeline instance can thread state forward
// without sharing maps across beats.
func (s SceneState) Clone() SceneState {
	out := s
	out.CharactersPresent = append([]string(nil), s.CharactersPresent...)
	out.CharacterPositions = make(map[string]string, len(s.CharacterPositions))
	for k, v := range s.CharacterPositions {
		out.CharacterPositions[k] = v
	}
	out.CharacterPhases = make(map[string]string, len(s.CharacterPhases))
	for k, v := range s.CharacterPhases {
		out.CharacterPhases[k] = v
	}
	return out
}

// Character is the identity record for one character.
type Character struct {
	Name            string
	IdentityTrigger string
	ClothingSegment string
	FaceSegment     string
}

// Location is the visual record for one location.
type Location struct {
	Name       string
	Shorthand  string
	Visual     string
	Anchors    []string
	Lighting   string
	Atmosphere string
	FX         string
	Props      []string
	ColorGrade string
}

// Spec is the unit of work: one VisualBeatSpec per beat.
type Spec struct {
	BeatID              string
	SceneNumber         int
	TemplateType        string
	ModelRoute          ModelRoute
	Shot                ShotSpec
	Subjects            []Subject
	Environment         Environment
	Vehicle             *Vehicle
	Constraints         Constraints
	PreviousBeatSummary string
	StateSnapshot       SceneState
}

// DefaultCompactionDropOrder is the priority order in which content is
// destructively reduced when the compiled text exceeds the token budget.
var DefaultCompactionDropOrder = []string{
	"vehicle.spatialNote",
	"environment.props",
	"environment.fx",
	"environment.atmosphere",
	"subject2.description",
}
