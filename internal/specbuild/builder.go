// Package specbuild is phase A of the beat pipeline: deterministic
// enrichment of a beat into a complete Visual Beat Spec skeleton. Only the
// creative slots (shot composition, subject actions, visible expressions,
// the vehicle spatial note) are left for the fill-in phase.
package specbuild

import (
	"fmt"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/resolver"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

const (
	defaultShotType     = "medium shot"
	defaultCameraAngle  = "eye level"
	defaultTemplate     = "character-beat"
	environmentTemplate = "environment-beat"
)

// Request carries every fact phase A needs. All lookups happen before the
// build so the build itself stays deterministic and side-effect free.
type Request struct {
	Beat narrative.Beat
	// SceneLocation is the location record for the beat's resolved location.
	SceneLocation vbs.Location
	// DefaultLocation is the scene's default location name. When a beat
	// overrides the location, context resolution still falls back here.
	DefaultLocation     string
	PreviousLocation    string
	PreviousBeatSummary string
	State               vbs.SceneState
	// Characters indexes identity records by character name.
	Characters map[string]vbs.Character
	// Contexts indexes each character's location-context records, in
	// source order, by character name.
	Contexts map[string][]vbs.LocationContext
}

// Build produces the complete deterministic VBS for a beat. A character
// present in the scene but without a resolvable context is dropped from the
// subject list; a beat with zero subjects and no environment visual is the
// one unrecoverable condition.
func Build(req Request) (*vbs.Spec, error) {
	subjects := buildSubjects(req)

	env := buildEnvironment(req.Beat, req.SceneLocation)
	if len(subjects) == 0 && strings.TrimSpace(env.LocationVisual) == "" {
		return nil, fmt.Errorf("beat %s: no resolvable subjects and no environment data", req.Beat.ID)
	}

	shotType := strings.TrimSpace(req.Beat.ShotType)
	if shotType == "" {
		shotType = defaultShotType
	}
	cameraAngle := strings.TrimSpace(req.Beat.CameraAngle)
	if cameraAngle == "" {
		cameraAngle = defaultCameraAngle
	}

	var vehicle *vbs.Vehicle
	if v := strings.TrimSpace(req.State.Vehicle); v != "" {
		vehicle = &vbs.Vehicle{Description: v}
	}

	spec := &vbs.Spec{
		BeatID:       req.Beat.ID,
		SceneNumber:  req.Beat.SceneNumber,
		TemplateType: templateType(req.Beat, subjects),
		ModelRoute:   routeFor(subjects),
		Shot: vbs.ShotSpec{
			ShotType:     shotType,
			CameraAngle:  cameraAngle,
			DepthOfField: depthOfField(shotType),
		},
		Subjects:    subjects,
		Environment: env,
		Vehicle:     vehicle,
		Constraints: vbs.Constraints{
			TokenBudget:         ComputeBudget(shotType, subjects, vehicle != nil),
			SegmentPolicy:       "append",
			CompactionDropOrder: append([]string(nil), vbs.DefaultCompactionDropOrder...),
		},
		PreviousBeatSummary: strings.TrimSpace(req.PreviousBeatSummary),
		StateSnapshot:       req.State.Clone(),
	}
	return spec, nil
}

func buildSubjects(req Request) []vbs.Subject {
	helmet := vbs.HelmetStateFromGear(req.State.GearState)

	sceneDefault := strings.TrimSpace(req.DefaultLocation)
	if sceneDefault == "" {
		sceneDefault = req.SceneLocation.Name
	}

	var subjects []vbs.Subject
	for _, name := range req.State.CharactersPresent {
		char, ok := req.Characters[name]
		if !ok {
			logger.Warn("beat %s: no character record for %q, dropping from subjects", req.Beat.ID, name)
			continue
		}
		ctx, ok := resolver.Resolve(resolver.Input{
			BeatLocation:     req.Beat.Location,
			SceneLocation:    sceneDefault,
			PreviousLocation: req.PreviousLocation,
			PersistedPhase:   req.State.CharacterPhases[name],
		}, req.Contexts[name])
		if !ok {
			logger.Warn("beat %s: no location context for %q at %q, dropping from subjects", req.Beat.ID, name, req.SceneLocation.Name)
			continue
		}

		description := ApplyHelmetState(ctx.BaseDescription, helmet, ctx)
		if char.IdentityTrigger != "" {
			// The trigger must appear verbatim in the final text; it leads
			// the description so the compiler emits it first.
			description = char.IdentityTrigger + ", " + description
		}

		subject := vbs.Subject{
			CharacterName:   char.Name,
			IdentityTrigger: char.IdentityTrigger,
			Description:     description,
			Position:        positionFor(req.State, name, len(subjects)),
			FaceVisible:     helmet.FaceVisible(),
			HelmetState:     helmet,
			FacePolicy:      ctx.FaceSegmentPolicy,
		}
		if helmet.Sealed() {
			subject.Expression = vbs.NullExpression()
		}

		subject.Segments.Clothing = char.ClothingSegment
		if ctx.FaceSegmentPolicy != vbs.FaceSegmentNever {
			subject.Segments.Face = char.FaceSegment
		}
		subject.EmitFaceSegment = emitFaceSegment(ctx.FaceSegmentPolicy, subject)

		subjects = append(subjects, subject)
	}
	return subjects
}

func emitFaceSegment(policy vbs.FaceSegmentPolicy, s vbs.Subject) bool {
	if s.Segments.Face == "" {
		return false
	}
	switch policy {
	case vbs.FaceSegmentAlways:
		return true
	case vbs.FaceSegmentIfVisible:
		return s.FaceVisible
	default:
		return false
	}
}

func buildEnvironment(beat narrative.Beat, loc vbs.Location) vbs.Environment {
	env := vbs.Environment{
		LocationShorthand: loc.Shorthand,
		LocationVisual:    loc.Visual,
		Anchors:           append([]string(nil), loc.Anchors...),
		Lighting:          loc.Lighting,
		Atmosphere:        loc.Atmosphere,
		FX:                loc.FX,
		Props:             append([]string(nil), loc.Props...),
		ColorGrade:        loc.ColorGrade,
	}
	if anchor := strings.TrimSpace(beat.VisualAnchor); anchor != "" {
		env.Anchors = append(env.Anchors, anchor)
	}
	return env
}

func routeFor(subjects []vbs.Subject) vbs.ModelRoute {
	for _, s := range subjects {
		if s.FaceVisible {
			return vbs.RouteFaceDetail
		}
	}
	return vbs.RouteGeneric
}

func templateType(beat narrative.Beat, subjects []vbs.Subject) string {
	if t := strings.TrimSpace(beat.TemplateType); t != "" {
		return t
	}
	if len(subjects) == 0 {
		return environmentTemplate
	}
	return defaultTemplate
}

func depthOfField(shotType string) string {
	switch ClassifyShot(shotType) {
	case ClassTight:
		return "shallow depth of field"
	case ClassWide:
		return "deep focus"
	default:
		return ""
	}
}

var defaultPositions = []string{
	"center frame",
	"right of frame",
	"left of frame",
	"background",
}

func positionFor(state vbs.SceneState, name string, index int) string {
	if p, ok := state.CharacterPositions[name]; ok && strings.TrimSpace(p) != "" {
		return p
	}
	if index < len(defaultPositions) {
		return defaultPositions[index]
	}
	return "background"
}
