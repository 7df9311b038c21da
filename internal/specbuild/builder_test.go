package specbuild

import (
	"strings"
	"testing"

	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

func testRequest(gear string) Request {
	return Request{
		Beat: narrative.Beat{
			ID:          "s01b01",
			SceneNumber: 1,
			Text:        "Kira checks the console.",
			ShotType:    "close-up shot",
		},
		SceneLocation: vbs.Location{
			Name:      "cockpit",
			Shorthand: "COCKPIT",
			Visual:    "cramped two-seat cockpit, banks of amber instrument lights",
			Lighting:  "low amber glow",
		},
		State: vbs.SceneState{
			CharactersPresent: []string{"Kira"},
			GearState:         gear,
		},
		Characters: map[string]vbs.Character{
			"Kira": {
				Name:            "Kira",
				IdentityTrigger: "kira_v3",
				ClothingSegment: "<segment:flightsuit_kira>",
				FaceSegment:     "<segment:face_kira>",
			},
		},
		Contexts: map[string][]vbs.LocationContext{
			"Kira": {{
				Character:         "Kira",
				Location:          "cockpit",
				BaseDescription:   "compact woman in a grey flightsuit, auburn hair tied back",
				HelmetOffFragment: "helmet racked behind the seat",
				VisorDownFragment: "helmet sealed, mirrored visor down",
				Phase:             vbs.DefaultPhase(),
			}},
		},
	}
}

func TestBuildPrependsIdentityTrigger(t *testing.T) {
	spec, err := Build(testRequest("casual"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(spec.Subjects) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(spec.Subjects))
	}
	if !strings.HasPrefix(spec.Subjects[0].Description, "kira_v3, ") {
		t.Fatalf("identity trigger must lead the description: %q", spec.Subjects[0].Description)
	}
}

func TestBuildSealedSubjectGetsNullExpression(t *testing.T) {
	spec, err := Build(testRequest("suited_sealed"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := spec.Subjects[0]
	if s.FaceVisible {
		t.Fatalf("sealed subject must not have a visible face")
	}
	if !s.Expression.Resolved || !s.Expression.Null {
		t.Fatalf("sealed subject expression must be resolved null, got %+v", s.Expression)
	}
	if spec.ModelRoute != vbs.RouteGeneric {
		t.Fatalf("no visible face should route generic, got %s", spec.ModelRoute)
	}
	if s.EmitFaceSegment {
		t.Fatalf("face segment must not be emitted for a hidden face")
	}
}

func TestBuildVisibleFaceRoutesFaceDetail(t *testing.T) {
	spec, err := Build(testRequest("helmet_in_hand"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec.ModelRoute != vbs.RouteFaceDetail {
		t.Fatalf("visible face should route face-detail, got %s", spec.ModelRoute)
	}
	if !spec.Subjects[0].EmitFaceSegment {
		t.Fatalf("face segment should be emitted for a visible face")
	}
	if spec.Subjects[0].Expression.Resolved {
		t.Fatalf("expression is a creative slot and must stay pending after build")
	}
}

func TestBuildDropsCharacterWithoutContext(t *testing.T) {
	req := testRequest("casual")
	req.State.CharactersPresent = append(req.State.CharactersPresent, "Dax")
	req.Characters["Dax"] = vbs.Character{Name: "Dax", IdentityTrigger: "dax_v1"}

	spec, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(spec.Subjects) != 1 {
		t.Fatalf("character without a location context must be dropped, got %d subjects", len(spec.Subjects))
	}
}

func TestBuildResolvesThroughDefaultLocation(t *testing.T) {
	req := testRequest("casual")
	req.Beat.Location = "hangar"
	req.SceneLocation = vbs.Location{Name: "hangar", Visual: "cavernous maintenance hangar"}
	req.DefaultLocation = "cockpit"

	spec, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(spec.Subjects) != 1 {
		t.Fatalf("contexts at the default location must still resolve, got %d subjects", len(spec.Subjects))
	}
	if !strings.Contains(spec.Subjects[0].Description, "compact woman in a grey flightsuit") {
		t.Fatalf("default-location context not used: %q", spec.Subjects[0].Description)
	}
}

func TestBuildFailsWithNoSubjectsAndNoEnvironment(t *testing.T) {
	req := testRequest("casual")
	req.State.CharactersPresent = nil
	req.SceneLocation = vbs.Location{Name: "cockpit"}

	if _, err := Build(req); err == nil {
		t.Fatalf("expected error for beat with no subjects and no environment visual")
	}
}

func TestBuildEnvironmentOnlyBeat(t *testing.T) {
	req := testRequest("casual")
	req.State.CharactersPresent = nil
	req.Beat.ShotType = "establishing shot"

	spec, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec.TemplateType != environmentTemplate {
		t.Fatalf("expected environment template, got %q", spec.TemplateType)
	}
	if spec.Shot.DepthOfField != "deep focus" {
		t.Fatalf("wide-class shot should get deep focus, got %q", spec.Shot.DepthOfField)
	}
}

func TestBuildAttachesBudgetAndDropOrder(t *testing.T) {
	spec, err := Build(testRequest("casual"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec.Constraints.TokenBudget.Total != 210 {
		t.Fatalf("close-up single subject should budget 210, got %d", spec.Constraints.TokenBudget.Total)
	}
	if len(spec.Constraints.CompactionDropOrder) == 0 {
		t.Fatalf("compaction drop order missing")
	}
	if spec.Constraints.CompactionDropOrder[0] != "vehicle.spatialNote" {
		t.Fatalf("drop order must start with vehicle.spatialNote, got %q", spec.Constraints.CompactionDropOrder[0])
	}
}

func TestBuildVehicleFromState(t *testing.T) {
	req := testRequest("casual")
	req.State.Vehicle = "dusty ground-effect skimmer"

	spec, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if spec.Vehicle == nil || spec.Vehicle.Description != "dusty ground-effect skimmer" {
		t.Fatalf("vehicle not carried into spec: %+v", spec.Vehicle)
	}
	if spec.Constraints.TokenBudget.Total != 230 {
		t.Fatalf("vehicle should add 20 to the close-up base, got %d", spec.Constraints.TokenBudget.Total)
	}
}

func TestBuildBeatAnchorAppended(t *testing.T) {
	req := testRequest("casual")
	req.SceneLocation.Anchors = []string{"amber instrument banks"}
	req.Beat.VisualAnchor = "cracked canopy glass"

	spec, err := Build(req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	anchors := spec.Environment.Anchors
	if len(anchors) != 2 || anchors[1] != "cracked canopy glass" {
		t.Fatalf("beat anchor should append after location anchors: %v", anchors)
	}
}
