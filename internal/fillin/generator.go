package fillin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

const defaultTimeout = 30 * time.Second

// Generator populates the creative slots of a spec. A nil provider runs
// fallback-only, which keeps offline compilation fully functional.
type Generator struct {
	provider Provider
	timeout  time.Duration
}

// NewGenerator creates a Generator. provider may be nil.
func NewGenerator(provider Provider, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{provider: provider, timeout: timeout}
}

// Fill populates action, expression, shot composition, vehicle spatial note
// and atmosphere enrichment in place. Any transport, parse, or schema
// failure is logged and replaced by the deterministic fallback; Fill never
// returns an error and always leaves the spec structurally complete.
func (g *Generator) Fill(ctx context.Context, spec *vbs.Spec, beat narrative.Beat) {
	result, err := g.generate(ctx, spec, beat)
	if err != nil {
		if g.provider != nil {
			logger.Warn("beat %s: fill-in generation failed (%v), using fallback", spec.BeatID, err)
		}
		result = Fallback(spec, beat)
	}
	apply(spec, result)
}

func (g *Generator) generate(ctx context.Context, spec *vbs.Spec, beat narrative.Beat) (Result, error) {
	if g.provider == nil {
		return Result{}, fmt.Errorf("no provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.provider.Complete(ctx, systemInstruction, buildUserPrompt(spec, beat))
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return Result{}, fmt.Errorf("malformed fill-in response: %w", err)
	}
	if err := checkResult(spec, result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// checkResult enforces the fill-in output contract: every subject covered
// with a non-empty action, a shot composition present, and no expression
// text for a subject whose face is not visible.
func checkResult(spec *vbs.Spec, result Result) error {
	if strings.TrimSpace(result.ShotComposition) == "" {
		return fmt.Errorf("missing shot_composition")
	}

	byName := make(map[string]SubjectFill, len(result.Subjects))
	for _, f := range result.Subjects {
		byName[strings.ToLower(strings.TrimSpace(f.Name))] = f
	}

	for _, s := range spec.Subjects {
		f, ok := byName[strings.ToLower(s.CharacterName)]
		if !ok {
			return fmt.Errorf("no fill for subject %q", s.CharacterName)
		}
		if strings.TrimSpace(f.Action) == "" {
			return fmt.Errorf("empty action for subject %q", s.CharacterName)
		}
		if !s.FaceVisible && f.Expression != nil && strings.TrimSpace(*f.Expression) != "" {
			return fmt.Errorf("expression returned for face-not-visible subject %q", s.CharacterName)
		}
	}
	return nil
}

func apply(spec *vbs.Spec, result Result) {
	byName := make(map[string]SubjectFill, len(result.Subjects))
	for _, f := range result.Subjects {
		byName[strings.ToLower(strings.TrimSpace(f.Name))] = f
	}

	for i := range spec.Subjects {
		s := &spec.Subjects[i]
		f := byName[strings.ToLower(s.CharacterName)]

		s.Action = strings.TrimSpace(f.Action)
		if !s.FaceVisible {
			s.Expression = vbs.NullExpression()
			continue
		}
		if f.Expression == nil || strings.TrimSpace(*f.Expression) == "" {
			s.Expression = vbs.NullExpression()
		} else {
			s.Expression = vbs.TextExpression(strings.TrimSpace(*f.Expression))
		}
	}

	spec.Shot.Composition = strings.TrimSpace(result.ShotComposition)

	if spec.Vehicle != nil && strings.TrimSpace(result.VehicleSpatialNote) != "" {
		spec.Vehicle.SpatialNote = strings.TrimSpace(result.VehicleSpatialNote)
	}
	if e := strings.TrimSpace(result.AtmosphereEnrichment); e != "" {
		if spec.Environment.Atmosphere == "" {
			spec.Environment.Atmosphere = e
		} else {
			spec.Environment.Atmosphere += ", " + e
		}
	}
}

// extractJSON trims prose or code fences a model may wrap around the JSON
// object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
