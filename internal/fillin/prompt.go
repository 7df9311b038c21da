package fillin

import (
	"fmt"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/narrative"
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

const systemInstruction = `You write short visual fill-in content for image rendering prompts.
Rules:
- Never introduce new identity, wardrobe, or location facts. Work only with what the beat provides.
- Keep every field terse: a single descriptive phrase, no full sentences.
- "expression" must be JSON null for any subject marked face-not-visible. No exceptions.
- Respond with a single JSON object matching the requested schema and nothing else.`

type section struct {
	title   string
	content string
}

func renderSections(sections []section) string {
	var out strings.Builder
	for i, s := range sections {
		if i > 0 {
			out.WriteString("\n\n")
		}
		if s.title != "" {
			out.WriteString("### ")
			out.WriteString(s.title)
			out.WriteString("\n\n")
		}
		out.WriteString(s.content)
	}
	return out.String()
}

func appendSection(list []section, title, content string) []section {
	if strings.TrimSpace(content) == "" {
		return list
	}
	return append(list, section{title: title, content: content})
}

func buildUserPrompt(spec *vbs.Spec, beat narrative.Beat) string {
	var sections []section

	sections = appendSection(sections, "Beat", strings.TrimSpace(beat.Text))
	sections = appendSection(sections, "Visual Anchor", strings.TrimSpace(beat.VisualAnchor))
	sections = appendSection(sections, "Emotional Tone", strings.TrimSpace(beat.EmotionalTone))
	sections = appendSection(sections, "Continuity", spec.PreviousBeatSummary)
	sections = appendSection(sections, "Shot", fmt.Sprintf("%s, %s", spec.Shot.ShotType, spec.Shot.CameraAngle))
	sections = appendSection(sections, "Subjects", describeSubjects(spec))
	sections = appendSection(sections, "Schema", schemaFor(spec))

	return renderSections(sections)
}

func describeSubjects(spec *vbs.Spec) string {
	var sb strings.Builder
	for i, s := range spec.Subjects {
		if i > 0 {
			sb.WriteString("\n")
		}
		visibility := "face visible"
		if !s.FaceVisible {
			visibility = "face NOT visible"
		}
		fmt.Fprintf(&sb, "- %s (%s, position: %s)", s.CharacterName, visibility, s.Position)
	}
	if spec.Vehicle != nil {
		fmt.Fprintf(&sb, "\n- vehicle in frame: %s", spec.Vehicle.Description)
	}
	return sb.String()
}

func schemaFor(spec *vbs.Spec) string {
	var sb strings.Builder
	sb.WriteString(`{"subjects": [{"name": "...", "action": "...", "expression": "..." | null}`)
	sb.WriteString(` per subject], "shot_composition": "..."`)
	if spec.Vehicle != nil {
		sb.WriteString(`, "vehicle_spatial_note": "..."`)
	}
	sb.WriteString(`, "atmosphere_enrichment": "..."}`)
	return sb.String()
}
