// Package narrative models the records consumed from the external
// script-analysis service: beats, scenes, and the scene fixture format
// used for offline compilation runs.
package narrative

import (
	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Beat is the smallest narrative unit: one beat compiles into one image.
// All fields arrive from the script-analysis service; none are produced
// here.
type Beat struct {
	ID            string `yaml:"id"`
	SceneNumber   int    `yaml:"scene_number"`
	Sequence      int    `yaml:"sequence"`
	Text          string `yaml:"text"`
	VisualAnchor  string `yaml:"visual_anchor"`
	EmotionalTone string `yaml:"emotional_tone"`
	ShotType      string `yaml:"shot_type"`
	CameraAngle   string `yaml:"camera_angle"`
	// Location overrides the scene default for this beat when set.
	Location     string `yaml:"location,omitempty"`
	TemplateType string `yaml:"template_type,omitempty"`
}

// Scene groups the beats of one scene with its default location and the
// initial continuity state. Beats are compiled strictly in slice order.
type Scene struct {
	Episode         int           `yaml:"episode"`
	Number          int           `yaml:"number"`
	DefaultLocation string        `yaml:"default_location"`
	Beats           []Beat        `yaml:"beats"`
	InitialState    SceneStateDoc `yaml:"initial_state"`
}

// SceneStateDoc is the YAML shape of the initial PersistentSceneState.
type SceneStateDoc struct {
	CharactersPresent  []string          `yaml:"characters_present"`
	GearState          string            `yaml:"gear_state"`
	Vehicle            string            `yaml:"vehicle,omitempty"`
	CharacterPositions map[string]string `yaml:"character_positions,omitempty"`
	CharacterPhases    map[string]string `yaml:"character_phases,omitempty"`
}

// State converts the document into the pipeline's state snapshot type.
func (d SceneStateDoc) State() vbs.SceneState {
	st := vbs.SceneState{
		CharactersPresent:  append([]string(nil), d.CharactersPresent...),
		GearState:          d.GearState,
		Vehicle:            d.Vehicle,
		CharacterPositions: make(map[string]string, len(d.CharacterPositions)),
		CharacterPhases:    make(map[string]string, len(d.CharacterPhases)),
	}
	for k, v := range d.CharacterPositions {
		st.CharacterPositions[k] = v
	}
	for k, v := range d.CharacterPhases {
		st.CharacterPhases[k] = v
	}
	return st
}
