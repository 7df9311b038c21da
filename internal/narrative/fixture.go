package narrative

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadScene reads a scene fixture document from disk and validates it
// enough to be compiled.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file %s: %w", path, err)
	}

	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene file %s: %w", path, err)
	}
	if err := validateScene(&scene); err != nil {
		return nil, fmt.Errorf("invalid scene file %s: %w", path, err)
	}

	for i := range scene.Beats {
		b := &scene.Beats[i]
		if b.SceneNumber == 0 {
			b.SceneNumber = scene.Number
		}
		if b.Sequence == 0 {
			b.Sequence = i + 1
		}
		if strings.TrimSpace(b.ID) == "" {
			b.ID = fmt.Sprintf("s%02db%02d", scene.Number, b.Sequence)
		}
	}
	return &scene, nil
}

func validateScene(scene *Scene) error {
	if scene == nil {
		return fmt.Errorf("scene is nil")
	}
	if scene.Number <= 0 {
		return fmt.Errorf("scene number is required")
	}
	if strings.TrimSpace(scene.DefaultLocation) == "" {
		return fmt.Errorf("default_location is required")
	}
	if len(scene.Beats) == 0 {
		return fmt.Errorf("beats is required")
	}
	for i, b := range scene.Beats {
		if strings.TrimSpace(b.Text) == "" {
			return fmt.Errorf("beat %d has no text", i+1)
		}
	}
	return nil
}
