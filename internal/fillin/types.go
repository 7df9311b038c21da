// Package fillin is phase B: a constrained natural-language generation step
// that populates only the creative slots of a Visual Beat Spec. Every
// failure mode of the generation backend degrades to a deterministic
// fallback; phase D treats fallback output identically to generated output.
package fillin

import "context"

// SubjectFill is one subject's generated creative content. Expression is a
// pointer so an explicit JSON null survives parsing.
type SubjectFill struct {
	Name       string  `json:"name"`
	Action     string  `json:"action"`
	Expression *string `json:"expression"`
}

// Result is the schema the generation backend must return.
type Result struct {
	Subjects             []SubjectFill `json:"subjects"`
	ShotComposition      string        `json:"shot_composition"`
	VehicleSpatialNote   string        `json:"vehicle_spatial_note,omitempty"`
	AtmosphereEnrichment string        `json:"atmosphere_enrichment,omitempty"`
}

// Provider is a natural-language generation backend: a system instruction
// plus a user prompt in, raw model text out. Transport errors are returned,
// never swallowed; the generator decides what failure means.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}
