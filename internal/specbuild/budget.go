package specbuild

import (
	"math"
	"strings"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

// Fixed reservations taken off the top of every budget.
const (
	compositionReserve = 30
	segmentsReserve    = 15

	sealedSubjectAdjust = -5 // -30 face-detail savings, +25 equipment detail
	vehicleAdjust       = 20
)

// basePair is the (one-subject, two-subject) base total for a shot type.
type basePair struct {
	one int
	two int
}

var baseBudgets = map[string]basePair{
	"extreme close-up":  {200, 260},
	"close-up":          {210, 280},
	"medium close-up":   {220, 290},
	"over-the-shoulder": {220, 290},
	"medium":            {230, 300},
	"two":               {240, 300},
	"full":              {220, 290},
	"cowboy":            {225, 295},
	"wide":              {180, 250},
	"extreme wide":      {160, 220},
	"establishing":      {170, 240},
	"aerial":            {170, 240},
}

// ShotClass buckets shot types by how the frame spends its budget.
type ShotClass int

const (
	ClassBalanced ShotClass = iota
	ClassTight
	ClassWide
)

// NormalizeShotType canonicalizes a shot type for table lookup: lowercase,
// single spaces, trailing " shot" dropped, "closeup" spelled "close-up".
func NormalizeShotType(shotType string) string {
	s := strings.ToLower(strings.TrimSpace(shotType))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, " shot")
	s = strings.ReplaceAll(s, "closeup", "close-up")
	s = strings.ReplaceAll(s, "close up", "close-up")
	return s
}

// ClassifyShot maps a shot type onto its budget class. Unknown types are
// balanced.
func ClassifyShot(shotType string) ShotClass {
	switch NormalizeShotType(shotType) {
	case "extreme close-up", "close-up", "medium close-up", "over-the-shoulder":
		return ClassTight
	case "wide", "extreme wide", "establishing", "aerial":
		return ClassWide
	default:
		return ClassBalanced
	}
}

// distribution ratios for character1/character2/environment; atmosphere
// takes the remainder.
type ratios struct {
	char1 float64
	char2 float64
	env   float64
}

var twoSubjectRatios = map[ShotClass]ratios{
	ClassTight:    {0.30, 0.28, 0.22},
	ClassWide:     {0.18, 0.16, 0.36},
	ClassBalanced: {0.25, 0.23, 0.28},
}

var oneSubjectRatios = map[ShotClass]ratios{
	ClassTight:    {0.42, 0, 0.30},
	ClassWide:     {0.22, 0, 0.45},
	ClassBalanced: {0.35, 0, 0.35},
}

// ComputeBudget derives the adaptive token budget for a beat. The total
// tracks what the camera is showing: the base pair is keyed by shot type,
// the two-subject pool covers every beat with two or more subjects (extras
// share, they do not expand it), each sealed subject nets -5, and a present
// vehicle adds +20. Composition and segment reservations come off the top;
// the rest is split by shot class.
func ComputeBudget(shotType string, subjects []vbs.Subject, hasVehicle bool) vbs.TokenBudget {
	pair, ok := baseBudgets[NormalizeShotType(shotType)]
	if !ok {
		pair = baseBudgets["medium"]
	}

	effective := len(subjects)
	if effective > 2 {
		effective = 2
	}

	total := pair.one
	if effective >= 2 {
		total = pair.two
	}
	for _, s := range subjects {
		if s.HelmetState.Sealed() {
			total += sealedSubjectAdjust
		}
	}
	if hasVehicle {
		total += vehicleAdjust
	}

	distributable := total - compositionReserve - segmentsReserve
	if distributable < 0 {
		distributable = 0
	}

	class := ClassifyShot(shotType)
	var r ratios
	if effective >= 2 {
		r = twoSubjectRatios[class]
	} else {
		r = oneSubjectRatios[class]
	}

	char1 := int(math.Round(float64(distributable) * r.char1))
	char2 := int(math.Round(float64(distributable) * r.char2))
	env := int(math.Round(float64(distributable) * r.env))
	atmosphere := distributable - char1 - char2 - env

	return vbs.TokenBudget{
		Total:       total,
		Composition: compositionReserve,
		Character1:  char1,
		Character2:  char2,
		Environment: env,
		Atmosphere:  atmosphere,
		Segments:    segmentsReserve,
	}
}
