package specbuild

import (
	"testing"

	"github.com/DNG-hub/StoryArt-sub001/internal/vbs"
)

func subjects(states ...vbs.HelmetState) []vbs.Subject {
	out := make([]vbs.Subject, len(states))
	for i, st := range states {
		out[i] = vbs.Subject{HelmetState: st}
	}
	return out
}

func TestComputeBudgetWideSingleSubject(t *testing.T) {
	b := ComputeBudget("wide shot", subjects(vbs.HelmetOff), false)

	if b.Total != 180 {
		t.Fatalf("expected total 180, got %d", b.Total)
	}
	if b.Composition != 30 || b.Segments != 15 {
		t.Fatalf("expected reserves 30/15, got %d/%d", b.Composition, b.Segments)
	}
	if b.Character1 != 30 {
		t.Fatalf("expected character1 30, got %d", b.Character1)
	}
	if b.Environment != 61 {
		t.Fatalf("expected environment 61, got %d", b.Environment)
	}
	if b.Atmosphere != 44 {
		t.Fatalf("expected atmosphere 44, got %d", b.Atmosphere)
	}
	if b.Character2 != 0 {
		t.Fatalf("expected no character2 share, got %d", b.Character2)
	}
}

func TestComputeBudgetCloseUpSealedSubject(t *testing.T) {
	b := ComputeBudget("close-up shot", subjects(vbs.HelmetOff, vbs.HelmetVisorDown), false)

	if b.Total != 275 {
		t.Fatalf("expected sealed adjustment to yield 275, got %d", b.Total)
	}
}

func TestComputeBudgetSubAllocationsSumToTotal(t *testing.T) {
	cases := []struct {
		shotType string
		subs     []vbs.Subject
		vehicle  bool
	}{
		{"close-up shot", subjects(vbs.HelmetOff), false},
		{"close-up shot", subjects(vbs.HelmetOff, vbs.HelmetVisorDown), true},
		{"wide shot", subjects(vbs.HelmetVisorDown, vbs.HelmetVisorDown), false},
		{"medium shot", subjects(vbs.HelmetOff, vbs.HelmetOff), true},
		{"establishing shot", nil, false},
		{"something unheard of", subjects(vbs.HelmetInHand), false},
	}
	for _, tc := range cases {
		b := ComputeBudget(tc.shotType, tc.subs, tc.vehicle)
		sum := b.Composition + b.Segments + b.Character1 + b.Character2 + b.Environment + b.Atmosphere
		if sum != b.Total {
			t.Fatalf("%s: sub-allocations sum %d != total %d", tc.shotType, sum, b.Total)
		}
	}
}

func TestComputeBudgetVehicleAdds20(t *testing.T) {
	without := ComputeBudget("medium shot", subjects(vbs.HelmetOff), false)
	with := ComputeBudget("medium shot", subjects(vbs.HelmetOff), true)
	if with.Total-without.Total != 20 {
		t.Fatalf("expected vehicle +20, got %d", with.Total-without.Total)
	}
}

func TestComputeBudgetThreeSubjectsShareTwoSubjectPool(t *testing.T) {
	two := ComputeBudget("medium shot", subjects(vbs.HelmetOff, vbs.HelmetOff), false)
	three := ComputeBudget("medium shot", subjects(vbs.HelmetOff, vbs.HelmetOff, vbs.HelmetOff), false)
	if two.Total != three.Total {
		t.Fatalf("three subjects must share the two-subject pool: %d vs %d", two.Total, three.Total)
	}
}

func TestComputeBudgetUnknownShotTypeFallsBackToMedium(t *testing.T) {
	unknown := ComputeBudget("dutch zoom crawl", subjects(vbs.HelmetOff), false)
	medium := ComputeBudget("medium shot", subjects(vbs.HelmetOff), false)
	if unknown.Total != medium.Total {
		t.Fatalf("unknown shot type should use medium base: %d vs %d", unknown.Total, medium.Total)
	}
}

func TestNormalizeShotType(t *testing.T) {
	cases := map[string]string{
		"Close-Up Shot":  "close-up",
		"  wide shot ":   "wide",
		"CLOSEUP":        "close-up",
		"medium shot":    "medium",
		"establishing":   "establishing",
		"extreme   wide": "extreme wide",
	}
	for in, want := range cases {
		if got := NormalizeShotType(in); got != want {
			t.Fatalf("NormalizeShotType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyShot(t *testing.T) {
	if ClassifyShot("close-up shot") != ClassTight {
		t.Fatalf("close-up should classify tight")
	}
	if ClassifyShot("establishing shot") != ClassWide {
		t.Fatalf("establishing should classify wide")
	}
	if ClassifyShot("medium shot") != ClassBalanced {
		t.Fatalf("medium should classify balanced")
	}
}
