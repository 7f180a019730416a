package validate

import (
	"math"
	"testing"

	"kilntwin/internal/model"
)

func testRules() map[string]Rule {
	return map[string]Rule{
		"burning-zone-temperature": {Min: 0, Max: 2000},
		"kiln-speed":               {Min: 0, Max: 5},
	}
}

func TestClampWithinRange(t *testing.T) {
	rules := testRules()
	if got := Clamp(rules, "burning-zone-temperature", 2500); got != 2000 {
		t.Fatalf("clamp above max: got %v", got)
	}
	if got := Clamp(rules, "burning-zone-temperature", -10); got != 0 {
		t.Fatalf("clamp below min: got %v", got)
	}
	if got := Clamp(rules, "burning-zone-temperature", 1450); got != 1450 {
		t.Fatalf("in-range value changed: got %v", got)
	}
}

func TestClampIdempotent(t *testing.T) {
	rules := testRules()
	for _, v := range []float64{-1e9, -1, 0, 2.5, 5, 1450, 2000, 2500, 1e12} {
		once := Clamp(rules, "burning-zone-temperature", v)
		twice := Clamp(rules, "burning-zone-temperature", once)
		if once != twice {
			t.Fatalf("clamp not idempotent for %v: %v != %v", v, once, twice)
		}
	}
}

func TestClampUnknownSensorPassesThrough(t *testing.T) {
	if got := Clamp(testRules(), "no-such-sensor", 99999); got != 99999 {
		t.Fatalf("unknown sensor should pass through, got %v", got)
	}
}

func TestTrendNormalization(t *testing.T) {
	if Trend("increasing") != model.TrendUp {
		t.Fatalf("increasing should map to up")
	}
	if Trend("FALLING") != model.TrendDown {
		t.Fatalf("falling should map to down")
	}
	if Trend("sideways") != model.TrendStable {
		t.Fatalf("unknown trend should map to stable")
	}
	if Trend("") != model.TrendStable {
		t.Fatalf("empty trend should map to stable")
	}
}

func TestTrendOf(t *testing.T) {
	if TrendOf(1, 2) != model.TrendUp || TrendOf(2, 1) != model.TrendDown || TrendOf(1, 1) != model.TrendStable {
		t.Fatalf("trend derivation mismatch")
	}
}

func TestPositionRejectsMalformed(t *testing.T) {
	if _, ok := Position([]float64{1, 2}); ok {
		t.Fatalf("2-tuple accepted")
	}
	if _, ok := Position([]float64{1, 2, math.NaN()}); ok {
		t.Fatalf("NaN accepted")
	}
	if _, ok := Position([]float64{1, 2, math.Inf(1)}); ok {
		t.Fatalf("Inf accepted")
	}
	if _, ok := Position("1,2,3"); ok {
		t.Fatalf("string accepted")
	}
	if _, ok := Position([]any{1.0, "x", 3.0}); ok {
		t.Fatalf("non-numeric element accepted")
	}
}

func TestPositionAcceptsFiniteTriples(t *testing.T) {
	v, ok := Position([]float64{1, 2, 3})
	if !ok || v != (model.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("finite triple rejected: %v %v", v, ok)
	}
	if _, ok := Position([]any{1.0, 2, int64(3)}); !ok {
		t.Fatalf("mixed numeric triple rejected")
	}
}

func TestColor(t *testing.T) {
	if c, ok := Color(" #EF4444 "); !ok || c != "#ef4444" {
		t.Fatalf("valid color rejected: %q %v", c, ok)
	}
	if _, ok := Color("ef4444"); ok {
		t.Fatalf("missing hash accepted")
	}
	if _, ok := Color("#zzzzzz"); ok {
		t.Fatalf("non-hex accepted")
	}
}

func TestScale01(t *testing.T) {
	if got := Scale01(1000, 0, 2000); got != 0.5 {
		t.Fatalf("scale: got %v", got)
	}
	if got := Scale01(-5, 0, 10); got != 0 {
		t.Fatalf("below min should clamp to 0, got %v", got)
	}
	if got := Scale01(50, 0, 10); got != 1 {
		t.Fatalf("above max should clamp to 1, got %v", got)
	}
	if got := Scale01(5, 10, 10); got != 0 {
		t.Fatalf("degenerate range should yield 0, got %v", got)
	}
}
