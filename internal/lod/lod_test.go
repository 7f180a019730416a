package lod

import (
	"testing"

	"kilntwin/internal/model"
)

func TestClassifyThresholds(t *testing.T) {
	th := DefaultThresholds()
	if got := Classify(th, 40); got != model.TierHigh {
		t.Fatalf("classify(40) = %v, want high", got)
	}
	if got := Classify(th, 50); got != model.TierMedium {
		t.Fatalf("classify(50) = %v, want medium", got)
	}
	if got := Classify(th, 99.9); got != model.TierMedium {
		t.Fatalf("classify(99.9) = %v, want medium", got)
	}
	if got := Classify(th, 100); got != model.TierLow {
		t.Fatalf("classify(100) = %v, want low", got)
	}
	if got := Classify(th, 150); got != model.TierLow {
		t.Fatalf("classify(150) = %v, want low", got)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	th := DefaultThresholds()
	rank := map[model.Tier]int{model.TierHigh: 0, model.TierMedium: 1, model.TierLow: 2}
	prev := -1
	for d := 0.0; d <= 300; d += 0.5 {
		r := rank[Classify(th, d)]
		if r < prev {
			t.Fatalf("fidelity snapped back at distance %v", d)
		}
		prev = r
	}
}

func TestObserveThrottlesReclassification(t *testing.T) {
	anchors := map[string]model.Vec3{"kiln": {}}
	c := NewController(DefaultThresholds(), 3, anchors)

	near := model.Vec3{X: 40}
	far := model.Vec3{X: 150}

	tiers := c.Observe(near)
	if tiers["kiln"] != model.TierHigh {
		t.Fatalf("first observe should classify, got %v", tiers["kiln"])
	}

	// Inside the throttle window the cached tier is served even though the
	// camera moved away.
	for i := 0; i < 2; i++ {
		tiers = c.Observe(far)
		if tiers["kiln"] != model.TierHigh {
			t.Fatalf("observe %d recomputed inside throttle window", i)
		}
	}

	tiers = c.Observe(far)
	if tiers["kiln"] != model.TierLow {
		t.Fatalf("throttled recompute should see the far camera, got %v", tiers["kiln"])
	}
}

func TestTiersReturnsCacheWithoutTicking(t *testing.T) {
	anchors := map[string]model.Vec3{"kiln": {}}
	c := NewController(DefaultThresholds(), 2, anchors)
	c.Observe(model.Vec3{X: 10})
	for i := 0; i < 10; i++ {
		if c.Tiers()["kiln"] != model.TierHigh {
			t.Fatalf("Tiers mutated state")
		}
	}
	// Next frame is still within the throttle window.
	if c.Observe(model.Vec3{X: 500})["kiln"] != model.TierHigh {
		t.Fatalf("Tiers advanced the tick counter")
	}
}

func TestUnclassifiedAnchorStartsLow(t *testing.T) {
	c := NewController(DefaultThresholds(), 30, map[string]model.Vec3{"mill": {X: 400}})
	if c.Tiers()["mill"] != model.TierLow {
		t.Fatalf("anchors should start at low fidelity")
	}
}
