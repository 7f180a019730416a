// Package lod classifies visual anchors into fidelity tiers by camera
// distance. Classification is a pure step function of distance; the
// controller re-evaluates it only on a throttled cadence and serves a
// cached result in between.
package lod

import (
	"math"
	"sync"

	"kilntwin/internal/model"
)

type Thresholds struct {
	High   float64
	Medium float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 50, Medium: 100}
}

// Classify maps a camera-to-anchor distance onto a tier. Monotonic: a
// larger distance never yields a higher-fidelity tier.
func Classify(t Thresholds, distance float64) model.Tier {
	switch {
	case distance < t.High:
		return model.TierHigh
	case distance < t.Medium:
		return model.TierMedium
	}
	return model.TierLow
}

type Controller struct {
	mu         sync.Mutex
	thresholds Thresholds
	throttle   int
	ticks      int
	anchors    map[string]model.Vec3
	tiers      map[string]model.Tier
}

// NewController starts with every anchor at the lowest fidelity until the
// first Observe classifies it.
func NewController(thresholds Thresholds, throttleTicks int, anchors map[string]model.Vec3) *Controller {
	if throttleTicks <= 0 {
		throttleTicks = 30
	}
	c := &Controller{
		thresholds: thresholds,
		throttle:   throttleTicks,
		anchors:    make(map[string]model.Vec3, len(anchors)),
		tiers:      make(map[string]model.Tier, len(anchors)),
	}
	for id, a := range anchors {
		c.anchors[id] = a
		c.tiers[id] = model.TierLow
	}
	return c
}

// Observe accepts the camera position once per render frame. The distance
// computation runs only every throttle window; other frames return the
// cached classification.
func (c *Controller) Observe(camera model.Vec3) map[string]model.Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticks%c.throttle == 0 {
		for id, anchor := range c.anchors {
			c.tiers[id] = Classify(c.thresholds, distance(camera, anchor))
		}
	}
	c.ticks++
	return c.copyTiersLocked()
}

// Tiers returns the cached classification without advancing the tick count.
func (c *Controller) Tiers() map[string]model.Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyTiersLocked()
}

func (c *Controller) copyTiersLocked() map[string]model.Tier {
	out := make(map[string]model.Tier, len(c.tiers))
	for id, t := range c.tiers {
		out[id] = t
	}
	return out
}

func distance(a, b model.Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
