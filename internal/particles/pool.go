// Package particles maintains the fixed-capacity animation pools that
// visualize material and heat flow. Slots are allocated once at the maximum
// tier's requirement; tier changes only flip active flags, and slots that
// cross their travel bound are recycled back to spawn instead of destroyed.
package particles

import (
	"math/rand"

	"kilntwin/internal/model"
)

type Effect string

const (
	EffectHeatShimmer Effect = "heat-shimmer"
	EffectRawMaterial Effect = "raw-material"
	EffectClinker     Effect = "clinker"
	EffectDustPlume   Effect = "dust-plume"
	EffectConveyor    Effect = "conveyor"
)

type Capacities struct {
	High   int
	Medium int
	Low    int
}

func (c Capacities) For(tier model.Tier) int {
	switch tier {
	case model.TierHigh:
		return c.High
	case model.TierMedium:
		return c.Medium
	}
	return c.Low
}

type CapacityTable map[Effect]Capacities

// DefaultTable is the configured capacity ladder: medium is roughly 60% of
// high, low roughly 35%.
func DefaultTable() CapacityTable {
	return CapacityTable{
		EffectHeatShimmer: {High: 25, Medium: 15, Low: 9},
		EffectRawMaterial: {High: 15, Medium: 9, Low: 5},
		EffectClinker:     {High: 12, Medium: 7, Low: 4},
		EffectDustPlume:   {High: 10, Medium: 6, Low: 4},
		EffectConveyor:    {High: 8, Medium: 5, Low: 3},
	}
}

type Slot struct {
	Pos    model.Vec3
	Vel    model.Vec3
	Phase  float64
	Active bool
}

type Pool struct {
	effect    Effect
	anchorID  string
	anchor    model.Vec3
	caps      Capacities
	bound     float64
	slots     []Slot
	spawns    []model.Vec3
	active    int
	tier      model.Tier
	intensity float64
}

// NewPool allocates every slot up front, sized to the high tier, and starts
// at the low tier until the LOD controller classifies the anchor.
func NewPool(effect Effect, anchorID string, anchor model.Vec3, caps Capacities, bound float64, rng *rand.Rand) *Pool {
	if bound <= 0 {
		bound = 12
	}
	p := &Pool{
		effect:   effect,
		anchorID: anchorID,
		anchor:   anchor,
		caps:     caps,
		bound:    bound,
		slots:    make([]Slot, caps.High),
		spawns:   make([]model.Vec3, caps.High),
	}
	for i := range p.slots {
		spawn := model.Vec3{
			X: anchor.X + (rng.Float64()*2-1)*1.5,
			Y: anchor.Y + rng.Float64()*0.5,
			Z: anchor.Z + (rng.Float64()*2-1)*1.5,
		}
		p.spawns[i] = spawn
		p.slots[i] = Slot{
			Pos: spawn,
			Vel: model.Vec3{
				X: (rng.Float64()*2 - 1) * 0.4,
				Y: 0.5 + rng.Float64()*0.8,
				Z: (rng.Float64()*2 - 1) * 0.4,
			},
			Phase: rng.Float64(),
		}
	}
	p.SetTier(model.TierLow)
	return p
}

// SetTier marks the first capacity-for-tier slots active and the rest
// inactive. Never allocates.
func (p *Pool) SetTier(tier model.Tier) {
	n := p.caps.For(tier)
	if n > len(p.slots) {
		n = len(p.slots)
	}
	for i := range p.slots {
		p.slots[i].Active = i < n
	}
	p.active = n
	p.tier = tier
}

// Step advances every active slot by its velocity and recycles slots that
// traveled past the bound back to their spawn position.
func (p *Pool) Step(dt float64) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.Active {
			continue
		}
		s.Pos.X += s.Vel.X * dt
		s.Pos.Y += s.Vel.Y * dt
		s.Pos.Z += s.Vel.Z * dt
		s.Phase += dt
		dx := s.Pos.X - p.anchor.X
		dy := s.Pos.Y - p.anchor.Y
		dz := s.Pos.Z - p.anchor.Z
		if dx*dx+dy*dy+dz*dz > p.bound*p.bound {
			s.Pos = p.spawns[i]
			s.Phase = 0
		}
	}
}

func (p *Pool) SetIntensity(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.intensity = v
}

func (p *Pool) Effect() Effect     { return p.effect }
func (p *Pool) AnchorID() string   { return p.anchorID }
func (p *Pool) Tier() model.Tier   { return p.tier }
func (p *Pool) ActiveCount() int   { return p.active }
func (p *Pool) Capacity() int      { return len(p.slots) }
func (p *Pool) Intensity() float64 { return p.intensity }

// Slots returns a copy of the slot array for rendering.
func (p *Pool) Slots() []Slot {
	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out
}
