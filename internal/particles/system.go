package particles

import (
	"math/rand"
	"sync"

	"kilntwin/internal/config"
	"kilntwin/internal/model"
	"kilntwin/internal/registry"
	"kilntwin/internal/validate"
)

// binding ties one effect to the sensor whose anchor it renders around.
// Intensity-driven effects also name the sensor whose value scales their
// opacity; that read is the pools' only dependency on the telemetry store.
type binding struct {
	Effect          Effect
	AnchorSensor    string
	IntensitySensor string
}

var bindings = []binding{
	{Effect: EffectHeatShimmer, AnchorSensor: "burning-zone-temperature", IntensitySensor: "burning-zone-temperature"},
	{Effect: EffectRawMaterial, AnchorSensor: "preheater-temperature"},
	{Effect: EffectClinker, AnchorSensor: "cooler-temperature"},
	{Effect: EffectDustPlume, AnchorSensor: "dust-emission", IntensitySensor: "dust-emission"},
	{Effect: EffectConveyor, AnchorSensor: "mill-feed"},
}

type System struct {
	mu    sync.Mutex
	pools []*Pool
}

// NewSystem builds one pool per effect, anchored at its bound sensor.
// Config capacity overrides replace the default table per effect.
func NewSystem(cfg config.ParticlesConfig, rng *rand.Rand) *System {
	table := DefaultTable()
	for name, caps := range cfg.Capacities {
		table[Effect(name)] = Capacities{High: caps.High, Medium: caps.Medium, Low: caps.Low}
	}
	sys := &System{}
	for _, b := range bindings {
		sensor, ok := registry.Lookup(b.AnchorSensor)
		if !ok {
			continue
		}
		pool := NewPool(b.Effect, b.AnchorSensor, sensor.Anchor, table[b.Effect], cfg.TravelBound, rng)
		sys.pools = append(sys.pools, pool)
	}
	return sys
}

// Retier resizes every pool to the LOD tier of its anchor. Anchors the
// controller has not classified stay at the low tier.
func (s *System) Retier(tiers map[string]model.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pools {
		tier, ok := tiers[p.AnchorID()]
		if !ok {
			tier = model.TierLow
		}
		p.SetTier(tier)
	}
}

// Step advances every pool by dt seconds and refreshes intensity-driven
// effects from the committed snapshot, scaled against the sensor's known
// operating range.
func (s *System) Step(dt float64, snapshot map[string]model.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pools {
		if b := bindingFor(p.Effect()); b.IntensitySensor != "" {
			if r, ok := snapshot[b.IntensitySensor]; ok {
				if sensor, found := registry.Lookup(b.IntensitySensor); found {
					p.SetIntensity(validate.Scale01(r.Value, sensor.Min, sensor.Max))
				}
			}
		}
		p.Step(dt)
	}
}

// ActiveCounts reports active slots per effect for the read surface.
func (s *System) ActiveCounts() map[Effect]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Effect]int, len(s.pools))
	for _, p := range s.pools {
		out[p.Effect()] = p.ActiveCount()
	}
	return out
}

// Pools exposes the pool list for rendering consumers.
func (s *System) Pools() []*Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Pool, len(s.pools))
	copy(out, s.pools)
	return out
}

func bindingFor(effect Effect) binding {
	for _, b := range bindings {
		if b.Effect == effect {
			return b
		}
	}
	return binding{}
}
