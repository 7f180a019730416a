// Package telemetry holds the authoritative bank of sensor readings. The
// store has exactly one writer (the mode state machine's per-tick commit)
// and any number of readers; readers always get copies of the last
// committed state.
package telemetry

import (
	"sync"

	"kilntwin/internal/model"
	"kilntwin/internal/registry"
	"kilntwin/internal/validate"
)

const DefaultHistoryCapacity = 240

type reading struct {
	value       float64
	unit        string
	trend       model.Trend
	history     []float64
	anchor      model.Vec3
	color       string
	description string
	defaultVal  float64
}

type Store struct {
	mu       sync.RWMutex
	readings map[string]*reading
	rules    map[string]validate.Rule
	capacity int
}

// Update is one proposed (sensor-id, value) pair for a tick commit.
type Update struct {
	ID    string
	Value float64
}

func NewStore(sensors []registry.Sensor, historyCapacity int) *Store {
	if historyCapacity <= 0 {
		historyCapacity = DefaultHistoryCapacity
	}
	s := &Store{
		readings: make(map[string]*reading, len(sensors)),
		rules:    make(map[string]validate.Rule, len(sensors)),
		capacity: historyCapacity,
	}
	for _, sensor := range sensors {
		s.readings[sensor.ID] = &reading{
			value:       sensor.Default,
			unit:        sensor.Unit,
			trend:       model.TrendStable,
			history:     make([]float64, 0, historyCapacity),
			anchor:      sensor.Anchor,
			color:       sensor.Color,
			description: sensor.Description,
			defaultVal:  sensor.Default,
		}
		s.rules[sensor.ID] = validate.Rule{Min: sensor.Min, Max: sensor.Max}
	}
	return s
}

// Commit applies one tick's proposals. Every value passes through the
// validation clamp; the trend is derived against the last history sample
// and the new value appended with oldest-eviction. Unknown ids are ignored.
func (s *Store) Commit(batch []Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, up := range batch {
		r, ok := s.readings[up.ID]
		if !ok {
			continue
		}
		value := validate.Clamp(s.rules, up.ID, up.Value)
		prev := r.value
		if len(r.history) > 0 {
			prev = r.history[len(r.history)-1]
		}
		r.trend = validate.TrendOf(prev, value)
		if len(r.history) < s.capacity {
			r.history = append(r.history, value)
		} else {
			copy(r.history, r.history[1:])
			r.history[len(r.history)-1] = value
		}
		r.value = value
	}
}

// Reading returns a copy of the last committed state for one sensor.
func (s *Store) Reading(id string) (model.SensorReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[id]
	if !ok {
		return model.SensorReading{}, false
	}
	return s.export(id, r), true
}

// Snapshot returns a copy of every reading keyed by sensor id.
func (s *Store) Snapshot() map[string]model.SensorReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.SensorReading, len(s.readings))
	for id, r := range s.readings {
		out[id] = s.export(id, r)
	}
	return out
}

// Anchors returns the fixed spatial position of every sensor.
func (s *Store) Anchors() map[string]model.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Vec3, len(s.readings))
	for id, r := range s.readings {
		out[id] = r.anchor
	}
	return out
}

// Rule returns the legal range for a sensor id.
func (s *Store) Rule(id string) (validate.Rule, bool) {
	rule, ok := s.rules[id]
	return rule, ok
}

// Reset restores every sensor to its registry default and clears history.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.readings {
		r.value = r.defaultVal
		r.trend = model.TrendStable
		r.history = r.history[:0]
	}
}

// Len returns the number of registered sensors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

func (s *Store) export(id string, r *reading) model.SensorReading {
	history := make([]float64, len(r.history))
	copy(history, r.history)
	return model.SensorReading{
		ID:          id,
		Value:       r.value,
		Unit:        r.unit,
		Trend:       r.trend,
		Status:      statusOf(r.value, s.rules[id]),
		History:     history,
		Anchor:      r.anchor,
		Color:       r.color,
		Description: r.description,
	}
}

// statusOf classifies how close a value sits to its range edges. Derived on
// read, never stored.
func statusOf(value float64, rule validate.Rule) model.Status {
	span := rule.Max - rule.Min
	if span <= 0 {
		return model.StatusNormal
	}
	pos := (value - rule.Min) / span
	switch {
	case pos <= 0.02 || pos >= 0.98:
		return model.StatusCritical
	case pos <= 0.10 || pos >= 0.90:
		return model.StatusWarning
	}
	return model.StatusNormal
}
