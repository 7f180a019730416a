package validate

import (
	"math"
	"strings"

	"kilntwin/internal/model"
)

// Rule is the legal value range for one sensor id.
type Rule struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp returns value forced into the rule range for id. Unknown ids pass
// through unchanged: the registry is closed, so a miss here is a defensive
// path, not an error. Idempotent for all finite inputs.
func Clamp(rules map[string]Rule, id string, value float64) float64 {
	rule, ok := rules[id]
	if !ok {
		return value
	}
	if value < rule.Min {
		return rule.Min
	}
	if value > rule.Max {
		return rule.Max
	}
	return value
}

// Trend maps any raw trend label onto the three legal values. Anything
// unrecognized becomes stable.
func Trend(raw string) model.Trend {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up", "increasing", "rising":
		return model.TrendUp
	case "down", "decreasing", "falling":
		return model.TrendDown
	}
	return model.TrendStable
}

// TrendOf derives the trend of next relative to prev.
func TrendOf(prev, next float64) model.Trend {
	switch {
	case next > prev:
		return model.TrendUp
	case next < prev:
		return model.TrendDown
	}
	return model.TrendStable
}

// Position accepts only a well-formed 3-tuple of finite numbers. Malformed
// input is rejected rather than guessed.
func Position(raw any) (model.Vec3, bool) {
	var coords []float64
	switch v := raw.(type) {
	case model.Vec3:
		coords = []float64{v.X, v.Y, v.Z}
	case [3]float64:
		coords = v[:]
	case []float64:
		coords = v
	case []any:
		for _, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return model.Vec3{}, false
			}
			coords = append(coords, f)
		}
	default:
		return model.Vec3{}, false
	}
	if len(coords) != 3 {
		return model.Vec3{}, false
	}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return model.Vec3{}, false
		}
	}
	return model.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, true
}

// Color accepts #RGB or #RRGGBB hex strings, lowercased.
func Color(raw string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(raw))
	if len(c) != 4 && len(c) != 7 {
		return "", false
	}
	if c[0] != '#' {
		return "", false
	}
	for _, ch := range c[1:] {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return "", false
		}
	}
	return c, true
}

// Scale01 maps value into [0,1] against the range [min,max].
func Scale01(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	s := (value - min) / (max - min)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
