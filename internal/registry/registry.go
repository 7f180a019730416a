// Package registry holds the fixed bank of plant measurement points. The
// table is loaded once at process start and never changes at runtime.
package registry

import (
	"kilntwin/internal/model"
	"kilntwin/internal/validate"
)

type Sensor struct {
	ID          string
	Default     float64
	Unit        string
	Min         float64
	Max         float64
	Anchor      model.Vec3
	Color       string
	Description string
}

// Sensor defaults and ranges follow the plant's recorded operating bands:
// pyroprocessing line first, then the grinding circuit.
var sensors = []Sensor{
	{ID: "preheater-temperature", Default: 1250, Unit: "°C", Min: 0, Max: 1500,
		Anchor: model.Vec3{X: -42, Y: 28, Z: 0}, Color: "#f97316", Description: "Cyclone preheater stage 5 gas temperature"},
	{ID: "calciner-temperature", Default: 1850, Unit: "°C", Min: 0, Max: 2100,
		Anchor: model.Vec3{X: -30, Y: 22, Z: 0}, Color: "#fb923c", Description: "Calciner outlet temperature"},
	{ID: "kiln-inlet-temperature", Default: 1125, Unit: "°C", Min: 0, Max: 1300,
		Anchor: model.Vec3{X: -18, Y: 8, Z: 0}, Color: "#fbbf24", Description: "Rotary kiln inlet chamber temperature"},
	{ID: "burning-zone-temperature", Default: 1450, Unit: "°C", Min: 0, Max: 2000,
		Anchor: model.Vec3{X: 0, Y: 6, Z: 0}, Color: "#ef4444", Description: "Burning zone shell temperature"},
	{ID: "cooler-temperature", Default: 175, Unit: "°C", Min: 0, Max: 400,
		Anchor: model.Vec3{X: 16, Y: 4, Z: 0}, Color: "#60a5fa", Description: "Clinker cooler discharge temperature"},
	{ID: "kiln-speed", Default: 2.8, Unit: "rpm", Min: 0, Max: 5,
		Anchor: model.Vec3{X: -8, Y: 6, Z: 3}, Color: "#a78bfa", Description: "Kiln drive rotational speed"},
	{ID: "motor-load", Default: 85, Unit: "%", Min: 0, Max: 100,
		Anchor: model.Vec3{X: -8, Y: 4, Z: 6}, Color: "#34d399", Description: "Main drive motor load"},
	{ID: "nox-emission", Default: 420, Unit: "mg/Nm³", Min: 0, Max: 800,
		Anchor: model.Vec3{X: -46, Y: 40, Z: 0}, Color: "#94a3b8", Description: "Stack NOx emission"},
	{ID: "dust-emission", Default: 15, Unit: "mg/Nm³", Min: 0, Max: 50,
		Anchor: model.Vec3{X: -46, Y: 44, Z: 0}, Color: "#cbd5e1", Description: "Stack dust emission"},
	{ID: "mill-feed", Default: 145, Unit: "t/h", Min: 0, Max: 300,
		Anchor: model.Vec3{X: 44, Y: 10, Z: -12}, Color: "#38bdf8", Description: "Cement mill feed rate"},
	{ID: "mill-pressure", Default: 2.1, Unit: "bar", Min: 0, Max: 10,
		Anchor: model.Vec3{X: 48, Y: 8, Z: -12}, Color: "#818cf8", Description: "Mill grinding pressure"},
	{ID: "mill-particle-size", Default: 12, Unit: "µm", Min: 0, Max: 50,
		Anchor: model.Vec3{X: 52, Y: 8, Z: -12}, Color: "#f472b6", Description: "Product particle fineness"},
	{ID: "mill-efficiency", Default: 85, Unit: "%", Min: 0, Max: 100,
		Anchor: model.Vec3{X: 48, Y: 12, Z: -16}, Color: "#4ade80", Description: "Separator efficiency"},
}

// All returns a copy of the sensor table.
func All() []Sensor {
	out := make([]Sensor, len(sensors))
	copy(out, sensors)
	return out
}

func Lookup(id string) (Sensor, bool) {
	for _, s := range sensors {
		if s.ID == id {
			return s, true
		}
	}
	return Sensor{}, false
}

// Rules returns the per-sensor legal ranges for the validation engine.
func Rules() map[string]validate.Rule {
	out := make(map[string]validate.Rule, len(sensors))
	for _, s := range sensors {
		out[s.ID] = validate.Rule{Min: s.Min, Max: s.Max}
	}
	return out
}
