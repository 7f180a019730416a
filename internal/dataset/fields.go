package dataset

// fieldMap ties one recording column to a sensor id. Every field carries a
// literal fallback so a partially populated row still yields a complete
// record; the fallbacks are the registry defaults.
type fieldMap struct {
	Column   string
	SensorID string
	Fallback float64
}

// Column names follow the clinkerization and grinding sheets of the plant
// recording.
var columns = []fieldMap{
	{Column: "preheater_temp", SensorID: "preheater-temperature", Fallback: 1250},
	{Column: "calciner_temp", SensorID: "calciner-temperature", Fallback: 1850},
	{Column: "kiln_inlet_temp", SensorID: "kiln-inlet-temperature", Fallback: 1125},
	{Column: "burning_zone_temp", SensorID: "burning-zone-temperature", Fallback: 1450},
	{Column: "cooler_temp", SensorID: "cooler-temperature", Fallback: 175},
	{Column: "kiln_speed", SensorID: "kiln-speed", Fallback: 2.8},
	{Column: "motor_load", SensorID: "motor-load", Fallback: 85},
	{Column: "nox_emission", SensorID: "nox-emission", Fallback: 420},
	{Column: "dust_emission", SensorID: "dust-emission", Fallback: 15},
	{Column: "mill_feed", SensorID: "mill-feed", Fallback: 145},
	{Column: "mill_pressure", SensorID: "mill-pressure", Fallback: 2.1},
	{Column: "mill_particle_size", SensorID: "mill-particle-size", Fallback: 12},
	{Column: "mill_efficiency", SensorID: "mill-efficiency", Fallback: 85},
}

const timestampColumn = "timestamp"
