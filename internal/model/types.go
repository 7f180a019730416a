package model

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeReplay Mode = "replay"
	ModeLive   Mode = "live"
)

type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SensorReading is the committed state of one measurement point. Unit,
// Anchor, Color and Description are fixed at registry load; Value, Trend
// and History mutate only through the telemetry store's commit path.
type SensorReading struct {
	ID          string    `json:"id"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Trend       Trend     `json:"trend"`
	Status      Status    `json:"status"`
	History     []float64 `json:"history"`
	Anchor      Vec3      `json:"anchor"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
}

// ReplayRecord is one row of a historical process recording, already mapped
// to sensor ids. Immutable once built.
type ReplayRecord struct {
	Timestamp string             `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}
