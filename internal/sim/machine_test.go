package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"kilntwin/internal/config"
	"kilntwin/internal/dataset"
	"kilntwin/internal/logging"
	"kilntwin/internal/model"
	"kilntwin/internal/registry"
	"kilntwin/internal/telemetry"
)

func newMachineForTest() (*Machine, *telemetry.Store) {
	store := telemetry.NewStore(registry.All(), 240)
	m := NewMachine(config.DefaultConfig(), logging.Nop(), store, rand.New(rand.NewSource(1)))
	return m, store
}

func TestInitialModeIsIdle(t *testing.T) {
	m, _ := newMachineForTest()
	if m.Mode() != model.ModeIdle {
		t.Fatalf("initial mode %v", m.Mode())
	}
}

func TestEnterReplayWithEmptyDatasetFails(t *testing.T) {
	m, _ := newMachineForTest()
	if err := m.LoadDataset(context.Background(), dataset.Rows{}); !errors.Is(err, dataset.ErrDatasetEmpty) {
		t.Fatalf("load of empty rows: %v", err)
	}
	if err := m.EnterReplay(); !errors.Is(err, dataset.ErrDatasetEmpty) {
		t.Fatalf("expected dataset load failure, got %v", err)
	}
	if m.Mode() != model.ModeIdle {
		t.Fatalf("mode changed on failed transition: %v", m.Mode())
	}
	if m.DatasetLen() != 1 {
		t.Fatalf("fallback baseline missing, dataset len %d", m.DatasetLen())
	}
}

func TestEnterReplayWithoutLoadFails(t *testing.T) {
	m, _ := newMachineForTest()
	if err := m.EnterReplay(); !errors.Is(err, dataset.ErrDatasetEmpty) {
		t.Fatalf("expected dataset load failure before any load, got %v", err)
	}
}

func TestReplayTickAppliesRecordAndWraps(t *testing.T) {
	m, store := newMachineForTest()
	rows := dataset.Rows{
		{"burning_zone_temp": 2500.0},
		{"burning_zone_temp": 1000.0},
	}
	if err := m.LoadDataset(context.Background(), rows); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.tickReplay(m.gen)
	if r, _ := store.Reading("burning-zone-temperature"); r.Value != 2000 {
		t.Fatalf("first tick should commit clamped 2000, got %v", r.Value)
	}
	m.tickReplay(m.gen)
	if r, _ := store.Reading("burning-zone-temperature"); r.Value != 1000 {
		t.Fatalf("second tick should commit 1000, got %v", r.Value)
	}
	m.tickReplay(m.gen)
	if r, _ := store.Reading("burning-zone-temperature"); r.Value != 2000 {
		t.Fatalf("index should wrap back to the first record, got %v", r.Value)
	}
}

func TestLiveTickJitterWithinOnePercent(t *testing.T) {
	m, store := newMachineForTest()
	store.Commit([]telemetry.Update{{ID: "mill-feed", Value: 100}})
	m.tickLive(m.gen)
	r, _ := store.Reading("mill-feed")
	if r.Value < 99 || r.Value > 101 {
		t.Fatalf("jittered value %v outside [99,101]", r.Value)
	}
	rule, _ := store.Rule("mill-feed")
	if r.Value < rule.Min || r.Value > rule.Max {
		t.Fatalf("jittered value %v outside legal range", r.Value)
	}
}

func TestLiveTickKeepsAllSensorsInRange(t *testing.T) {
	m, store := newMachineForTest()
	for i := 0; i < 50; i++ {
		m.tickLive(m.gen)
	}
	for id, r := range store.Snapshot() {
		rule, _ := store.Rule(id)
		if r.Value < rule.Min || r.Value > rule.Max {
			t.Fatalf("sensor %s out of range: %v", id, r.Value)
		}
	}
}

func TestStaleTickCannotCommitAfterSwitch(t *testing.T) {
	m, _ := newMachineForTest()
	stale := m.gen
	if err := m.EnterLive(); err != nil {
		t.Fatalf("enter live: %v", err)
	}
	before := m.Ticks()
	m.tickLive(stale)
	if m.Ticks() != before {
		t.Fatalf("tick from an exited generation committed")
	}
	if err := m.EnterIdle(); err != nil {
		t.Fatalf("enter idle: %v", err)
	}
}

func TestEnterIdleRestoresBaseline(t *testing.T) {
	m, store := newMachineForTest()
	store.Commit([]telemetry.Update{{ID: "burning-zone-temperature", Value: 1800}})
	if err := m.EnterIdle(); err != nil {
		t.Fatalf("enter idle: %v", err)
	}
	r, _ := store.Reading("burning-zone-temperature")
	if r.Value != 1450 {
		t.Fatalf("idle baseline %v, want 1450", r.Value)
	}
}

func TestSingleActiveMode(t *testing.T) {
	m, _ := newMachineForTest()
	if err := m.EnterLive(); err != nil {
		t.Fatalf("enter live: %v", err)
	}
	if m.Mode() != model.ModeLive {
		t.Fatalf("mode %v, want live", m.Mode())
	}
	if err := m.LoadDataset(context.Background(), dataset.Rows{{"burning_zone_temp": 1400.0}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.EnterReplay(); err != nil {
		t.Fatalf("enter replay: %v", err)
	}
	if m.Mode() != model.ModeReplay {
		t.Fatalf("mode %v, want replay", m.Mode())
	}
	m.Stop()
	if m.Mode() != model.ModeIdle {
		t.Fatalf("mode %v after stop, want idle", m.Mode())
	}
}

type captureSink struct {
	count int
}

func (c *captureSink) Publish(map[string]model.SensorReading) { c.count++ }

func TestPublisherSeesEveryCommit(t *testing.T) {
	m, _ := newMachineForTest()
	sink := &captureSink{}
	m.SetPublisher(sink)
	m.tickLive(m.gen)
	m.tickLive(m.gen)
	if sink.count != 2 {
		t.Fatalf("publisher called %d times, want 2", sink.count)
	}
}
