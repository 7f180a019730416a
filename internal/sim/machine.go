// Package sim owns which driver writes to the telemetry store. Exactly one
// of the three modes is active at any time; switching modes cancels the
// previous driver before the next one starts, so no tick from an exited
// mode ever lands after the switch.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"kilntwin/internal/config"
	"kilntwin/internal/dataset"
	"kilntwin/internal/model"
	"kilntwin/internal/telemetry"
)

// Publisher receives every committed snapshot. Must not block.
type Publisher interface {
	Publish(snapshot map[string]model.SensorReading)
}

type Machine struct {
	logger *slog.Logger
	store  *telemetry.Store
	cfg    atomic.Value
	rng    *rand.Rand

	mu        sync.Mutex
	mode      model.Mode
	gen       uint64
	cancel    context.CancelFunc
	dataset   []model.ReplayRecord
	loaded    bool
	replayIdx int
	ticks     uint64
	publisher Publisher
}

// NewMachine builds an idle machine. A nil rng gets a time-seeded source;
// tests inject a fixed seed for reproducible live jitter.
func NewMachine(cfg *config.Config, logger *slog.Logger, store *telemetry.Store, rng *rand.Rand) *Machine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Machine{
		logger:  logger,
		store:   store,
		rng:     rng,
		mode:    model.ModeIdle,
		dataset: dataset.Fallback(),
	}
	m.cfg.Store(cfg)
	return m
}

func (m *Machine) UpdateConfig(cfg *config.Config) {
	if cfg != nil {
		m.cfg.Store(cfg)
	}
}

func (m *Machine) config() *config.Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

// SetPublisher attaches a snapshot consumer called after every commit.
func (m *Machine) SetPublisher(p Publisher) {
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

// LoadDataset replaces the replay dataset from src. On failure the fallback
// baseline is retained so replay can never index an empty slice, and the
// error is surfaced exactly once to the caller; retry is a caller decision.
func (m *Machine) LoadDataset(ctx context.Context, src dataset.RowSource) error {
	records, err := dataset.Load(ctx, src)
	m.mu.Lock()
	m.dataset = records
	m.loaded = err == nil
	m.replayIdx = 0
	m.mu.Unlock()
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("dataset load failed", "err", err)
		}
		return err
	}
	if m.logger != nil {
		m.logger.Info("dataset loaded", "records", len(records))
	}
	return nil
}

// EnterIdle stops the active driver and restores the registry baseline.
// Always legal.
func (m *Machine) EnterIdle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.mode = model.ModeIdle
	m.store.Reset()
	if m.logger != nil {
		m.logger.Info("mode changed", "mode", model.ModeIdle)
	}
	return nil
}

// EnterReplay starts cycling through the loaded dataset. Requires a
// successfully loaded, non-empty dataset; otherwise the current mode keeps
// running and the load failure is reported.
func (m *Machine) EnterReplay() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded || len(m.dataset) == 0 {
		return fmt.Errorf("enter replay: %w", dataset.ErrDatasetEmpty)
	}
	m.startLocked(model.ModeReplay, m.config().Simulation.ReplayInterval, m.tickReplay)
	return nil
}

// EnterLive starts the synthetic jitter driver. Always legal.
func (m *Machine) EnterLive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked(model.ModeLive, m.config().Simulation.LiveInterval, m.tickLive)
	return nil
}

// Stop cancels the active driver without touching committed values.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.mode = model.ModeIdle
}

func (m *Machine) Mode() model.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *Machine) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

func (m *Machine) DatasetLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dataset)
}

// stopLocked cancels the running driver and invalidates its generation, so
// an in-flight tick from the old mode can no longer commit.
func (m *Machine) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}

func (m *Machine) startLocked(mode model.Mode, interval time.Duration, tick func(gen uint64)) {
	m.stopLocked()
	m.mode = mode
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	if m.logger != nil {
		m.logger.Info("mode changed", "mode", mode, "interval", interval)
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick(gen)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// tickReplay advances the cyclic dataset index by one and commits that
// record's values.
func (m *Machine) tickReplay(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || len(m.dataset) == 0 {
		return
	}
	rec := m.dataset[m.replayIdx%len(m.dataset)]
	m.replayIdx = (m.replayIdx + 1) % len(m.dataset)
	batch := make([]telemetry.Update, 0, len(rec.Values))
	for _, id := range sortedKeys(rec.Values) {
		batch = append(batch, telemetry.Update{ID: id, Value: rec.Values[id]})
	}
	m.commitLocked(batch)
}

// tickLive perturbs every sensor independently by up to ±1% of its current
// value. All proposals are computed from one pre-tick snapshot.
func (m *Machine) tickLive(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	snapshot := m.store.Snapshot()
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	batch := make([]telemetry.Update, 0, len(ids))
	for _, id := range ids {
		value := snapshot[id].Value
		jitter := (m.rng.Float64()*2 - 1) * 0.01 * value
		batch = append(batch, telemetry.Update{ID: id, Value: value + jitter})
	}
	m.commitLocked(batch)
}

func (m *Machine) commitLocked(batch []telemetry.Update) {
	m.store.Commit(batch)
	m.ticks++
	if m.publisher != nil {
		m.publisher.Publish(m.store.Snapshot())
	}
}

func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
