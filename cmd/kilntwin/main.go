package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kilntwin/internal/api"
	"kilntwin/internal/config"
	"kilntwin/internal/dataset"
	"kilntwin/internal/export"
	"kilntwin/internal/lod"
	"kilntwin/internal/logging"
	"kilntwin/internal/particles"
	"kilntwin/internal/registry"
	"kilntwin/internal/sim"
	"kilntwin/internal/telemetry"
)

const version = "1.0.0"

const animationInterval = 100 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "path to yaml or json config file")
	flag.Parse()

	var manager *config.Manager
	if *configPath != "" {
		m, err := config.NewManager(config.ResolvePath(*configPath))
		if err != nil {
			logging.NewLogger("error").Error("load config", "err", err)
			os.Exit(1)
		}
		manager = m
	} else {
		manager = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := manager.Get()
	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting kilntwin", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := telemetry.NewStore(registry.All(), cfg.Simulation.HistoryCapacity)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	machine := sim.NewMachine(cfg, logger, store, rng)
	defer machine.Stop()

	src, err := dataset.NewSource(cfg.Dataset)
	if err != nil {
		logger.Error("dataset source", "err", err)
		os.Exit(1)
	}
	if src != nil {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.Timeout)
		if err := machine.LoadDataset(loadCtx, src); err != nil {
			logger.Warn("recording unavailable, replay will report a load failure", "err", err)
		}
		cancel()
	}

	if pub := export.StartKafka(ctx, cfg.Export, logger); pub != nil {
		machine.SetPublisher(pub)
	}

	lodCtl := lod.NewController(
		lod.Thresholds{High: cfg.LOD.HighCutoff, Medium: cfg.LOD.MediumCutoff},
		cfg.LOD.ThrottleTicks,
		store.Anchors(),
	)
	system := particles.NewSystem(cfg.Particles, rand.New(rand.NewSource(time.Now().UnixNano())))

	api.Start(ctx, manager, machine, store, lodCtl, system, logger, version)

	// Animation tick: advance the pools and follow tier changes.
	go func() {
		ticker := time.NewTicker(animationInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				system.Retier(lodCtl.Tiers())
				system.Step(animationInterval.Seconds(), store.Snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
}
