package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kilntwin/internal/config"
	"kilntwin/internal/dataset"
	"kilntwin/internal/lod"
	"kilntwin/internal/model"
	"kilntwin/internal/particles"
	"kilntwin/internal/sim"
	"kilntwin/internal/telemetry"
	"kilntwin/internal/validate"
)

type Server struct {
	cfg       *config.Manager
	machine   *sim.Machine
	store     *telemetry.Store
	lod       *lod.Controller
	particles *particles.System
	logger    *slog.Logger
	version   string
}

type statusResponse struct {
	Status     string `json:"status"`
	Time       string `json:"time"`
	Version    string `json:"version"`
	ConfigPath string `json:"config_path,omitempty"`
	Mode       string `json:"mode"`
	Ticks      uint64 `json:"ticks"`
	Sensors    int    `json:"sensors"`
	DatasetLen int    `json:"dataset_len"`
}

func Start(ctx context.Context, cfg *config.Manager, machine *sim.Machine, store *telemetry.Store,
	lodCtl *lod.Controller, system *particles.System, logger *slog.Logger, version string) *http.Server {
	if cfg == nil {
		return nil
	}
	current := cfg.Get().API
	if !current.Enabled {
		if logger != nil {
			logger.Info("api disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("api enabled", "addr", current.Addr)
	}
	server := &Server{
		cfg:       cfg,
		machine:   machine,
		store:     store,
		lod:       lodCtl,
		particles: system,
		logger:    logger,
		version:   version,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/readings", server.handleReadings)
	mux.HandleFunc("/readings/", server.handleReadings)
	mux.HandleFunc("/mode", server.handleMode)
	mux.HandleFunc("/camera", server.handleCamera)
	mux.HandleFunc("/lod", server.handleLOD)
	mux.HandleFunc("/particles", server.handleParticles)
	mux.HandleFunc("/admin/reset", server.handleReset)

	httpServer := &http.Server{Addr: current.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp := statusResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:    s.version,
		ConfigPath: s.cfg.Path(),
		Mode:       string(s.machine.Mode()),
		Ticks:      s.machine.Ticks(),
		Sensors:    s.store.Len(),
		DatasetLen: s.machine.DatasetLen(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/readings")
	id = strings.TrimPrefix(id, "/")
	if id != "" {
		reading, ok := s.store.Reading(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, reading)
		return
	}
	snapshot := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"readings": snapshot,
		"count":    len(snapshot),
	})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"mode": s.machine.Mode()})
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var switchErr error
		switch model.Mode(strings.ToLower(strings.TrimSpace(req.Mode))) {
		case model.ModeIdle:
			switchErr = s.machine.EnterIdle()
		case model.ModeReplay:
			switchErr = s.machine.EnterReplay()
		case model.ModeLive:
			switchErr = s.machine.EnterLive()
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown mode"})
			return
		}
		if switchErr != nil {
			status := http.StatusInternalServerError
			if errors.Is(switchErr, dataset.ErrDatasetEmpty) {
				status = http.StatusConflict
			}
			writeJSON(w, status, map[string]any{
				"error": switchErr.Error(),
				"mode":  s.machine.Mode(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"mode": s.machine.Mode()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req struct {
		Position []float64 `json:"position"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	camera, ok := validate.Position(req.Position)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "position must be a 3-tuple of finite numbers"})
		return
	}
	tiers := s.lod.Observe(camera)
	s.particles.Retier(tiers)
	writeJSON(w, http.StatusOK, map[string]any{"tiers": tiers})
}

func (s *Server) handleLOD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": s.lod.Tiers()})
}

func (s *Server) handleParticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": s.particles.ActiveCounts()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = s.machine.EnterIdle()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "mode": s.machine.Mode()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
