// Package api exposes the job submission HTTP surface: submit a pipeline
// run, poll its status, and check service health. Runs execute in the
// background; the server only tracks them through the job registry.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/jobs"
	"reelforge/internal/logging"
	"reelforge/internal/runner"
	"reelforge/internal/services"
)

// RunFunc executes one pipeline run with the given effective configuration.
// The server injects it so vendor client construction stays in the
// bootstrap layer.
type RunFunc func(ctx context.Context, cfg *config.Config, processCount int) (runner.Summary, error)

// Server serves the job submission API.
type Server struct {
	cfg      *config.Config
	registry jobs.Registry
	run      RunFunc
	logger   *slog.Logger

	listener net.Listener
	server   *http.Server
	runCtx   context.Context
}

// NewServer constructs the API server around a registry and run function.
func NewServer(cfg *config.Config, registry jobs.Registry, run RunFunc, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "config required", nil)
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "api bind address required", nil)
	}
	if registry == nil || run == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "registry and run function required", nil)
	}

	srv := &Server{
		cfg:      cfg,
		registry: registry,
		run:      run,
		logger:   logging.WithComponent(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleRoot)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/run", srv.handleRun)
	mux.HandleFunc("/status/", srv.handleStatus)

	srv.server = &http.Server{
		Addr:              bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start begins serving. It returns once the listener is bound; ctx
// cancellation shuts the server down and cancels in-flight runs.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.runCtx = ctx

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	if s.runCtx == nil {
		s.runCtx = context.Background()
	}
	return s.server.Handler
}

type runRequest struct {
	ProfileID      string          `json:"profile_id"`
	ProductsPerRun int             `json:"products_per_run,omitempty"`
	ConfigPath     string          `json:"config_path,omitempty"`
	Config         json.RawMessage `json:"config,omitempty"`
}

// configOverrides is the inline config subset a submission may adjust.
type configOverrides struct {
	ProductsPerRun        int      `json:"products_per_run"`
	DelaySeconds          int      `json:"delay_seconds"`
	SpreadsheetID         string   `json:"spreadsheet_id"`
	GCPProjectID          string   `json:"gcp_project_id"`
	ScheduleType          string   `json:"schedule_type"`
	ScheduleTime          string   `json:"schedule_time"`
	ScheduleIntervalHours int      `json:"schedule_interval_hours"`
	ScheduleTimes         []string `json:"schedule_times"`
	RunOnStart            *bool    `json:"run_on_start"`
}

type runResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

type statusResponse struct {
	JobID       string          `json:"job_id"`
	ProfileID   string          `json:"profile_id"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Error       string          `json:"error,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "reelforge",
		"endpoints": map[string]string{
			"health": "GET /health",
			"run":    "POST /run",
			"status": "GET /status/{job_id}",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		s.writeError(w, http.StatusBadRequest, "profile_id is required")
		return
	}

	effective, err := s.effectiveConfig(req)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.registry.Submit(r.Context(), req.ProfileID, string(req.Config))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go s.executeJob(job, effective)

	s.writeJSON(w, http.StatusAccepted, runResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		StatusURL: "/status/" + job.ID,
	})
}

// effectiveConfig resolves the per-job configuration: the server's base
// config, optionally replaced by a config_path file, then adjusted by any
// inline overrides.
func (s *Server) effectiveConfig(req runRequest) (*config.Config, error) {
	effective := *s.cfg
	if path := strings.TrimSpace(req.ConfigPath); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		effective = *loaded
	}
	if len(req.Config) > 0 {
		var overrides configOverrides
		if err := json.Unmarshal(req.Config, &overrides); err != nil {
			return nil, fmt.Errorf("malformed config overrides: %w", err)
		}
		if overrides.ProductsPerRun > 0 {
			effective.Run.ProductsPerRun = overrides.ProductsPerRun
		}
		if overrides.DelaySeconds > 0 {
			effective.Run.DelaySeconds = overrides.DelaySeconds
		}
		if v := strings.TrimSpace(overrides.SpreadsheetID); v != "" {
			effective.Sheets.SpreadsheetID = v
		}
		if v := strings.TrimSpace(overrides.GCPProjectID); v != "" {
			effective.Secrets.GCPProjectID = v
		}
		if v := strings.TrimSpace(overrides.ScheduleType); v != "" {
			effective.Schedule.Type = v
		}
		if v := strings.TrimSpace(overrides.ScheduleTime); v != "" {
			effective.Schedule.Time = v
		}
		if overrides.ScheduleIntervalHours > 0 {
			effective.Schedule.IntervalHours = overrides.ScheduleIntervalHours
		}
		if len(overrides.ScheduleTimes) > 0 {
			effective.Schedule.Times = overrides.ScheduleTimes
		}
		if overrides.RunOnStart != nil {
			effective.Schedule.RunOnStart = *overrides.RunOnStart
		}
	}
	if req.ProductsPerRun > 0 {
		effective.Run.ProductsPerRun = req.ProductsPerRun
	}
	return &effective, nil
}

func (s *Server) executeJob(job jobs.Job, cfg *config.Config) {
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := s.logger.With(logging.String(logging.FieldJobID, job.ID))

	if err := s.registry.Start(ctx, job.ID); err != nil {
		logger.Error("failed to start job", logging.Error(err))
		return
	}
	logger.Info("job started", logging.String("profile_id", job.ProfileID))

	summary, err := s.run(ctx, cfg, cfg.Run.ProductsPerRun)
	if err != nil {
		logger.Error("job failed", logging.Error(err))
		if failErr := s.registry.Fail(ctx, job.ID, err.Error()); failErr != nil {
			logger.Error("failed to record job failure", logging.Error(failErr))
		}
		return
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		logger.Error("failed to encode job result", logging.Error(err))
		encoded = []byte("{}")
	}
	if err := s.registry.Complete(ctx, job.ID, string(encoded)); err != nil {
		logger.Error("failed to record job completion", logging.Error(err))
		return
	}
	logger.Info("job completed", logging.Int("products_processed", summary.ProductsProcessed))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/status/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := statusResponse{
		JobID:       job.ID,
		ProfileID:   job.ProfileID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	}
	if strings.TrimSpace(job.Result) != "" {
		resp.Result = json.RawMessage(job.Result)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
