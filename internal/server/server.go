// Package server exposes the costing pipeline, the validator and the
// sensitivity engine over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/observability"
	"github.com/rgehrsitz/fecons/internal/store"
)

const defaultMaxBodyBytes = 1 << 20

// Server holds the dependencies shared by the HTTP handlers. Store and
// Metrics are optional.
type Server struct {
	Engine  *calculation.CalculationEngine
	Store   *store.Store
	Metrics *observability.Metrics
	Logger  calculation.Logger

	// Workers bounds sensitivity sweep parallelism
	Workers      int
	MaxBodyBytes int64
}

// NewServer creates a server around engine
func NewServer(engine *calculation.CalculationEngine) *Server {
	return &Server{
		Engine:       engine,
		Logger:       calculation.NopLogger{},
		Workers:      1,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/economics", s.handleEconomics)
		r.Post("/sensitivity", s.handleSensitivity)
		r.Get("/sweeps", s.handleListSweeps)
		r.Get("/sweeps/{id}", s.handleGetSweep)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.logger().Infof("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logger() calculation.Logger {
	if s.Logger == nil {
		return calculation.NopLogger{}
	}
	return s.Logger
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateResponse mirrors config.Report with an explicit verdict
type validateResponse struct {
	Valid    bool                `json:"valid"`
	Errors   []config.FieldError `json:"errors"`
	Warnings []config.FieldError `json:"warnings"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInputs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report := config.Validate(in)
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    report.Valid(),
		Errors:   nonNil(report.Errors),
		Warnings: nonNil(report.Warnings),
	})
}

func (s *Server) handleEconomics(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeInputs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.Engine.Run(r.Context(), in)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	opts := domain.SensitivityOptions{Workers: s.Workers}
	q := r.URL.Query()
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("top must be a non-negative integer, got %q", raw))
			return
		}
		opts.TopN = n
		if n == 0 {
			opts.TopN = -1
		}
	}
	if raw := q.Get("step"); raw != "" {
		step, err := strconv.ParseFloat(raw, 64)
		if err != nil || step <= 0 || step >= 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("step must be in (0, 1), got %q", raw))
			return
		}
		opts.Step = step
	}
	resume, _ := strconv.ParseBool(q.Get("resume"))

	in, err := s.decodeInputs(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// a sweep is pointless on an invalid baseline
	if err := config.Validate(in).Err(); err != nil {
		s.writePipelineError(w, err)
		return
	}

	sa := calculation.NewSensitivityAnalyzer(s.Engine)
	if s.Metrics != nil {
		sa.Progress = s.Metrics.Progress(nil)
	}
	start := time.Now()

	var res *domain.SensitivityResult
	if s.Store != nil {
		run, runErr := s.Store.RunSweep(r.Context(), sa, in, opts, resume)
		if run == nil {
			s.writePipelineError(w, runErr)
			return
		}
		if runErr != nil {
			s.logger().Warnf("sweep %d: %v", run.SweepID, runErr)
		}
		w.Header().Set("X-Sweep-Id", strconv.FormatInt(run.SweepID, 10))
		res = run.Result
	} else {
		res, err = sa.Analyze(r.Context(), in, opts)
		if res == nil {
			s.writePipelineError(w, err)
			return
		}
		if err != nil {
			s.logger().Warnf("sweep: %v", err)
		}
	}
	s.Metrics.ObserveSweep(res, time.Since(start))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, errors.New("no sweep ledger configured"))
		return
	}
	sweeps, err := s.Store.ListSweeps(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sweeps == nil {
		sweeps = []store.Sweep{}
	}
	writeJSON(w, http.StatusOK, sweeps)
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, errors.New("no sweep ledger configured"))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid sweep id %q", chi.URLParam(r, "id")))
		return
	}
	sw, err := s.Store.GetSweep(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, sw)
	}
}

// decodeInputs reads the Input Model as JSON or YAML depending on the
// request Content-Type. Unknown keys are rejected either way.
func (s *Server) decodeInputs(r *http.Request) (*domain.Inputs, error) {
	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("request body exceeds %d bytes", limit)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("request body is empty")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		var in domain.Inputs
		if err := dec.Decode(&in); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		config.NormalizeEnums(&in)
		return &in, nil
	}
	return config.NewInputParser().Parse(body)
}

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error      string              `json:"error"`
	Violations []config.FieldError `json:"violations,omitempty"`
}

// writePipelineError maps validation failures to 422 with the full violation
// list, cancellations to 503 and everything else to 500
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var verr *config.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Violations: verr.Errors})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger().Errorf("pipeline: %v", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func nonNil(errs []config.FieldError) []config.FieldError {
	if errs == nil {
		return []config.FieldError{}
	}
	return errs
}
