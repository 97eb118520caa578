package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DJKarma/price-prism/internal/project"
	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/DJKarma/price-prism/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server is the local development server for interactive pricing. The
// project is reloaded from disk on every request so edits show up without
// a restart.
type Server struct {
	projectPath string
	port        int
	logger      *zap.Logger
}

// New creates a server for the given project directory.
func New(projectPath string, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		projectPath: projectPath,
		port:        port,
		logger:      logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /api/units", s.handleUnits)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/floors", s.handleFloors)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	mux.HandleFunc("GET /", s.handleIndex)

	return s.logRequests(mux)
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("server starting",
		zap.String("url", "http://localhost"+addr),
		zap.String("project", s.projectPath))

	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Price Prism</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>Price Prism</h1>
<p>API: <code>/api/config</code> <code>/api/validation</code> <code>/api/units</code> <code>/api/summary</code> <code>/api/floors</code> <code>POST /api/optimize</code></p>
</div>
</body></html>`)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	p, ok := s.load(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Config)
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	p, ok := s.load(w)
	if !ok {
		return
	}
	report := p.Validate()
	if report.Valid {
		mode, err := p.Mode(r.URL.Query().Get("mode"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		priced, err := p.Price(mode)
		if err != nil {
			s.writeProjectError(w, err)
			return
		}
		report = priced.Report
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	priced, ok := s.price(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":  priced.Mode,
		"units": priced.Units,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	priced, ok := s.price(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, priced.Summary)
}

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	p, ok := s.load(w)
	if !ok {
		return
	}
	maxFloor := 0
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("max must be a positive integer, got %q", v))
			return
		}
		maxFloor = n
	}
	writeJSON(w, http.StatusOK, p.FloorTable(maxFloor))
}

// OptimizeRequest is the body of POST /api/optimize.
type OptimizeRequest struct {
	Scope        optimize.Scope           `json:"scope"`
	Mode         string                   `json:"mode,omitempty"`
	BedroomType  string                   `json:"bedroom_type,omitempty"`
	BedroomTypes []string                 `json:"bedroom_types,omitempty"`
	Target       float64                  `json:"target,omitempty"`
	Settings     config.OptimizerSettings `json:"settings"`
}

// OptimizeResponse wraps an optimization result with its run id.
type OptimizeResponse struct {
	RunID string `json:"run_id"`
	*optimize.Result
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if body.Scope == "" {
		body.Scope = optimize.ScopeMega
	}

	p, ok := s.load(w)
	if !ok {
		return
	}
	mode, err := p.Mode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID), zap.String("scope", string(body.Scope)))
	log.Info("optimization started", zap.Float64("target", body.Target))

	res, err := p.Optimize(body.Scope, optimize.Request{
		Mode:         mode,
		BedroomType:  body.BedroomType,
		BedroomTypes: body.BedroomTypes,
		Target:       body.Target,
		Settings:     body.Settings,
	})
	if err != nil {
		log.Warn("optimization failed", zap.Error(err))
		s.writeProjectError(w, err)
		return
	}

	log.Info("optimization finished",
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Float64("final_average_psf", res.FinalAveragePsf))
	writeJSON(w, http.StatusOK, OptimizeResponse{RunID: runID, Result: res})
}

func (s *Server) load(w http.ResponseWriter) (*project.Project, bool) {
	p, err := project.Load(s.projectPath)
	if err != nil {
		s.logger.Error("loading project", zap.String("project", s.projectPath), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return p, true
}

func (s *Server) price(w http.ResponseWriter, r *http.Request) (*project.Priced, bool) {
	p, ok := s.load(w)
	if !ok {
		return nil, false
	}
	mode, err := p.Mode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	priced, err := p.Price(mode)
	if err != nil {
		s.writeProjectError(w, err)
		return nil, false
	}
	return priced, true
}

// writeProjectError maps configuration and optimizer input errors to 422 and
// returns the validation report when there is one.
func (s *Server) writeProjectError(w http.ResponseWriter, err error) {
	var cerr *validation.ConfigurationError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"validation": cerr.Report,
		})
	case errors.Is(err, optimize.ErrNoUnits), errors.Is(err, optimize.ErrNoTarget),
		errors.Is(err, optimize.ErrNoType), errors.Is(err, optimize.ErrUnknownScope):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

// writeJSON encodes v before writing the header so an encoding failure
// surfaces as a 500 rather than a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
