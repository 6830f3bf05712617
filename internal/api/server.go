// Package api serves accounting queries over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
	"stream-accounting/internal/orchestrator"
)

// Defaults for Options.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultLiveInterval   = 30 * time.Second
)

// Runner executes accounting queries.
type Runner interface {
	Run(ctx context.Context, q orchestrator.Query) (*orchestrator.Result, error)
}

var _ Runner = (*orchestrator.Orchestrator)(nil)

// Options configures a Server.
type Options struct {
	Runner         Runner
	RequestTimeout time.Duration
	// LiveInterval is how often the live feed recomputes its query.
	LiveInterval time.Duration
	Now          func() time.Time
	Logger       *zap.SugaredLogger
}

// Server exposes the accounting API.
type Server struct {
	runner         Runner
	requestTimeout time.Duration
	liveInterval   time.Duration
	now            func() time.Time
	logger         *zap.SugaredLogger
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	s := &Server{
		runner:         opts.Runner,
		requestTimeout: opts.RequestTimeout,
		liveInterval:   opts.LiveInterval,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = DefaultRequestTimeout
	}
	if s.liveInterval <= 0 {
		s.liveInterval = DefaultLiveInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	return s
}

// Routes returns the HTTP handler with all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(allowAnyOrigin)
		r.Get("/networks", s.handleNetworks)
		r.Get("/stream-periods", s.handleStreamPeriods)
		r.Get("/stream-periods/live", s.handleLive)
	})
	return r
}

// errorResponse is the body of a rejected request.
type errorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (s *Server) handleNetworks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Networks())
}

func (s *Server) handleStreamPeriods(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records(res))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Validation error", Errors: verr.Errors})
		return
	}
	s.logger.Errorw("accounting request failed",
		"requestId", middleware.GetReqID(r.Context()),
		"query", r.URL.RawQuery,
		"error", err,
	)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func records(res *orchestrator.Result) []domain.StreamPeriodResult {
	if res == nil || res.Records == nil {
		return []domain.StreamPeriodResult{}
	}
	return res.Records
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(status), time.Since(started).Seconds())
	})
}
