// Package server exposes a layout artifact over HTTP: the artifact itself,
// point hit-testing and frame queries.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/labelmap/pkg/buildinfo"
	"github.com/matzehuels/labelmap/pkg/errors"
	"github.com/matzehuels/labelmap/pkg/geom"
	"github.com/matzehuels/labelmap/pkg/topology"
)

// Server serves one artifact. The artifact is read-only, so handlers run
// concurrently without locking.
type Server struct {
	artifact *topology.Artifact
	data     []byte
	logger   *log.Logger
	router   chi.Router
}

// New encodes a once and builds the router.
func New(a *topology.Artifact, logger *log.Logger) (*Server, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode artifact")
	}
	if logger == nil {
		logger = log.Default()
	}
	// Build the hit index before the first request.
	a.HitIndex()

	s := &Server{artifact: a, data: data, logger: logger}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(serverHeader)

	r.Get("/healthz", s.handleHealth)
	r.Get("/artifact", s.handleArtifact)
	r.Get("/hit", s.handleHit)
	r.Get("/frame", s.handleFrame)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", buildinfo.Short())
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Objects int    `json:"objects"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Objects: s.artifact.Len(),
		Version: buildinfo.Version,
	})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.data)
}

// HitResponse is returned by GET /hit. Hit is the object acted on; Hits
// lists every object under the point in collection order.
type HitResponse struct {
	X    float64           `json:"x"`
	Y    float64           `json:"y"`
	Hit  *topology.Object  `json:"hit"`
	Hits []topology.Object `json:"hits"`
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	x, err := floatParam(r, "x")
	if err != nil {
		writeError(w, err)
		return
	}
	y, err := floatParam(r, "y")
	if err != nil {
		writeError(w, err)
		return
	}

	resp := HitResponse{X: x, Y: y, Hits: s.artifact.Hit(x, y)}
	if len(resp.Hits) > 0 {
		resp.Hit = &resp.Hits[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

// FrameResponse is returned by GET /frame.
type FrameResponse struct {
	Objects []topology.Object `json:"objects"`
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var vals [4]float64
	for i, name := range []string{"minX", "minY", "maxX", "maxY"} {
		v, err := floatParam(r, name)
		if err != nil {
			writeError(w, err)
			return
		}
		vals[i] = v
	}
	rect := geom.Rect{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if rect.MinX > rect.MaxX || rect.MinY > rect.MaxY {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "frame has negative extent"))
		return
	}
	writeJSON(w, http.StatusOK, FrameResponse{Objects: s.artifact.Frame(rect)})
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %q must be a finite number", name)
	}
	return v, nil
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
