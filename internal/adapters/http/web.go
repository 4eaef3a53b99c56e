// Package web serves the activities JSON API and, optionally, the built
// single-page front end.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"activityhub/internal/adapters/email"
	"activityhub/internal/adapters/http/middleware"
	"activityhub/internal/adapters/http/perf"
	"activityhub/internal/adapters/storage/hub"
)

// Options configures a Server. Store is required; everything else has a
// usable zero value.
type Options struct {
	Store     hub.Store
	Degraded  bool
	Collector *perf.Collector

	Sender    email.Sender
	EmailFrom string

	StaticDir      string
	CORSOrigins    []string
	CSRFKey        []byte
	TrustedOrigins []string
	SecureCookies  bool
	RateLimit      float64 // requests per second per client; 0 disables
	SlowRequestMs  int

	RandomID func() int    // login id source; nil uses math/rand
	Dispatch func(func()) // notice sender; nil launches a tracked goroutine
}

// Server holds the dependencies shared by every handler.
type Server struct {
	opts Options

	// background tracks notices started by the default dispatcher.
	background sync.WaitGroup
}

// NewServer builds a server around an opened store.
// PRE: opts.Store is non-nil
// POST: Returns a server; call Handler to obtain the routed http.Handler
func NewServer(opts Options) *Server {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{opts: opts}
	if s.opts.Dispatch == nil {
		s.opts.Dispatch = s.background.Go
	}
	return s
}

// WaitBackground blocks until every notice started by the default
// dispatcher has finished, or ctx is done.
// PRE: the HTTP server has stopped accepting requests
// POST: Returns nil when all notices finished, otherwise ctx.Err()
func (s *Server) WaitBackground(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler wires routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	csrfKey := s.opts.CSRFKey
	if len(csrfKey) != 32 {
		csrfKey = randomKey()
	}
	burst := max(1, int(s.opts.RateLimit*2))
	limiter := middleware.NewRateLimiter(s.opts.RateLimit, burst)

	// Innermost first: Timing sees the mux pattern, RequestID wraps everything.
	return middleware.Chain(mux,
		middleware.Timing(s.opts.Collector, s.opts.SlowRequestMs),
		middleware.RateLimit(limiter),
		middleware.CSRF(csrfKey, s.opts.TrustedOrigins, s.opts.SecureCookies),
		middleware.SecurityHeaders,
		middleware.CORS(s.opts.CORSOrigins),
		middleware.RequestID,
	)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/activities", s.handleActivities)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/admin/students", s.handleAdminStudents)
	mux.HandleFunc("GET /api/admin/activities", s.handleAdminActivities)
	mux.HandleFunc("POST /api/admin/activities", s.handleAdminCreateActivity)
	mux.HandleFunc("GET /api/admin/activity/{id}/participants", s.handleAdminParticipants)
	mux.HandleFunc("POST /api/admin/participation", s.handleAdminRecordParticipation)
	mux.HandleFunc("DELETE /api/admin/participation/{participationId}", s.handleAdminRemoveParticipation)
	mux.HandleFunc("GET /api/admin/stats", s.handleAdminStats)
	mux.HandleFunc("GET /api/admin/perf", s.handleAdminPerf)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	if dir := s.opts.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("/", spaHandler(dir))
			slog.Info("static_bundle_enabled", "dir", dir)
		} else {
			slog.Warn("static_bundle_missing", "dir", dir)
		}
	}
}

// spaHandler serves files from dir and falls back to index.html for any
// path that does not name a file, so client-side routes load the app.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(clean, "/api") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}

// LoadCSRFKey decodes a hex key (32 bytes). An empty key is an error in
// production and a random per-process key otherwise.
// PRE: none
// POST: Returns a 32-byte key or an error
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("ACTIVITIES_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("ACTIVITIES_CSRF_KEY is required in production")
	}
	slog.Warn("csrf_key_random", "hint", "set ACTIVITIES_CSRF_KEY so form tokens survive restarts")
	return randomKey(), nil
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return key
}
