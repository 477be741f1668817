// Package web serves the meeting calendar HTTP API.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"meetcal/internal/capture"
	"meetcal/internal/config"
	"meetcal/internal/importer"
	"meetcal/internal/layout"
	appLog "meetcal/internal/log"
	"meetcal/internal/schedule"
)

// maxUploadBytes bounds an uploaded workbook.
const maxUploadBytes = 20 << 20

// Server provides the HTTP API over a schedule.Store.
type Server struct {
	cfg      *config.Config
	store    *schedule.Store
	grid     layout.Grid
	capturer capture.Capturer
	mux      *http.ServeMux

	// captureMu serializes preview captures; a second request while one
	// runs is rejected rather than queued.
	captureMu sync.Mutex
}

// NewServer constructs a Server. A nil cfg means DefaultConfig; a nil
// capturer means headless Chromium.
func NewServer(cfg *config.Config, store *schedule.Store, capturer capture.Capturer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if capturer == nil {
		capturer = capture.Chromium{}
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		grid:     GridFromConfig(cfg.Grid),
		capturer: capturer,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// GridFromConfig converts the configured grid, keeping the default day
// start when the configured one does not parse.
func GridFromConfig(g config.GridConfig) layout.Grid {
	grid := layout.Grid{
		DayStart:    layout.DefaultGrid.DayStart,
		SlotMinutes: g.SlotMinutes,
		SlotCount:   g.SlotCount,
		SlotHeight:  g.SlotHeight,
	}
	if d, err := g.DayStartOffset(); err == nil {
		grid.DayStart = d
	}
	return grid
}

// Handler returns the API handler wrapped in request logging and, when
// configured, basic auth.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	return requestLogger(appLog.Logger)(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/import", s.handleImport)
	s.mux.HandleFunc("POST /api/import/preview", s.handleImportPreview)

	s.mux.HandleFunc("GET /api/meetings", s.handleListMeetings)
	s.mux.HandleFunc("POST /api/meetings", s.handleAddMeeting)
	s.mux.HandleFunc("GET /api/meetings.ics", s.handleICS)

	s.mux.HandleFunc("GET /api/week", s.handleWeek)
	s.mux.HandleFunc("GET /api/dates", s.handleDates)
	s.mux.HandleFunc("GET /api/time-options", s.handleTimeOptions)
	s.mux.HandleFunc("GET /api/categories", s.handleCategories)

	s.mux.HandleFunc("POST /api/preview", s.handleCapture)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) importOptions() importer.Options {
	return importer.Options{SheetName: s.cfg.SheetName}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="meetcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
