package showcase

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/httputil"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
	"github.com/sklopivo/sklopivo.github.io/internal/stats"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server previews the generated site locally and exposes the statistics
// report as JSON.
type Server struct {
	siteDir   string
	statsPath string
	fsys      fsutil.FileSystem
}

func NewServer(siteDir, statsPath string) *Server {
	return &Server{
		siteDir:   siteDir,
		statsPath: statsPath,
		fsys:      fsutil.OSFileSystem{},
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux routes the stats API and the static site.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/api/health", s.showHealth)
	mux.Handle("/", http.FileServer(http.Dir(s.siteDir)))
	return mux
}

// ListenAndServe runs the preview server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	monitoring.Logf("serving %s on %s", s.siteDir, addr)
	return http.ListenAndServe(addr, LoggingMiddleware(s.ServeMux()))
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	report, err := stats.ReadFile(s.fsys, s.statsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			httputil.NotFound(w, "statistics not generated yet")
			return
		}
		monitoring.Logf("failed to read statistics file: %v", err)
		httputil.InternalServerError(w, "failed to read statistics")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
