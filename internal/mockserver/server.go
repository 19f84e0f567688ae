// Package mockserver is a local stand-in for the analysis service. It speaks
// the same HTTP contract and produces deterministic, marked-up reports so the
// client can be developed and tested without the real service.
package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mabhi256/medi/internal/upload"
)

const (
	DefaultDailyLimit = 5
	defaultMaxUpload  = 10 << 20
)

type Options struct {
	DailyLimit     int           // analyses per client per day, 0 disables the limit
	FailStatus     int           // when set, every analysis fails with this status
	FailDetail     string        // detail returned with FailStatus
	Delay          time.Duration // artificial processing time
	MaxUploadBytes int64
	Now            func() time.Time
}

type Server struct {
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	day   string
	usage map[string]int
}

func New(opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:   opts,
		logger: logger,
		usage:  make(map[string]int),
	}
}

// Routes builds the chi router serving the analysis contract
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Post("/analyze", s.handleAnalyze)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("mockserver.request",
			"req_id", r.Header.Get("X-Request-ID"),
			"chi_req_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Medi Analyser server is running"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.allow(clientKey(r)) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": fmt.Sprintf("Rate limit exceeded: %d per 1 day", s.opts.DailyLimit),
		})
		return
	}

	if s.opts.FailStatus != 0 {
		body := map[string]string{}
		if s.opts.FailDetail != "" {
			body["detail"] = s.opts.FailDetail
		}
		writeJSON(w, s.opts.FailStatus, body)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "The uploaded file is too large.")
			return
		}
		writeDetail(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	ext := upload.Extension(header.Filename)
	if !slices.Contains(upload.AllowedExtensions, ext) {
		dotted := ""
		if ext != "" {
			dotted = "." + ext
		}
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Unsupported file type '%s'. Allowed: .txt, .pdf", dotted))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	if int64(len(content)) > s.opts.MaxUploadBytes {
		writeDetail(w, http.StatusRequestEntityTooLarge, "The uploaded file is too large.")
		return
	}

	text := extractText(ext, content)
	if strings.TrimSpace(text) == "" {
		writeDetail(w, http.StatusBadRequest, "The uploaded file is empty or contains no readable text.")
		return
	}

	if s.opts.Delay > 0 {
		select {
		case <-time.After(s.opts.Delay):
		case <-r.Context().Done():
			return
		}
	}

	writeJSON(w, http.StatusOK, BuildResult(header.Filename, text))
}

// allow counts one analysis for key and reports whether it is within the
// daily limit. Counters start over when the calendar day changes.
func (s *Server) allow(key string) bool {
	if s.opts.DailyLimit <= 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.opts.Now().Format("2006-01-02")
	if today != s.day {
		s.day = today
		clear(s.usage)
	}

	if s.usage[key] >= s.opts.DailyLimit {
		return false
	}
	s.usage[key]++
	return true
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// extractText returns the readable text of an upload. PDFs are not parsed
// here; their bytes only need to be non-empty.
func extractText(ext string, content []byte) string {
	if ext == "pdf" {
		if len(content) == 0 {
			return ""
		}
		return fmt.Sprintf("PDF document (%d bytes)", len(content))
	}
	return string(content)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

