package web

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stronganchortech/bible-linker/internal/books"
	"github.com/stronganchortech/bible-linker/internal/config"
	"github.com/stronganchortech/bible-linker/internal/content"
	"github.com/stronganchortech/bible-linker/internal/linker"
	"github.com/stronganchortech/bible-linker/internal/logging"
	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/sites"
	"github.com/stronganchortech/bible-linker/internal/transform"
)

// maxBodyBytes bounds request bodies accepted by the rewrite and content
// endpoints.
const maxBodyBytes = 8 << 20

const requestIDHeader = "X-Request-ID"

type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *content.Store
	rewriter *transform.Rewriter
	linker   *linker.Service
}

// NewServer wires the HTTP API over store. store may be nil, in which case
// the content endpoints answer 503.
func NewServer(cfg *config.Config, store *content.Store, logger *slog.Logger) *Server {
	rewriter := transform.NewRewriter(logger)
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		rewriter: rewriter,
	}
	if store != nil {
		s.linker = &linker.Service{
			Store:    store,
			Rewriter: rewriter,
			Settings: cfg,
			Logger:   logger,
		}
	}
	if !cfg.KnownSite() {
		logger.Warn("unknown link site, references link to placeholder", "site", cfg.Site)
	}
	return s
}

// Handler returns the routed handler with request IDs, logging and gzip
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/rewrite", s.handleRewrite)
	mux.HandleFunc("GET /api/url", s.handleURL)
	mux.HandleFunc("GET /api/content", s.handleListContent)
	mux.HandleFunc("GET /api/content/{id}", s.handleGetContent)
	mux.HandleFunc("PUT /api/content/{id}", s.handlePutContent)
	mux.HandleFunc("GET /api/content/{id}/citations", s.handleItemCitations)
	mux.HandleFunc("GET /api/citations", s.handleCitations)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	return s.withRequestID(s.logRequests(gzipHandler(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRewrite links the references in the posted HTML. The version and
// site query parameters override the configured ones; a charset parameter
// on the request Content-Type selects the input encoding.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	cfg := s.linking(r)
	contentType := r.Header.Get("Content-Type")
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		cfg.Charset = params["charset"]
	}

	res, err := s.rewriter.Rewrite(string(body), cfg)
	if err != nil {
		var encErr *transform.ContentEncodingError
		if errors.As(err, &encErr) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if res.Changed || contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Links-Added", strconv.Itoa(res.Links))
	_, _ = io.WriteString(w, res.HTML)
}

type urlView struct {
	Display string `json:"display"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	URL     string `json:"url"`
}

func (s *Server) handleURL(w http.ResponseWriter, r *http.Request) {
	m, err := reference.Parse(r.URL.Query().Get("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg := s.linking(r)
	c := reference.Canonicalize(m)
	writeJSON(w, http.StatusOK, urlView{
		Display: c.Display,
		Book:    c.Book,
		Chapter: c.Chapter,
		URL:     sites.URL(c.Display, cfg.Version, cfg.Site),
	})
}

type contentRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req contentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item := content.Item{ID: r.PathValue("id"), Type: req.Type, Title: req.Title, Body: req.Body}
	out, err := s.linker.Save(r.Context(), item)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, linker.ErrReentrantSave):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, transform.ErrInvalidUTF8):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, content.ErrMissingID):
		writeError(w, http.StatusBadRequest, err)
	default:
		logging.FromContext(r.Context(), s.logger).Error("save content", "id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	item, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	items, err := s.store.List(r.Context(), r.URL.Query().Get("type"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleItemCitations(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	citations, err := s.store.Citations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, citations)
}

// handleCitations lists the citations of one book. The book may be given by
// any recognized spelling, such as "Jn" or "1 Cor".
func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	book, ok := books.Default().Lookup(r.URL.Query().Get("book"))
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("unknown book"))
		return
	}
	citations, err := s.store.ReferencesFor(r.Context(), book.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, citations)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	results, err := s.store.Search(r.Context(), r.URL.Query().Get("q"),
		parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// linking returns the configured rewrite settings with any version and site
// query overrides applied.
func (s *Server) linking(r *http.Request) transform.Config {
	cfg := s.cfg.Linking()
	q := r.URL.Query()
	if v := q.Get("version"); v != "" {
		cfg.Version = v
	}
	if site := q.Get("site"); site != "" {
		cfg.Site = sites.Site(site)
	}
	return cfg
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("content store unavailable"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher, delegating to the underlying writer.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withRequestID tags each request with the caller's X-Request-ID or a new
// one, and echoes it in the response.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		logging.FromContext(r.Context(), s.logger).Info("request",
			"method", r.Method,
			"path", filepath.Clean(r.URL.Path),
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

// gzipResponseWriter conditionally compresses responses for compressible content types.
type gzipResponseWriter struct {
	http.ResponseWriter
	gw      *gzip.Writer
	sniffed bool
}

func (grw *gzipResponseWriter) WriteHeader(code int) {
	if code != http.StatusNotModified {
		grw.sniff()
	}
	grw.ResponseWriter.WriteHeader(code)
}

func (grw *gzipResponseWriter) Write(b []byte) (int, error) {
	grw.sniff()
	if grw.gw != nil {
		return grw.gw.Write(b)
	}
	return grw.ResponseWriter.Write(b)
}

func (grw *gzipResponseWriter) sniff() {
	if grw.sniffed {
		return
	}
	grw.sniffed = true

	ct := grw.ResponseWriter.Header().Get("Content-Type")
	if strings.HasPrefix(ct, "text/") || strings.HasPrefix(ct, "application/json") {
		grw.ResponseWriter.Header().Set("Content-Encoding", "gzip")
		grw.ResponseWriter.Header().Del("Content-Length")
	} else {
		grw.gw = nil
	}
}

func (grw *gzipResponseWriter) Flush() {
	if grw.gw != nil {
		_ = grw.gw.Flush()
	}
	if f, ok := grw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func gzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gw := gzip.NewWriter(w)
		grw := &gzipResponseWriter{ResponseWriter: w, gw: gw}
		next.ServeHTTP(grw, r)
		if grw.gw != nil {
			_ = grw.gw.Close()
		}
	})
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
