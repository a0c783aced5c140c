package web

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stronganchortech/bible-linker/internal/config"
	"github.com/stronganchortech/bible-linker/internal/content"
	"github.com/stronganchortech/bible-linker/internal/linker"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "content.db")

	store, err := content.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, store, logger)
}

func do(t *testing.T, h http.Handler, method, target string, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	resp := do(t, testServer(t).Handler(), http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHandleRewrite(t *testing.T) {
	h := testServer(t).Handler()

	resp := do(t, h, http.MethodPost, "/api/rewrite?version=ESV", "<p>Read Jn 3:16 and Ps 23.</p>")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Links-Added") != "2" {
		t.Fatalf("expected 2 links, got: %s", resp.Header.Get("X-Links-Added"))
	}
	want := `<a href="https://www.biblegateway.com/passage/?search=John%203%3A16&version=ESV" target="_blank" rel="noopener">John 3:16</a>`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %s, got: %s", want, body)
	}
	if !strings.Contains(body, ">Psalm 23</a>") {
		t.Fatalf("expected chapter link, got: %s", body)
	}
}

func TestHandleRewriteUnchanged(t *testing.T) {
	resp := do(t, testServer(t).Handler(), http.MethodPost, "/api/rewrite", "<h1>John 3:16</h1>")
	if body := readBody(t, resp); body != "<h1>John 3:16</h1>" {
		t.Fatalf("expected input echoed, got: %s", body)
	}
	if resp.Header.Get("X-Links-Added") != "0" {
		t.Fatalf("expected no links, got: %s", resp.Header.Get("X-Links-Added"))
	}
}

func TestHandleRewriteCharset(t *testing.T) {
	h := testServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader("<p>Caf\xe9 Rom 8:28</p>"))
	req.Header.Set("Content-Type", "text/html; charset=iso-8859-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Café") || !strings.Contains(body, ">Romans 8:28</a>") {
		t.Fatalf("expected decoded and linked body, got: %s", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("expected utf-8 response, got: %s", ct)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader("Caf\xe9 Rom 8:28"))
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid utf-8, got: %d", w.Code)
	}
}

func TestHandleURL(t *testing.T) {
	h := testServer(t).Handler()

	resp := do(t, h, http.MethodGet, "/api/url?ref=1+cor+13:4-7&site=biblia", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d", resp.StatusCode)
	}
	var view urlView
	decode(t, resp, &view)
	if view.Display != "1 Corinthians 13:4-7" || view.Book != "1 Corinthians" || view.Chapter != 13 {
		t.Fatalf("unexpected reference: %+v", view)
	}
	if view.URL != "https://biblia.com/bible/NIV/1Corinthians13.4-7" {
		t.Fatalf("unexpected url: %s", view.URL)
	}

	resp = do(t, h, http.MethodGet, "/api/url?ref=hello", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got: %d", resp.StatusCode)
	}
}

func TestContentLifecycle(t *testing.T) {
	h := testServer(t).Handler()

	resp := do(t, h, http.MethodPut, "/api/content/p1", `{"type":"post","title":"Hope","body":"<p>See Rom 8:28.</p>"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var out linker.Outcome
	decode(t, resp, &out)
	if !out.Changed || out.Links != 1 || out.Skipped {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	resp = do(t, h, http.MethodGet, "/api/content/p1", "")
	var item content.Item
	decode(t, resp, &item)
	if !strings.Contains(item.Body, ">Romans 8:28</a>") {
		t.Fatalf("expected stored body to be linked, got: %s", item.Body)
	}

	for _, target := range []string{"/api/citations?book=Rom", "/api/content/p1/citations"} {
		var citations []content.Citation
		decode(t, do(t, h, http.MethodGet, target, ""), &citations)
		if len(citations) != 1 || citations[0].Display != "Romans 8:28" || citations[0].ItemID != "p1" {
			t.Fatalf("%s: unexpected citations: %+v", target, citations)
		}
	}

	var results content.SearchResponse
	decode(t, do(t, h, http.MethodGet, "/api/search?q=hope", ""), &results)
	if results.Total != 1 || results.Results[0].ID != "p1" {
		t.Fatalf("unexpected search results: %+v", results)
	}

	var items []content.Item
	decode(t, do(t, h, http.MethodGet, "/api/content?type=post", ""), &items)
	if len(items) != 1 {
		t.Fatalf("expected one post, got: %d", len(items))
	}
}

func TestPutContentUnhandledType(t *testing.T) {
	h := testServer(t).Handler()

	resp := do(t, h, http.MethodPut, "/api/content/n1", `{"type":"note","body":"John 3:16"}`)
	var out linker.Outcome
	decode(t, resp, &out)
	if !out.Skipped || out.Changed {
		t.Fatalf("expected skipped outcome, got: %+v", out)
	}
}

func TestContentErrors(t *testing.T) {
	h := testServer(t).Handler()

	if resp := do(t, h, http.MethodGet, "/api/content/missing", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got: %d", resp.StatusCode)
	}
	if resp := do(t, h, http.MethodPut, "/api/content/x", "{"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got: %d", resp.StatusCode)
	}
	if resp := do(t, h, http.MethodGet, "/api/citations?book=Nineveh", ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown book, got: %d", resp.StatusCode)
	}
}

func TestContentWithoutStore(t *testing.T) {
	srv := NewServer(config.Default(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := srv.Handler()

	if resp := do(t, h, http.MethodGet, "/api/search?q=x", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got: %d", resp.StatusCode)
	}
	// Rewriting does not need the store.
	if resp := do(t, h, http.MethodPost, "/api/rewrite", "John 1:1"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d", resp.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	srv := testServer(t)
	var buf bytes.Buffer
	srv.logger = slog.New(slog.NewTextHandler(&buf, nil))
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, "/healthz", "")
	if len(resp.Header.Get(requestIDHeader)) != 36 {
		t.Fatalf("expected generated request id, got: %q", resp.Header.Get(requestIDHeader))
	}

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "abc123" {
		t.Fatalf("expected request id echoed, got: %q", w.Header().Get(requestIDHeader))
	}
	if !strings.Contains(buf.String(), "request_id=abc123") {
		t.Fatalf("expected request id in log, got: %s", buf.String())
	}
}

func TestLogRequestsStatus(t *testing.T) {
	srv := testServer(t)
	var buf bytes.Buffer
	srv.logger = slog.New(slog.NewTextHandler(&buf, nil))

	tests := map[string]http.HandlerFunc{
		"status=404": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
		"status=200": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("implicit")) },
	}
	for want, fn := range tests {
		buf.Reset()
		srv.logRequests(fn).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if !strings.Contains(buf.String(), want) || !strings.Contains(buf.String(), "duration=") {
			t.Fatalf("expected %s in log, got: %s", want, buf.String())
		}
	}
}

func TestGzipRewriteResponse(t *testing.T) {
	h := testServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader("John 3:16"))
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected Content-Encoding: gzip, got %q", w.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer func() { _ = gr.Close() }()
	body, _ := io.ReadAll(gr)
	if !strings.Contains(string(body), ">John 3:16</a>") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestGzipSkipsWithoutAcceptEncoding(t *testing.T) {
	resp := do(t, testServer(t).Handler(), http.MethodGet, "/healthz", "")
	if resp.Header.Get("Content-Encoding") == "gzip" {
		t.Fatal("should not gzip without Accept-Encoding")
	}
}

func TestResponseWriterImplementsFlusher(t *testing.T) {
	var rw any = &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, ok := rw.(http.Flusher); !ok {
		t.Fatal("responseWriter should implement http.Flusher")
	}
}
