package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tutorleap/qgen/internal/qgen"
	"github.com/tutorleap/qgen/internal/ratelimit"
	"github.com/tutorleap/qgen/internal/store"
)

func newTestServer(t *testing.T, st *store.Store) http.Handler {
	t.Helper()
	engine := qgen.New(nil, qgen.DefaultConfig())
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
	srv := New(engine, limiter, st, DefaultConfig())
	return srv.Handler()
}

func postGenerate(t *testing.T, h http.Handler, body, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-questions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":51234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

const validBody = `{"board": "CBSE", "grade": "8", "subject": "Science", "format": "ShortAnswer", "count": 5}`

func TestGenerate_Success(t *testing.T) {
	h := newTestServer(t, nil)

	w := postGenerate(t, h, validBody, "1.2.3.4")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success      bool            `json:"success"`
		Questions    []qgen.Question `json:"questions"`
		Source       string          `json:"source"`
		ConversionID string          `json:"conversionId"`
		Metadata     struct {
			ProcessingTimeMs int64 `json:"processingTimeMs"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if len(resp.Questions) != 5 {
		t.Errorf("got %d questions, want 5", len(resp.Questions))
	}
	if resp.Source != "fallback" {
		t.Errorf("source = %q, want fallback with no provider", resp.Source)
	}
	if !strings.HasPrefix(resp.ConversionID, "tlc_") {
		t.Errorf("conversionId = %q", resp.ConversionID)
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	h := newTestServer(t, nil)

	w := postGenerate(t, h, "{not json", "1.2.3.4")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	h := newTestServer(t, nil)

	w := postGenerate(t, h, `{"board": "CBSE", "grade": "8", "subject": "Science", "format": "ShortAnswer", "count": 0}`, "1.2.3.4")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error payload, got %s", w.Body.String())
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/generate-questions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	h := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		w := postGenerate(t, h, validBody, "1.2.3.4")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}

	w := postGenerate(t, h, validBody, "1.2.3.4")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	var resp struct {
		RateLimited bool `json:"rateLimited"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.RateLimited {
		t.Errorf("rateLimited flag missing: %s", w.Body.String())
	}

	// A different client address is unaffected.
	if w := postGenerate(t, h, validBody, "5.6.7.8"); w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", w.Code)
	}
}

func TestGenerate_ForwardedForKeysLimit(t *testing.T) {
	h := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/generate-questions", strings.NewReader(validBody))
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}

	// Same proxy, different origin address: fresh window.
	req := httptest.NewRequest(http.MethodPost, "/api/generate-questions", strings.NewReader(validBody))
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("different forwarded address: status = %d, want 200", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-questions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for preflight", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestConversionHistory(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	h := newTestServer(t, st)

	w := postGenerate(t, h, validBody, "1.2.3.4")
	if w.Code != http.StatusOK {
		t.Fatalf("generate: status = %d", w.Code)
	}
	var genResp struct {
		ConversionID string `json:"conversionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &genResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// List from the same client address.
	req := httptest.NewRequest(http.MethodGet, "/api/conversions", nil)
	req.RemoteAddr = "1.2.3.4:51234"
	lw := httptest.NewRecorder()
	h.ServeHTTP(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", lw.Code, lw.Body.String())
	}
	var listResp struct {
		Conversions []store.Conversion `json:"conversions"`
	}
	if err := json.Unmarshal(lw.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Conversions) != 1 {
		t.Fatalf("got %d conversions, want 1", len(listResp.Conversions))
	}

	// Fetch by id.
	req = httptest.NewRequest(http.MethodGet, "/api/conversions/"+genResp.ConversionID, nil)
	gw := httptest.NewRecorder()
	h.ServeHTTP(gw, req)
	if gw.Code != http.StatusOK {
		t.Fatalf("get: status = %d, body = %s", gw.Code, gw.Body.String())
	}

	// Unknown id.
	req = httptest.NewRequest(http.MethodGet, "/api/conversions/tlc_missing", nil)
	nw := httptest.NewRecorder()
	h.ServeHTTP(nw, req)
	if nw.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d, want 404", nw.Code)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	d := ratelimit.Decision{ResetAt: time.Now().Add(30 * time.Minute)}
	if d.RetryAfter(time.Now()) <= 0 {
		t.Error("expected positive retry-after for a denied decision")
	}
}
