package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/specdocx/internal/config"
	"github.com/dgallion1/specdocx/internal/pipeline"
)

const testKey = "secret"

type part struct {
	field, name, body string
}

func testTemplate(t *testing.T) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Template body")
	doc.WithA4Page()
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return buf.Bytes()
}

func testConfig() config.Config {
	return config.Config{
		APIKey:            testKey,
		WorkerCount:       1,
		MaxQueueSize:      4,
		MaxUploadBytes:    1 << 20,
		JobTTL:            time.Hour,
		ParseConcurrency:  2,
		MaxCodeLineLength: 80,
		LineSeparator:     "\n",
	}
}

// newServer returns a server whose pipeline runs only when start is set.
func newServer(t *testing.T, cfg config.Config, template []byte, start bool) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, template, log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, log, cfg)
}

func upload(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(p.body))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func do(s *Server, method, path string, body *bytes.Buffer, contentType string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, s *Server, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := upload(t, parts...)
	return do(s, http.MethodPost, "/api/convert", body, ct, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s := newServer(t, testConfig(), nil, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("expected ok body, got %q", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newServer(t, testConfig(), nil, false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/conversions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected json error, got %q", ct)
			}
		})
	}
}

func TestConvert_RejectsBadUploads(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	s := newServer(t, cfg, testTemplate(t), false)

	tests := []struct {
		name  string
		parts []part
		code  int
	}{
		{"no files", []part{{"other", "a.md", "# A\n"}}, http.StatusBadRequest},
		{"unsupported", []part{{"files", "a.txt", "# A\n"}}, http.StatusBadRequest},
		{"bad template type", []part{{"files", "a.md", "# A\n"}, {"template", "t.dotx", "x"}}, http.StatusBadRequest},
		{"too large", []part{{"files", "a.md", strings.Repeat("x", 65)}}, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := submit(t, s, tc.parts...)
			if rec.Code != tc.code {
				t.Errorf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestConvert_TemplateRequiredWithoutDefault(t *testing.T) {
	s := newServer(t, testConfig(), nil, false)
	rec := submit(t, s, part{"files", "a.md", "# 1 A\n"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decode(t, rec)["error"]; msg != "template is required" {
		t.Errorf("expected %q, got %q", "template is required", msg)
	}
}

func TestConvert_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	s := newServer(t, cfg, testTemplate(t), false)

	if rec := submit(t, s, part{"files", "a.md", "# 1 A\n"}); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rec := submit(t, s, part{"files", "a.md", "# 1 A\n"}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestConvert_ResultNotReady(t *testing.T) {
	s := newServer(t, testConfig(), testTemplate(t), false)
	rec := submit(t, s, part{"files", "a.md", "# 1 A\n"})
	id := decode(t, rec)["job_id"].(string)

	rec = do(s, http.MethodGet, "/api/convert/"+id+"/result", nil, "", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestConvert_UnknownJob(t *testing.T) {
	s := newServer(t, testConfig(), nil, false)
	for _, path := range []string{"/status", "/diagnostics", "/result"} {
		rec := do(s, http.MethodGet, "/api/convert/missing"+path, nil, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestConvert_EndToEnd(t *testing.T) {
	s := newServer(t, testConfig(), nil, true)

	rec := submit(t, s,
		part{"files", "b.md", "# 2 Second\n\ntext\n- item\n"},
		part{"files", "a.md", "# 1 First\n\nHello.\n"},
		part{"template", "custom.docx", string(testTemplate(t))},
	)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	accepted := decode(t, rec)
	id := accepted["job_id"].(string)
	if accepted["poll_url"] != "/api/convert/"+id+"/status" {
		t.Errorf("unexpected poll url %v", accepted["poll_url"])
	}

	var status map[string]any
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status = decode(t, do(s, http.MethodGet, "/api/convert/"+id+"/status", nil, "", nil))
		if status["status"] == "completed" || status["status"] == "failed" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if status["status"] != "completed" {
		t.Fatalf("expected completed, got %v", status)
	}
	progress := status["progress"].(map[string]any)
	if progress["sections"] != float64(2) {
		t.Errorf("expected 2 sections, got %v", progress["sections"])
	}
	if progress["errors"] == float64(0) {
		t.Error("expected the list error to be counted")
	}

	diags := decode(t, do(s, http.MethodGet, "/api/convert/"+id+"/diagnostics", nil, "", nil))
	list := diags["diagnostics"].([]any)
	if len(list) == 0 || list[0].(map[string]any)["code"] != "MD33" {
		t.Errorf("expected an MD33 diagnostic, got %v", list)
	}

	rec = do(s, http.MethodGet, "/api/convert/"+id+"/result", nil, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxContentType {
		t.Errorf("expected %q, got %q", docxContentType, ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected a zip archive")
	}

	etag := rec.Header().Get("ETag")
	rec = do(s, http.MethodGet, "/api/convert/"+id+"/result", nil, "", http.Header{"If-None-Match": {etag}})
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}

	stats := decode(t, do(s, http.MethodGet, "/api/stats/conversions", nil, "", nil))
	if stats["stats"].(map[string]any)["count"] != float64(1) {
		t.Errorf("expected one conversion in stats, got %v", stats["stats"])
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"a.md":           "a.md",
		"../../etc/x.md": "x.md",
		`dir\evil.md`:    "dir_evil.md",
		"":               "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
