// Package server_test tests the HTTP handlers
package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assignmate/internal/config"
	"assignmate/internal/database"
	"assignmate/internal/local"
	"assignmate/internal/server"
)

// stubAI implements ai.Client and records the prompt inputs it saw.
type stubAI struct {
	answer       string
	err          error
	lastQuestion string
	lastFileInfo string
	calls        int
}

func (s *stubAI) Answer(_ context.Context, question, fileInfo string) (string, error) {
	s.calls++
	s.lastQuestion = question
	s.lastFileInfo = fileInfo
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

// fakeStore implements database.Store in memory.
type fakeStore struct {
	answers map[string]*database.CachedAnswer
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{answers: make(map[string]*database.CachedAnswer)}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetAnswer(_ context.Context, key string) (*database.CachedAnswer, error) {
	return f.answers[key], nil
}

func (f *fakeStore) SaveAnswer(_ context.Context, a *database.CachedAnswer) error {
	f.answers[a.Key] = a
	return nil
}

func (f *fakeStore) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:            ":0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Uploads: config.UploadConfig{
			MaxFileSize:       config.DefaultUploadMaxFileSize,
			AllowedExtensions: config.DefaultUploadAllowedExtensions,
			PreviewRows:       5,
		},
		AI: config.AIConfig{
			Backend:        "gemini",
			Instruction:    config.DefaultAIInstruction,
			RequestTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Path:      "unused.db",
			AnswerTTL: time.Hour,
		},
	}
}

func newTestServer(t *testing.T, ai *stubAI, store database.Store, cfg *config.Config) http.Handler {
	t.Helper()
	return newTestServerWithLogger(t, ai, store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServerWithLogger(t *testing.T, ai *stubAI, store database.Store, cfg *config.Config, log *slog.Logger) http.Handler {
	t.Helper()
	srv := server.New(server.Deps{
		Logger:   log,
		Store:    store,
		AIClient: ai,
		Resolver: local.NewResolver(log),
		Config:   cfg,
	})
	return srv.Handler()
}

// multipartBody builds a multipart form with a question and optional file.
func multipartBody(t *testing.T, question, filename, fileContent string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if question != "" {
		if err := w.WriteField("question", question); err != nil {
			t.Fatalf("failed to write question field: %v", err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := io.Copy(fw, strings.NewReader(fileContent)); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, handler http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeAnswer(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp server.AnswerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid answer JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp.Answer
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp server.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid error JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp.Error
}

func TestHandleAnswerQuestionOnly(t *testing.T) {
	t.Parallel()

	ai := &stubAI{answer: "42"}
	handler := newTestServer(t, ai, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "What is the answer to everything?", "", "")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeAnswer(t, rec); got != "42" {
		t.Errorf("answer = %q, want %q", got, "42")
	}
	if ai.lastFileInfo != "" {
		t.Errorf("file info should be empty for question-only request, got %q", ai.lastFileInfo)
	}
}

func TestHandleAnswerMissingQuestion(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &stubAI{answer: "x"}, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "", "", "")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, rec); !strings.Contains(got, "question") {
		t.Errorf("error = %q, want mention of the question field", got)
	}
}

func TestHandleAnswerWithCSVFile(t *testing.T) {
	t.Parallel()

	ai := &stubAI{answer: "3"}
	handler := newTestServer(t, ai, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "How many rows?", "data.csv", "a,b\n1,2\n3,4\n5,6\n")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decodeAnswer(t, rec); got != "3" {
		t.Errorf("answer = %q, want %q", got, "3")
	}
	if !strings.Contains(ai.lastFileInfo, "CSV file with 3 rows and 2 columns.") {
		t.Errorf("model should receive the CSV summary, got %q", ai.lastFileInfo)
	}
}

func TestHandleAnswerRejectsBadExtension(t *testing.T) {
	t.Parallel()

	ai := &stubAI{answer: "x"}
	handler := newTestServer(t, ai, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "What does this do?", "script.exe", "MZ...")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, rec); got != "invalid file type" {
		t.Errorf("error = %q, want %q", got, "invalid file type")
	}
	if ai.calls != 0 {
		t.Errorf("model should not be called for rejected upload, got %d calls", ai.calls)
	}
}

func TestHandleAnswerRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Uploads.MaxFileSize = 8

	handler := newTestServer(t, &stubAI{answer: "x"}, newFakeStore(), cfg)

	body, contentType := multipartBody(t, "What is in the file?", "data.csv", "a,b\n1,2\n3,4\n")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, rec); got != "file too large" {
		t.Errorf("error = %q, want %q", got, "file too large")
	}
}

func TestHandleAnswerBackendFailure(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &stubAI{err: errors.New("model unavailable")}, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "What is 2+2?", "", "")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	if got := decodeError(t, rec); got == "" {
		t.Error("error body should not be empty")
	}
}

func TestHandleAnswerCachesAnswer(t *testing.T) {
	t.Parallel()

	ai := &stubAI{answer: "cached later"}
	store := newFakeStore()
	handler := newTestServer(t, ai, store, testConfig())

	body, contentType := multipartBody(t, "What is the capital of France?", "", "")
	rec := doRequest(t, handler, body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if len(store.answers) != 1 {
		t.Fatalf("expected 1 cached answer, got %d", len(store.answers))
	}

	// Same question again: served from cache, model not called a second time.
	body, contentType = multipartBody(t, "What is the capital of France?", "", "")
	rec = doRequest(t, handler, body, contentType)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeAnswer(t, rec); got != "cached later" {
		t.Errorf("answer = %q, want %q", got, "cached later")
	}
	if ai.calls != 1 {
		t.Errorf("model calls = %d, want 1 (second request should hit cache)", ai.calls)
	}
}

func TestHandleAnswerLocalSHA256(t *testing.T) {
	t.Parallel()

	ai := &stubAI{err: errors.New("model should not be called")}
	handler := newTestServer(t, ai, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "What is the sha256sum of the attached file?", "notes.md", "hello")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := decodeAnswer(t, rec); got != want {
		t.Errorf("answer = %q, want %q", got, want)
	}
	if ai.calls != 0 {
		t.Errorf("model calls = %d, want 0 for locally answered question", ai.calls)
	}
}

func TestHandleAnswerLogsQuestionPreview(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logBuf, nil))
	handler := newTestServerWithLogger(t, &stubAI{answer: "x"}, newFakeStore(), testConfig(), log)

	question := strings.Repeat("why is the sky blue ", 5) // 100 chars
	body, contentType := multipartBody(t, question, "", "")
	rec := doRequest(t, handler, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	logged := logBuf.String()
	if !strings.Contains(logged, "Received question") {
		t.Fatalf("logs should record the incoming question, got:\n%s", logged)
	}
	if want := question[:47] + "..."; !strings.Contains(logged, want) {
		t.Errorf("logs should contain the truncated preview %q, got:\n%s", want, logged)
	}
	if strings.Contains(logged, question) {
		t.Errorf("logs should not contain the full question text:\n%s", logged)
	}
}

func TestHandleAnswerFileAndQuestionOnlyKeysDiffer(t *testing.T) {
	t.Parallel()

	ai := &stubAI{answer: "same answer"}
	store := newFakeStore()
	handler := newTestServer(t, ai, store, testConfig())

	body, contentType := multipartBody(t, "How many rows?", "", "")
	if rec := doRequest(t, handler, body, contentType); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Same question with an attachment must not be served from the
	// question-only cache entry.
	body, contentType = multipartBody(t, "How many rows?", "data.csv", "a,b\n1,2\n")
	if rec := doRequest(t, handler, body, contentType); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if ai.calls != 2 {
		t.Errorf("model calls = %d, want 2 (attachment must bypass the question-only entry)", ai.calls)
	}
	if len(store.answers) != 2 {
		t.Errorf("cached answers = %d, want 2 distinct keys", len(store.answers))
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &stubAI{answer: "x"}, newFakeStore(), testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST allowed", got)
	}
}

func TestHandleAnswerResponseIsValidJSON(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &stubAI{answer: "any"}, newFakeStore(), testConfig())

	body, contentType := multipartBody(t, "Any non-empty question", "", "")
	rec := doRequest(t, handler, body, contentType)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if _, ok := decoded["answer"].(string); !ok {
		t.Errorf("response must contain a string-valued answer field: %s", rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		handler := newTestServer(t, &stubAI{answer: "x"}, newFakeStore(), testConfig())

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("database down", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.pingErr = errors.New("connection refused")
		handler := newTestServer(t, &stubAI{answer: "x"}, store, testConfig())

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}
