package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"lecture-rag/internal/auth"
	"lecture-rag/internal/lecture"
	"lecture-rag/internal/qna"
)

type fakeAuth struct {
	signupErr error
	loginErr  error
	sessionID string
}

func (f *fakeAuth) Signup(ctx context.Context, username, password string) error {
	return f.signupErr
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.sessionID, nil
}

type fakeLectures struct {
	lastName   string
	lastSource lecture.Source
	uploadBody string
	summary    string
	answerErr  error
}

func (f *fakeLectures) Summarize(ctx context.Context, uniqueName string, src lecture.Source) (*lecture.SummaryResult, error) {
	f.lastName = uniqueName
	f.lastSource = src
	if src.Upload != nil {
		body, _ := io.ReadAll(src.Upload)
		f.uploadBody = string(body)
	}
	return &lecture.SummaryResult{UniqueName: uniqueName, Summary: f.summary}, nil
}

func (f *fakeLectures) Answer(ctx context.Context, uniqueName, question string) (string, error) {
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return "lecture answer", nil
}

type fakeQnA struct {
	answerErr error
	saved     int
}

func (f *fakeQnA) Answer(ctx context.Context, sessionKey, question string) (string, error) {
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return "qna answer", nil
}

func (f *fakeQnA) Stream(ctx context.Context, sessionKey, question string, fn func(ctx context.Context, chunk []byte) error) error {
	for _, chunk := range []string{"part one ", "part two"} {
		if err := fn(ctx, []byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQnA) SaveChat(ctx context.Context, sessionKey, userInput, chatbotReply string) error {
	f.saved++
	return nil
}

func (f *fakeQnA) History(ctx context.Context, sessionKey string) ([]qna.Message, error) {
	return []qna.Message{{Sender: "user", Message: "hi"}, {Sender: "bot", Message: "hello"}}, nil
}

type testBackend struct {
	auth     *fakeAuth
	lectures *fakeLectures
	qna      *fakeQnA
}

func newTestServer(t *testing.T, opts Options) (*Server, *testBackend) {
	t.Helper()
	backend := &testBackend{
		auth:     &fakeAuth{sessionID: "sess-123"},
		lectures: &fakeLectures{summary: "the summary"},
		qna:      &fakeQnA{},
	}
	srv := NewServer(opts, backend.auth, backend.lectures, backend.qna, zerolog.Nop())
	return srv, backend
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return got
}

func TestSignup(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/accounts/signup", map[string]string{
		"username": "kim", "password": "secret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["message"] != "signup successful" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestSignupDuplicate(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	backend.auth.signupErr = auth.ErrUserExists
	rec := postJSON(t, srv.Handler(), "/accounts/signup", map[string]string{
		"username": "kim", "password": "secret",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestSignupMissingFields(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/accounts/signup", map[string]string{"username": "kim"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/accounts/login", map[string]string{
		"username": "kim", "password": "secret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["session_id"] != "sess-123" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	backend.auth.loginErr = auth.ErrInvalidCredentials
	rec := postJSON(t, srv.Handler(), "/accounts/login", map[string]string{
		"username": "kim", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "invalid username or password" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestLectureSummaryFromURL(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	form := strings.NewReader("video_url=https://youtu.be/XXXX")
	req := httptest.NewRequest(http.MethodPost, "/lecture/summary", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if backend.lectures.lastName != "https://youtu.be/XXXX" {
		t.Fatalf("unique name: %q", backend.lectures.lastName)
	}
	if decodeBody(t, rec)["summary"] != "the summary" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestLectureSummaryFromUpload(t *testing.T) {
	srv, backend := newTestServer(t, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("video_file", "week3.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("video bytes")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/lecture/summary", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if backend.lectures.lastName != "week3.mp4" {
		t.Fatalf("unique name: %q", backend.lectures.lastName)
	}
	if backend.lectures.uploadBody != "video bytes" {
		t.Fatalf("upload body: %q", backend.lectures.uploadBody)
	}
}

func TestLectureSummaryNoSource(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/lecture/summary", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestLectureQAUnknownLecture(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	backend.lectures.answerErr = lecture.ErrLectureNotFound
	rec := postJSON(t, srv.Handler(), "/lecture/qa", map[string]string{
		"unique_name": "unknown", "question": "q",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "lecture summary not found" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestQnAInvalidSession(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	backend.qna.answerErr = auth.ErrInvalidSession
	rec := postJSON(t, srv.Handler(), "/qna/", map[string]string{
		"question": "q", "session_id": "bad",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
}

func TestQnAAnswer(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/qna/", map[string]string{
		"question": "when is the exam?", "session_id": "sess-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["answer"] != "qna answer" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestQnAStream(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/qna/stream", map[string]string{
		"question": "q", "session_id": "sess-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data: part one \n\n") || !strings.Contains(body, "data: part two\n\n") {
		t.Fatalf("stream body: %q", body)
	}
}

func TestSaveChat(t *testing.T) {
	srv, backend := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/qna/save_chat", map[string]string{
		"session_id": "sess-123", "user_input": "hi", "chatbot_reply": "hello",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if backend.qna.saved != 1 {
		t.Fatalf("saved %d entries", backend.qna.saved)
	}
}

func TestChatHistory(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := postJSON(t, srv.Handler(), "/qna/get_chat_history", map[string]string{
		"session_id": "sess-123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	history, ok := decodeBody(t, rec)["history"].([]any)
	if !ok || len(history) != 2 {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "announcements.csv")
	if err := os.WriteFile(csvPath, []byte("title,date\nexam,2026-09-01\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv, _ := newTestServer(t, Options{CSVPath: csvPath})

	req := httptest.NewRequest(http.MethodGet, "/storage/read-csv", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	rows, ok := decodeBody(t, rec)["data"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, Options{CSVPath: filepath.Join(t.TempDir(), "absent.csv")})
	req := httptest.NewRequest(http.MethodGet, "/storage/read-csv", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "CSV file not found" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestWebhookRelay(t *testing.T) {
	var relayedTopic string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		relayedTopic = body["topic"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer downstream.Close()

	srv, _ := newTestServer(t, Options{WebhookURL: downstream.URL})
	rec := postJSON(t, srv.Handler(), "/storage/webhook", map[string]string{"topic": "deadline"})

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if relayedTopic != "deadline" {
		t.Fatalf("relayed topic: %q", relayedTopic)
	}
	if decodeBody(t, rec)["status"] != "queued" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestWebhookDownstreamFailure(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer downstream.Close()

	srv, _ := newTestServer(t, Options{WebhookURL: downstream.URL})
	rec := postJSON(t, srv.Handler(), "/storage/webhook", map[string]string{"topic": "deadline"})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "webhook relay failed" {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/accounts/signup", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got %d, want 405", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodOptions, "/qna/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin: %q", got)
	}
}
