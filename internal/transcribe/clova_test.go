package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.wav")
	if err := os.WriteFile(path, []byte("RIFFfakeaudio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeSendsMultipartRequest(t *testing.T) {
	var gotKey, gotParams string
	var gotMedia []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-CLOVASPEECH-API-KEY")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotParams = r.FormValue("params")
		file, _, err := r.FormFile("media")
		if err != nil {
			t.Errorf("media part: %v", err)
		} else {
			gotMedia, _ = io.ReadAll(file)
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "전체 인식 결과"})
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL, APIKey: "secret"})
	text, err := client.Transcribe(context.Background(), writeAudioFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if text != "전체 인식 결과" {
		t.Fatalf("got %q", text)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header: got %q", gotKey)
	}
	if string(gotMedia) != "RIFFfakeaudio" {
		t.Fatalf("media payload: got %q", gotMedia)
	}

	var params struct {
		Language   string `json:"language"`
		Completion string `json:"completion"`
		FullText   bool   `json:"fullText"`
	}
	if err := json.Unmarshal([]byte(gotParams), &params); err != nil {
		t.Fatalf("params field is not JSON: %v", err)
	}
	if params.Language != "ko-KR" || params.Completion != "sync" || !params.FullText {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestTranscribeNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL, APIKey: "secret"})
	if _, err := client.Transcribe(context.Background(), writeAudioFile(t)); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestTranscribeMissingKey(t *testing.T) {
	client := NewClient(Config{APIURL: "http://127.0.0.1:0", APIKey: ""})
	if _, err := client.Transcribe(context.Background(), writeAudioFile(t)); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
