package ark

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ad-video-gen/internal"
	"ad-video-gen/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(filepath.Join(t.TempDir(), "errors.log"))
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(internal.Config{ArkAPIKey: "test-key", ArkBaseURL: srv.URL}, testLogger(t))
}

func TestGenerateImageDownloadsResult(t *testing.T) {
	imageBytes := bytes.Repeat([]byte{0x89}, 50)

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"data":[{"url":"` + srvURL + `/out.png"}]}`))
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c := New(internal.Config{ArkAPIKey: "test-key", ArkBaseURL: srv.URL}, testLogger(t))
	got, err := c.GenerateImage(context.Background(), ImageRequest{Model: "m", Prompt: "p", Size: "1920x1080"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !bytes.Equal(got, imageBytes) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(imageBytes))
	}
}

func TestGenerateImageErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusUnauthorized, `{"error":"bad key"}`, "http 401"},
		{"missing url", http.StatusOK, `{"data":[]}`, "no image url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			_, err := c.GenerateImage(context.Background(), ImageRequest{Model: "m", Prompt: "p"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateVideoTask(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contents/generations/tasks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"task-123"}`))
	}))

	id, err := c.CreateVideoTask(context.Background(), "model", []byte("frame"), "walk forward --duration 8")
	if err != nil {
		t.Fatalf("CreateVideoTask: %v", err)
	}
	if id != "task-123" {
		t.Errorf("task id = %q, want task-123", id)
	}
}

func TestWaitForVideoSucceeds(t *testing.T) {
	videoBytes := bytes.Repeat([]byte{0x00, 0x01}, 600)
	polls := 0

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/contents/generations/tasks/task-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			w.Write([]byte(`{"status":"running"}`))
			return
		}
		w.Write([]byte(`{"status":"succeeded","content":{"video_url":"` + srvURL + `/clip.mp4"}}`))
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write(videoBytes)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c := New(internal.Config{ArkAPIKey: "k", ArkBaseURL: srv.URL}, testLogger(t))
	got, err := c.WaitForVideo(context.Background(), "task-1", time.Millisecond, 10)
	if err != nil {
		t.Fatalf("WaitForVideo: %v", err)
	}
	if !bytes.Equal(got, videoBytes) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(videoBytes))
	}
	if polls != 3 {
		t.Errorf("polled %d times, want 3", polls)
	}
}

func TestWaitForVideoTaskFailed(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","error":{"message":"content policy"}}`))
	}))

	_, err := c.WaitForVideo(context.Background(), "task-2", time.Millisecond, 5)
	if err == nil || !strings.Contains(err.Error(), "content policy") {
		t.Errorf("error = %v, want containing task failure message", err)
	}
}

func TestWaitForVideoTimesOut(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))

	_, err := c.WaitForVideo(context.Background(), "task-3", time.Millisecond, 3)
	if err == nil || !strings.Contains(err.Error(), "timed out after 3 attempts") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestWaitForVideoHonorsContext(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"running"}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.WaitForVideo(ctx, "task-4", time.Hour, 5)
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
