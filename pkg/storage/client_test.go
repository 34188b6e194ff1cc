package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
)

func testLogger(t *testing.T) *logging.ColoredLogger {
	t.Helper()
	logger, err := logging.NewColoredLogger(logging.ComponentStorage, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func TestPinContent(t *testing.T) {
	var gotPath string
	cluster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart payload: %v", err)
		}
		// NDJSON stream, one object per chunk.
		enc := json.NewEncoder(w)
		enc.Encode(addResponse{Name: "content", Cid: "QmTest123", Size: 14})
	}))
	defer cluster.Close()

	c := NewClient(Config{ClusterAPIURL: cluster.URL}, testLogger(t))
	cid, err := c.PinContent(context.Background(), "content", []byte("hello storage"))
	if err != nil {
		t.Fatalf("PinContent failed: %v", err)
	}
	if cid != "QmTest123" {
		t.Errorf("cid = %q", cid)
	}
	if gotPath != "/add" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestPinContentUpstreamError(t *testing.T) {
	cluster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cluster degraded", http.StatusServiceUnavailable)
	}))
	defer cluster.Close()

	c := NewClient(Config{ClusterAPIURL: cluster.URL}, testLogger(t))
	if _, err := c.PinContent(context.Background(), "content", []byte("x")); !errors.IsUpstreamUnavailable(err) {
		t.Errorf("expected UpstreamUnavailable, got %v", err)
	}
}

func TestFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("arg") != "QmTest123" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("stored bytes"))
	}))
	defer api.Close()

	c := NewClient(Config{APIURL: api.URL}, testLogger(t))
	data, err := c.Fetch(context.Background(), "QmTest123")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "stored bytes" {
		t.Errorf("data = %q", data)
	}

	if _, err := c.Fetch(context.Background(), "QmMissing"); !errors.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestPinJSON(t *testing.T) {
	var pinned []byte
	cluster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		buf := make([]byte, 1024)
		n, _ := f.Read(buf)
		pinned = buf[:n]
		json.NewEncoder(w).Encode(addResponse{Cid: "QmMeta"})
	}))
	defer cluster.Close()

	c := NewClient(Config{ClusterAPIURL: cluster.URL}, testLogger(t))
	cid, err := c.PinJSON(context.Background(), "metadata", map[string]string{"title": "hi"})
	if err != nil {
		t.Fatalf("PinJSON failed: %v", err)
	}
	if cid != "QmMeta" {
		t.Errorf("cid = %q", cid)
	}

	var doc map[string]string
	if err := json.Unmarshal(pinned, &doc); err != nil || doc["title"] != "hi" {
		t.Errorf("pinned document = %q (%v)", pinned, err)
	}
}

func TestHealth(t *testing.T) {
	cluster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/id" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer cluster.Close()

	c := NewClient(Config{ClusterAPIURL: cluster.URL}, testLogger(t))
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}

	c = NewClient(Config{ClusterAPIURL: "http://127.0.0.1:1"}, testLogger(t))
	if err := c.Health(context.Background()); !errors.IsUpstreamUnavailable(err) {
		t.Errorf("expected UpstreamUnavailable, got %v", err)
	}
}
