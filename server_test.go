package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openvehiclelab/elmlink/reader"
)

type transportDialer struct{ transport reader.Transport }

func (d transportDialer) Dial(context.Context) (reader.Transport, error) { return d.transport, nil }

func newTestServer(t *testing.T, connect bool) (*Server, *reader.Reader) {
	t.Helper()

	cfg, err := reader.NewConfigBuilder().
		WithDialer(transportDialer{reader.NewTestTransport()}).
		WithDrainInterval(time.Millisecond).
		Build()
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	r, err := reader.New(cfg)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if connect {
		if err := r.Connect(context.Background()); err != nil {
			t.Fatalf("connect: %v", err)
		}
	}
	t.Cleanup(func() { r.Close() })

	return &Server{
		Logger: slog.New(slog.DiscardHandler),
		Reader: r,
	}, r
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t, true)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Connected bool   `json:"connected"`
		Protocol  string `json:"protocol"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Connected || resp.Protocol != "0" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHandleRequest(t *testing.T) {
	server, _ := newTestServer(t, true)

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{name: "known sensor", body: `{"name":"rpm"}`, expected: http.StatusAccepted},
		{name: "unknown sensor", body: `{"name":"warpdrive"}`, expected: http.StatusNotFound},
		{name: "missing name", body: `{}`, expected: http.StatusBadRequest},
		{name: "bad json", body: `{`, expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/request", strings.NewReader(tt.body))
			server.ServeHTTP(rec, req)
			if rec.Code != tt.expected {
				t.Errorf("status = %d, want %d", rec.Code, tt.expected)
			}
		})
	}
}

func TestHandleRequestNotConnected(t *testing.T) {
	server, _ := newTestServer(t, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/request", strings.NewReader(`{"name":"rpm"}`))
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandlePollers(t *testing.T) {
	server, r := newTestServer(t, true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pollers", strings.NewReader(`{"name":"rpm"}`))
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add poller status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pollers", nil))
	var resp struct {
		Commands []string `json:"commands"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Commands) != 1 || resp.Commands[0] != "010C" {
		t.Errorf("unexpected poller list: %v", resp.Commands)
	}

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/pollers/rpm", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove poller status = %d, want 204", rec.Code)
	}
	if got := r.Pollers(); len(got) != 0 {
		t.Errorf("poller set not empty after delete: %v", got)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/pollers", strings.NewReader(`{"name":"warpdrive"}`))
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown sensor add status = %d, want 404", rec.Code)
	}
}
