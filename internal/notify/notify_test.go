package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/config"
)

type captured struct {
	path, title, priority, tags, auth, body string
}

func ntfyServer(t *testing.T, status int) (*httptest.Server, chan captured) {
	t.Helper()
	got := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- captured{
			path:     r.URL.Path,
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			tags:     r.Header.Get("Tags"),
			auth:     r.Header.Get("Authorization"),
			body:     string(body),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestClient_ReloadedSuccess(t *testing.T) {
	srv, got := ntfyServer(t, http.StatusOK)
	c := NewClient(config.NotifyConfig{
		Enabled:  true,
		Server:   srv.URL + "/",
		Topic:    "gex",
		Priority: "low",
		Tags:     "chart",
		Token:    "secret",
	}, zap.NewNop())

	err := c.Reloaded(context.Background(), ReloadEvent{
		DataDir:         "data",
		PreviousSymbols: 2,
		SymbolsLoaded:   3,
		Duration:        1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Reloaded: %v", err)
	}

	req := <-got
	if req.path != "/gex" {
		t.Errorf("path = %q, want /gex", req.path)
	}
	if req.title != "Chains Reloaded" || req.priority != "low" {
		t.Errorf("title/priority = %q/%q", req.title, req.priority)
	}
	if req.tags != "chart,white_check_mark" {
		t.Errorf("tags = %q", req.tags)
	}
	if req.auth != "Bearer secret" {
		t.Errorf("auth = %q", req.auth)
	}
	if !strings.Contains(req.body, "Symbols loaded: 3") || !strings.Contains(req.body, "Duration: 1.5s") {
		t.Errorf("unexpected body: %q", req.body)
	}
}

func TestClient_ReloadedFailure(t *testing.T) {
	srv, got := ntfyServer(t, http.StatusOK)
	c := NewClient(config.NotifyConfig{Server: srv.URL, Topic: "gex", Priority: "default", Tags: "chart"}, zap.NewNop())

	if err := c.Reloaded(context.Background(), ReloadEvent{DataDir: "data", Err: errors.New("no chain files")}); err != nil {
		t.Fatalf("Reloaded: %v", err)
	}

	req := <-got
	if req.title != "Chain Reload Failed" || req.priority != "high" || req.tags != "chart,x" {
		t.Errorf("unexpected headers: %+v", req)
	}
	if strings.Contains(req.body, "Symbols loaded") || !strings.Contains(req.body, "Error: no chain files") {
		t.Errorf("unexpected body: %q", req.body)
	}
}

func TestClient_BadStatus(t *testing.T) {
	srv, _ := ntfyServer(t, http.StatusForbidden)
	c := NewClient(config.NotifyConfig{Server: srv.URL, Topic: "gex"}, zap.NewNop())

	err := c.Reloaded(context.Background(), ReloadEvent{})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestNew_Disabled(t *testing.T) {
	n := New(config.NotifyConfig{Enabled: false}, zap.NewNop())
	if _, ok := n.(NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier, got %T", n)
	}
	if err := n.Reloaded(context.Background(), ReloadEvent{}); err != nil {
		t.Errorf("noop returned %v", err)
	}
}
