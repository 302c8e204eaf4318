package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}

	body := scrape(t, r)
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRegistry_Commands(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("get", time.Millisecond, false)
	r.ObserveCommand("get", time.Millisecond, false)
	r.ObserveCommand("set", time.Microsecond, true)

	body := scrape(t, r)
	for _, want := range []string{
		`redmod_commands_total{command="get",status="ok"} 2`,
		`redmod_commands_total{command="set",status="error"} 1`,
		`redmod_command_duration_seconds_count{command="get"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestRegistry_Events(t *testing.T) {
	r := NewRegistry()

	r.KeyExpired("a")
	r.KeyExpired("b")
	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.MessageDelivered()

	body := scrape(t, r)
	for _, want := range []string{
		"redmod_expired_keys_total 2",
		"redmod_connections_total 2",
		"redmod_disconnections_total 1",
		"redmod_pubsub_messages_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	keys, clients := 3, 1
	r.MustRegister(NewCollector(func() int { return keys }, func() int { return clients }))

	body := scrape(t, r)
	if !strings.Contains(body, "redmod_keys 3") {
		t.Error("expected redmod_keys 3")
	}
	if !strings.Contains(body, "redmod_connected_clients 1") {
		t.Error("expected redmod_connected_clients 1")
	}

	keys = 0
	if body := scrape(t, r); !strings.Contains(body, "redmod_keys 0") {
		t.Error("expected redmod_keys 0 after change")
	}
}
