package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/livedesk/relay/internal/domain"
	"github.com/livedesk/relay/internal/hub"
	"github.com/livedesk/relay/internal/registry"
)

func TestGetStatus(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	h := hub.New()

	sess := reg.Create(domain.CustomerInfo{Name: "Alice"}, "conn-1", "10.0.0.1")
	if err := reg.AppendMessage(sess.ID, domain.Message{ID: "m1", Content: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.AppendMessage(sess.ID, domain.Message{ID: "m2", Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.AssignAgent(sess.ID, "Dana"); err != nil {
		t.Fatal(err)
	}
	reg.Create(domain.CustomerInfo{Name: "Bob"}, "conn-2", "10.0.0.2")

	h.RegisterAgent(&domain.AgentConnection{ConnectionID: "a1", Name: "Dana", Origin: "https://desk.example.com", ConnectedAt: time.Now()})

	r := chi.NewRouter()
	NewStatusHandler(reg, h).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got statusResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if got.ActiveSessions != 2 {
		t.Errorf("active_sessions = %d, want 2", got.ActiveSessions)
	}
	if got.ConnectedAgents != 1 {
		t.Errorf("connected_agents = %d, want 1", got.ConnectedAgents)
	}
	if got.TotalMessages != 2 {
		t.Errorf("total_messages = %d, want 2", got.TotalMessages)
	}
	if len(got.Sessions) != 2 || len(got.Agents) != 1 {
		t.Fatalf("summaries: %d sessions, %d agents", len(got.Sessions), len(got.Agents))
	}
	if got.Sessions[0].Customer != "Alice" || got.Sessions[0].Agent != "Dana" || got.Sessions[0].MessageCount != 2 {
		t.Errorf("first session summary: %+v", got.Sessions[0])
	}
	if got.Agents[0].Name != "Dana" {
		t.Errorf("agent summary: %+v", got.Agents[0])
	}
}

func TestJSONHelper(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	JSON(w, http.StatusAccepted, map[string]string{"foo": "bar"})

	resp := w.Result()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["foo"] != "bar" {
		t.Fatalf("body = %v", got)
	}
}
