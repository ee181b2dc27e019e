// Package transport exposes the relay over WebSocket: it accepts
// connections, decodes inbound frames, and dispatches them to the router.
package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/livedesk/relay/internal/domain"
	"github.com/livedesk/relay/internal/hub"
	"github.com/livedesk/relay/internal/router"
)

const disconnectSaveTimeout = 15 * time.Second

// Handler upgrades HTTP requests to WebSocket connections.
type Handler struct {
	router         *router.Router
	hub            *hub.Hub
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates a WebSocket handler.
func NewHandler(rt *router.Router, h *hub.Hub, allowedOrigins []string, isDev bool) *Handler {
	return &Handler{
		router:         rt,
		hub:            h,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// frame is one inbound event. Unknown fields are ignored; unknown types
// are dropped with a debug log.
type frame struct {
	Type          string              `json:"type"`
	SessionID     string              `json:"session_id,omitempty"`
	Content       string              `json:"content,omitempty"`
	LastMessageID string              `json:"last_message_id,omitempty"`
	AgentID       string              `json:"agent_id,omitempty"`
	AgentName     string              `json:"agent_name,omitempty"`
	Customer      domain.CustomerInfo `json:"customer,omitempty"`
}

// peer adapts a websocket connection to the hub's fire-and-forget Peer.
type peer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Send encodes and writes one event. Writes use a background context: the
// websocket library tracks its own connection state, and a failed delivery
// must never propagate back into routing logic.
func (p *peer) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode outbound event", "error", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.Write(context.Background(), websocket.MessageText, data); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "connection ended"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr)
		}
	}()

	connID := uuid.NewString()
	remoteAddr := remoteIP(r)
	slog.Info("connection opened", "conn_id", connID, "origin", r.Header.Get("Origin"), "ip", remoteAddr)

	h.hub.Register(connID, &peer{conn: ws})
	h.router.Connected(connID, r.Header.Get("Origin"))
	defer func() {
		// The request context is already cancelled here; disconnect
		// saves get their own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), disconnectSaveTimeout)
		defer cancel()
		h.router.Disconnected(ctx, connID)
		slog.Info("connection closed", "conn_id", connID)
	}()

	h.readLoop(r.Context(), ws, connID, remoteAddr)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	requestOrigin := r.Header.Get("Origin")
	if requestOrigin == "" {
		return true
	}
	for _, o := range h.allowedOrigins {
		if o == "*" || o == requestOrigin {
			return true
		}
	}
	slog.Warn("websocket origin rejected", "origin", requestOrigin)
	return false
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, connID, remoteAddr string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("websocket closed by client", "conn_id", connID)
			} else {
				slog.Warn("websocket read error", "error", err, "conn_id", connID)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Debug("dropping malformed frame", "error", err, "conn_id", connID)
			continue
		}

		h.dispatch(ctx, connID, remoteAddr, f)
	}
}

func (h *Handler) dispatch(ctx context.Context, connID, remoteAddr string, f frame) {
	switch f.Type {
	case "start_session":
		h.router.StartSession(connID, remoteAddr, f.Customer)
	case "send_message":
		h.router.CustomerMessage(connID, f.SessionID, f.Content)
	case "typing":
		h.router.Typing(connID, f.SessionID, false)
	case "stop_typing":
		h.router.Typing(connID, f.SessionID, true)
	case "update_customer_info":
		h.router.UpdateCustomerInfo(connID, f.SessionID, f.Customer)
	case "request_missed_messages":
		h.router.MissedMessages(connID, f.SessionID, f.LastMessageID)
	case "join_as_agent":
		h.router.JoinAgent(connID, f.AgentID, f.AgentName)
	case "send_agent_message":
		h.router.AgentMessage(connID, f.SessionID, f.Content)
	case "save_session":
		h.router.ManualSave(ctx, connID, f.SessionID)
	case "close_session":
		h.router.CloseSession(ctx, connID, f.SessionID)
	default:
		slog.Debug("dropping unknown frame type", "type", f.Type, "conn_id", connID)
	}
}

// remoteIP returns a normalized remote address for session records.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
