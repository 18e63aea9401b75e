package webchat

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaswaterproofing/site-backend/internal/observability/metrics"
	"github.com/kaswaterproofing/site-backend/pkg/logging"
	"golang.org/x/net/websocket"
)

//go:embed widget.js
var widgetJS []byte

// Replier produces a chat reply for one visitor message.
type Replier interface {
	Reply(ctx context.Context, sessionID, message string) string
}

// Handler exposes the chat assistant over HTTP and WebSocket.
type Handler struct {
	replier Replier
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
}

// NewHandler creates a web chat handler. chatMetrics may be nil.
func NewHandler(replier Replier, logger *logging.Logger, chatMetrics *metrics.ChatMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		replier: replier,
		logger:  logger,
		metrics: chatMetrics,
	}
}

// ChatRequest is what the widget posts.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is what we send back.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// InboundMessage is a WebSocket frame from the widget.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is a WebSocket frame to the widget.
type OutboundMessage struct {
	Type      string `json:"type"` // "message", "session", "pong", "error"
	Text      string `json:"text,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// sessionIDFromRequest derives a best-effort visitor identity: explicit body
// token first, then the widget header, then the caller's network address.
func sessionIDFromRequest(r *http.Request, bodyID string) string {
	if id := strings.TrimSpace(bodyID); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get("X-Session-Id")); id != "" {
		return id
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "anonymous"
}

// HandleMessage is the HTTP chat endpoint: POST /api/chat.
// Once the body parses it always answers 200 with a human-readable reply;
// backend trouble is absorbed by the replier's fallback.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sessionID := sessionIDFromRequest(r, req.SessionID)

	start := time.Now()
	reply := h.replier.Reply(r.Context(), sessionID, req.Message)
	h.metrics.ObserveReplyLatency(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ChatResponse{
		Reply:     reply,
		SessionID: sessionID,
	})
}

// HandleWebSocket upgrades to WebSocket for the embedded widget.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" {
			continue
		}

		start := time.Now()
		reply := h.replier.Reply(r.Context(), sessionID, msg.Text)
		h.metrics.ObserveReplyLatency(time.Since(start).Seconds())

		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      reply,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(widgetJS)
}
