package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/MeKo-Tech/pogo-lens/internal/version"
	"github.com/gorilla/websocket"
)

const maxGeometryBody = 1 << 12

// Renderers run locally; origin checks are left to the bind address.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Clients: s.hub.count(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// overlayHandler returns the blocks currently on screen.
func (s *Server) overlayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, OverlayResponse{
		CycleID:    s.surface.CycleID(),
		Region:     s.surface.Geometry(),
		Suppressed: s.surface.Suppressed(),
		Blocks:     s.surface.Overlay(),
	})
}

// overlayPNGHandler renders the overlay over the last processed frame.
func (s *Server) overlayPNGHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	img, ok := s.surface.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "no frame captured yet")
		return
	}
	data, err := utils.EncodePNG(img)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		slog.Debug("Failed to write overlay image", "error", err)
	}
}

// geometryHandler reads or updates the lens rectangle.
func (s *Server) geometryHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.surface.Geometry())
	case http.MethodPost:
		var g Geometry
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGeometryBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&g); err != nil {
			writeError(w, http.StatusBadRequest, "invalid geometry: "+err.Error())
			return
		}
		if err := s.surface.SetGeometry(g); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.surface.Geometry())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// statsHandler exposes pipeline and scheduler counters.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	info := s.infoProvider()
	if info == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, info())
}

// wsHandler connects an overlay renderer.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	c := s.hub.register(conn)
	go c.writePump()
	slog.Info("Renderer connected", "client", c.id, "remote_addr", r.RemoteAddr)

	g := s.surface.Geometry()
	s.hub.sendTo(c, Message{
		Type:     MsgHello,
		CycleID:  s.surface.CycleID(),
		Blocks:   s.surface.Overlay(),
		Geometry: &g,
	})

	s.readLoop(c)
	s.hub.unregister(c)
	slog.Info("Renderer disconnected", "client", c.id)
}

func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(maxGeometryBody)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket error", "client", c.id, "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.handleMessage(c, data)
		}
	}
}

func (s *Server) handleMessage(c *client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("Invalid renderer message", "client", c.id, "error", err)
		return
	}
	switch msg.Type {
	case MsgAck:
		s.hub.ack(c, msg.Seq)
	case MsgGeometry:
		if msg.Geometry == nil {
			slog.Warn("Geometry message without geometry", "client", c.id)
			return
		}
		if err := s.surface.SetGeometry(*msg.Geometry); err != nil {
			slog.Warn("Rejected renderer geometry", "client", c.id, "error", err)
		}
	default:
		slog.Debug("Ignoring renderer message", "client", c.id, "type", msg.Type)
	}
}
