package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"quizroyale/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the router
	},
}

// Handler upgrades connections and pumps messages between the socket, the
// hub, and the game service.
type Handler struct {
	hub    *Hub
	svc    *game.Service
	logger *slog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, svc *game.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hub: hub, svc: svc, logger: logger}
}

// ServeWS handles GET /v1/ws. Each socket gets a fresh connection id; the
// id is the client's identity for the lifetime of the socket and is rebound
// on reconnect via the rejoin_room action.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	connID := "c_" + uuid.New().String()[:8]
	conn := &Connection{
		ID:   connID,
		Send: make(chan []byte, 256),
	}
	h.hub.Register(conn)
	h.logger.Info("connection opened", "conn", connID, "remote", r.RemoteAddr)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		h.svc.Disconnect(conn.ID)
		wsConn.Close()
		h.logger.Info("connection closed", "conn", conn.ID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(10, 20)
	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "conn", conn.ID, "error", err)
			}
			break
		}
		if !limiter.Allow() {
			h.logger.Debug("rate limit exceeded, dropping action", "conn", conn.ID)
			continue
		}
		h.dispatch(conn.ID, data)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
