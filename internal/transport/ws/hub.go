package ws

import (
	"encoding/json"
	"log/slog"
)

// Message is the envelope format in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one client connection.
type Connection struct {
	ID   string
	Send chan []byte

	closed bool
}

type subscription struct {
	roomCode string
	connID   string
}

type broadcastMessage struct {
	roomCode string // broadcast scope when set
	connID   string // single-connection scope when set
	data     []byte
}

// Hub fans outbound events to connections, grouped by room. All map state
// is owned by the run loop; callers interact through a single ordered
// operation channel so a subscribe is never outrun by the broadcast that
// follows it. The hub implements game.Broadcaster.
type Hub struct {
	conns  map[string]*Connection
	rooms  map[string]map[string]*Connection
	ops    chan interface{}
	logger *slog.Logger
}

type opRegister struct{ conn *Connection }
type opUnregister struct{ conn *Connection }
type opSubscribe subscription
type opUnsubscribe subscription
type opEvictRoom struct{ roomCode string }

// NewHub creates a hub and starts its run loop.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		conns:  make(map[string]*Connection),
		rooms:  make(map[string]map[string]*Connection),
		ops:    make(chan interface{}, 256),
		logger: logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for op := range h.ops {
		switch op := op.(type) {
		case opRegister:
			h.conns[op.conn.ID] = op.conn

		case opUnregister:
			h.dropConn(op.conn)

		case opSubscribe:
			conn, ok := h.conns[op.connID]
			if !ok {
				break
			}
			if h.rooms[op.roomCode] == nil {
				h.rooms[op.roomCode] = make(map[string]*Connection)
			}
			h.rooms[op.roomCode][op.connID] = conn

		case opUnsubscribe:
			if members, ok := h.rooms[op.roomCode]; ok {
				delete(members, op.connID)
				if len(members) == 0 {
					delete(h.rooms, op.roomCode)
				}
			}

		case opEvictRoom:
			for _, conn := range h.rooms[op.roomCode] {
				h.closeConn(conn)
			}
			delete(h.rooms, op.roomCode)

		case broadcastMessage:
			if op.connID != "" {
				if conn, ok := h.conns[op.connID]; ok {
					h.trySend(conn, op.data)
				}
				break
			}
			for _, conn := range h.rooms[op.roomCode] {
				h.trySend(conn, op.data)
			}
		}
	}
}

// trySend drops the message rather than block the run loop on a slow
// client.
func (h *Hub) trySend(conn *Connection, data []byte) {
	if conn.closed {
		return
	}
	select {
	case conn.Send <- data:
	default:
		h.logger.Warn("send buffer full, dropping message", "conn", conn.ID)
	}
}

func (h *Hub) closeConn(conn *Connection) {
	if conn.closed {
		return
	}
	conn.closed = true
	close(conn.Send)
}

func (h *Hub) dropConn(conn *Connection) {
	if existing, ok := h.conns[conn.ID]; ok && existing == conn {
		delete(h.conns, conn.ID)
		h.closeConn(conn)
	}
	for code, members := range h.rooms {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.ops <- opRegister{conn: conn}
}

// Unregister removes a connection and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.ops <- opUnregister{conn: conn}
}

// Subscribe adds a connection to a room's broadcast scope (implements
// game.Broadcaster).
func (h *Hub) Subscribe(roomCode, connID string) {
	h.ops <- opSubscribe{roomCode: roomCode, connID: connID}
}

// Unsubscribe removes a connection from a room's broadcast scope
// (implements game.Broadcaster).
func (h *Hub) Unsubscribe(roomCode, connID string) {
	h.ops <- opUnsubscribe{roomCode: roomCode, connID: connID}
}

// BroadcastToRoom sends an event to every connection in a room (implements
// game.Broadcaster).
func (h *Hub) BroadcastToRoom(roomCode string, event string, payload interface{}) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	h.ops <- broadcastMessage{roomCode: roomCode, data: data}
}

// SendToConnection sends an event to a single connection (implements
// game.Broadcaster).
func (h *Hub) SendToConnection(connID string, event string, payload interface{}) {
	data, err := encodeMessage(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	h.ops <- broadcastMessage{connID: connID, data: data}
}

// DisconnectRoom evicts every connection subscribed to a room (implements
// game.Broadcaster).
func (h *Hub) DisconnectRoom(roomCode string) {
	h.ops <- opEvictRoom{roomCode: roomCode}
}

func encodeMessage(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: event, Payload: raw})
}
