package game

// Broadcaster is the outbound contract the state machine pushes events
// through. Implemented by the websocket hub; the game package only consumes
// it, which keeps transport out of the core and makes tests trivial to fake.
type Broadcaster interface {
	// Subscribe adds a connection to a room's broadcast scope.
	Subscribe(roomCode, connID string)
	// Unsubscribe removes a connection from a room's broadcast scope.
	Unsubscribe(roomCode, connID string)
	// BroadcastToRoom sends an event to every connection in the room.
	BroadcastToRoom(roomCode string, event string, payload interface{})
	// SendToConnection sends an event to a single connection.
	SendToConnection(connID string, event string, payload interface{})
	// DisconnectRoom evicts every connection subscribed to the room.
	DisconnectRoom(roomCode string)
}
