package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(id string) *Connection {
	return &Connection{ID: id, Send: make(chan []byte, 16)}
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no message for %s", conn.ID)
		return Message{}
	}
}

func assertSilent(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Fatalf("unexpected message for %s: %s", conn.ID, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub(nil)
	inRoom := newTestConn("c_in")
	outside := newTestConn("c_out")
	hub.Register(inRoom)
	hub.Register(outside)
	hub.Subscribe("ABC123", inRoom.ID)

	hub.BroadcastToRoom("ABC123", "room_state", map[string]int{"round": 1})

	msg := receive(t, inRoom)
	assert.Equal(t, "room_state", msg.Type)
	assert.JSONEq(t, `{"round":1}`, string(msg.Payload))
	assertSilent(t, outside)
}

func TestSubscribeOrderedBeforeBroadcast(t *testing.T) {
	hub := NewHub(nil)
	conn := newTestConn("c_1")
	hub.Register(conn)

	// Back to back subscribe and broadcast must deliver: the hub processes
	// operations in submission order.
	hub.Subscribe("ABC123", conn.ID)
	hub.BroadcastToRoom("ABC123", "joined_room", nil)

	msg := receive(t, conn)
	assert.Equal(t, "joined_room", msg.Type)
}

func TestSendToConnection(t *testing.T) {
	hub := NewHub(nil)
	a := newTestConn("c_a")
	b := newTestConn("c_b")
	hub.Register(a)
	hub.Register(b)

	hub.SendToConnection("c_b", "error", map[string]string{"message": "room not found"})

	msg := receive(t, b)
	assert.Equal(t, "error", msg.Type)
	assertSilent(t, a)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	conn := newTestConn("c_1")
	hub.Register(conn)
	hub.Subscribe("ABC123", conn.ID)
	hub.Unsubscribe("ABC123", conn.ID)

	hub.BroadcastToRoom("ABC123", "room_state", nil)
	assertSilent(t, conn)
}

func TestDisconnectRoomClosesMembers(t *testing.T) {
	hub := NewHub(nil)
	conn := newTestConn("c_1")
	hub.Register(conn)
	hub.Subscribe("ABC123", conn.ID)

	hub.DisconnectRoom("ABC123")

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok, "expected closed send channel")
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestUnregisterIsIdempotentWithEviction(t *testing.T) {
	hub := NewHub(nil)
	conn := newTestConn("c_1")
	hub.Register(conn)
	hub.Subscribe("ABC123", conn.ID)

	// Eviction then the read pump's own unregister: the double close must
	// not panic and later broadcasts must go nowhere.
	hub.DisconnectRoom("ABC123")
	hub.Unregister(conn)
	hub.BroadcastToRoom("ABC123", "room_state", nil)

	time.Sleep(50 * time.Millisecond)
}
