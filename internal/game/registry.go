package game

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// Room codes avoid visually ambiguous characters (0/O, 1/I).
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// Registry is the process-wide mapping from room code to room. It is owned
// by the process lifetime and injected into the service, never referenced
// as ambient global state, so each test can construct a fresh one.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create generates a unique code and registers a new room under it.
func (g *Registry) Create() (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempts := 0; attempts < 10; attempts++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, err
		}
		if _, exists := g.rooms[code]; exists {
			continue
		}
		room := newRoom(code)
		g.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code")
}

// Get returns the room for a code.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// Remove deletes a room from the registry. The room's own teardown
// (timers, connections) is the caller's job.
func (g *Registry) Remove(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// Rooms returns a snapshot of all live rooms, used when resolving which
// room a dropped connection belonged to.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		out = append(out, room)
	}
	return out
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func generateRoomCode() (string, error) {
	b := make([]byte, roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}
	return string(code), nil
}
