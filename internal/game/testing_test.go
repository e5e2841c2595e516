package game

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quizroyale/internal/model"
	"quizroyale/internal/questionbank"
)

type recordedEvent struct {
	Room    string
	Conn    string
	Event   string
	Payload interface{}
}

// fakeBroadcaster records every outbound event so tests can assert on the
// wire-visible behavior without a socket layer.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
	subs   map[string]map[string]struct{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{subs: make(map[string]map[string]struct{})}
}

func (f *fakeBroadcaster) Subscribe(roomCode, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[roomCode] == nil {
		f.subs[roomCode] = make(map[string]struct{})
	}
	f.subs[roomCode][connID] = struct{}{}
}

func (f *fakeBroadcaster) Unsubscribe(roomCode, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[roomCode], connID)
}

func (f *fakeBroadcaster) BroadcastToRoom(roomCode, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Room: roomCode, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) SendToConnection(connID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Conn: connID, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) DisconnectRoom(roomCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, roomCode)
}

// eventsOf returns all recorded events of one type, oldest first.
func (f *fakeBroadcaster) eventsOf(event string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeBroadcaster) lastOf(t *testing.T, event string) recordedEvent {
	t.Helper()
	all := f.eventsOf(event)
	require.NotEmpty(t, all, "no %q event recorded", event)
	return all[len(all)-1]
}

func (f *fakeBroadcaster) subscribed(roomCode, connID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.subs[roomCode][connID]
	return ok
}

func (f *fakeBroadcaster) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func testQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Text: "capital of France?", Options: []string{"Paris", "Lyon", "Nice", "Lille"}},
		{ID: 2, Text: "2+2?", Options: []string{"4", "5", "3", "22"}},
		{ID: 3, Text: "largest ocean?", Options: []string{"Pacific", "Atlantic", "Indian", "Arctic"}},
	}
}

func newTestService(t *testing.T, settings Settings) (*Service, *fakeBroadcaster) {
	t.Helper()
	bank, err := questionbank.New(testQuestions())
	require.NoError(t, err)

	fb := newFakeBroadcaster()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewRegistry(), bank, settings, logger)
	svc.SetBroadcaster(fb)
	return svc, fb
}

// mustCreateRoom creates a room via the service and returns its code.
// Only valid while the registry holds exactly one room.
func mustCreateRoom(t *testing.T, s *Service, hostConnID, hostName string) string {
	t.Helper()
	s.CreateRoom(hostConnID, hostName)
	rooms := s.registry.Rooms()
	require.Len(t, rooms, 1)
	return rooms[0].code
}

func roomPhase(t *testing.T, s *Service, code string) model.Phase {
	t.Helper()
	room, ok := s.registry.Get(code)
	require.True(t, ok, "room %s not found", code)
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.phase
}

func playerState(t *testing.T, s *Service, code, connID string) Player {
	t.Helper()
	room, ok := s.registry.Get(code)
	require.True(t, ok)
	room.mu.Lock()
	defer room.mu.Unlock()
	p, ok := room.players[connID]
	require.True(t, ok, "player %s not in room", connID)
	return *p
}

// answerAll submits the given option for every listed player.
func answerAll(s *Service, code string, option int, connIDs ...string) {
	for _, id := range connIDs {
		s.SubmitAnswer(id, code, option)
	}
}

func waitForPhase(t *testing.T, s *Service, code string, want model.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		room, ok := s.registry.Get(code)
		if !ok {
			return false
		}
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.phase == want
	}, 2*time.Second, 5*time.Millisecond, "room never reached phase %s", want)
}
