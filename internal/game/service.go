package game

import (
	"log/slog"
	"strings"
	"time"

	"quizroyale/internal/model"
	"quizroyale/internal/questionbank"
)

// JoinPolicy controls when new players may enter a room.
type JoinPolicy string

const (
	// JoinBeforeStart closes entry once the first round has begun, even if
	// the room later returns to the waiting phase between rounds.
	JoinBeforeStart JoinPolicy = "before_start"
	// JoinWhileWaiting permits entry whenever the room sits in the waiting
	// phase, including between rounds.
	JoinWhileWaiting JoinPolicy = "while_waiting"
)

// Settings are the room-behavior tunables.
type Settings struct {
	SelectingWindow time.Duration
	ExcuseWindow    time.Duration
	DisconnectGrace time.Duration
	MaxPlayers      int
	JoinPolicy      JoinPolicy
	RescueEnabled   bool
}

// DefaultSettings mirror the original party-game tuning: a 20s answer
// window, a 10s excuse window, and 30 seats per room.
func DefaultSettings() Settings {
	return Settings{
		SelectingWindow: 20 * time.Second,
		ExcuseWindow:    10 * time.Second,
		DisconnectGrace: 5 * time.Second,
		MaxPlayers:      30,
		JoinPolicy:      JoinWhileWaiting,
		RescueEnabled:   true,
	}
}

// Service is the room state machine's entry point. Every inbound action is
// a method taking the acting connection id; preconditions that fail are
// absorbed silently (logged at debug), per the protocol's tolerance for
// late, duplicate, and out-of-phase messages.
type Service struct {
	registry    *Registry
	bank        *questionbank.Bank
	settings    Settings
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewService creates the game service.
func NewService(registry *Registry, bank *questionbank.Bank, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		bank:     bank,
		settings: settings,
		logger:   logger,
	}
}

// SetBroadcaster sets the broadcaster for outbound events.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// lookupRoom resolves a room code, surfacing the one error class clients
// are told about explicitly: acting on a room that no longer exists.
func (s *Service) lookupRoom(connID, roomCode string) (*Room, bool) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		s.broadcaster.SendToConnection(connID, EventError, ErrorPayload{Message: ErrRoomNotFound.Error()})
	}
	return room, ok
}

func (s *Service) sendError(connID string, err error) {
	s.broadcaster.SendToConnection(connID, EventError, ErrorPayload{Message: err.Error()})
}

// CreateRoom creates a room owned by the acting connection and seats it as
// host.
func (s *Service) CreateRoom(connID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	room, err := s.registry.Create()
	if err != nil {
		s.logger.Error("room creation failed", "error", err)
		s.sendError(connID, err)
		return
	}

	room.mu.Lock()
	room.hostConnID = connID
	room.addPlayer(&Player{
		ID:        connID,
		Name:      name,
		Role:      model.RoleHost,
		Connected: true,
	})
	snap := room.snapshot()
	room.mu.Unlock()

	s.broadcaster.Subscribe(room.code, connID)
	s.broadcaster.SendToConnection(connID, EventRoomCreated, RoomCreatedPayload{
		RoomID: room.code,
		Role:   model.RoleHost,
		Name:   name,
	})
	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, snap)
	s.logger.Info("room created", "room", room.code, "host", name)
}

// joinOpenLocked reports whether the room currently accepts new players.
// Caller holds room.mu.
func (s *Service) joinOpenLocked(room *Room) bool {
	if room.phase != model.PhaseWaiting {
		return false
	}
	if s.settings.JoinPolicy == JoinBeforeStart && room.started {
		return false
	}
	return true
}

// JoinRoom seats a new player or spectator. Entry is only permitted while
// the room is waiting, subject to the join policy and capacity.
func (s *Service) JoinRoom(connID, roomCode, name string, role model.Role) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	switch role {
	case "":
		role = model.RolePlayer
	case model.RolePlayer, model.RoleSpectator:
	default:
		// The host seat is taken at creation and reclaimed only via rejoin.
		return
	}

	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}

	room.mu.Lock()
	if _, already := room.players[connID]; already {
		room.mu.Unlock()
		return
	}
	if !s.joinOpenLocked(room) {
		room.mu.Unlock()
		s.sendError(connID, ErrRoomClosed)
		return
	}
	if len(room.players) >= s.settings.MaxPlayers {
		room.mu.Unlock()
		s.sendError(connID, ErrRoomFull)
		return
	}

	assigned := room.uniqueName(name)
	room.addPlayer(&Player{
		ID:        connID,
		Name:      assigned,
		Role:      role,
		Connected: true,
	})
	snap := room.snapshot()
	room.mu.Unlock()

	s.broadcaster.Subscribe(roomCode, connID)
	s.broadcaster.SendToConnection(connID, EventJoinedRoom, JoinedRoomPayload{
		RoomID:   roomCode,
		Role:     role,
		Name:     assigned,
		PlayerID: connID,
	})
	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
	s.logger.Info("player joined", "room", roomCode, "name", assigned, "role", role)
}

// RejoinRoom re-binds a dropped player's state to a new connection by
// (name, role) lookup: an ownership transfer, not a new player. A rejoining
// host additionally reclaims room authority.
func (s *Service) RejoinRoom(connID, roomCode, name string, role model.Role) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}

	room.mu.Lock()
	if p, already := room.players[connID]; already {
		// No drop actually happened; just re-sync the client.
		payload := JoinedRoomPayload{RoomID: roomCode, Role: p.Role, Name: p.Name, PlayerID: connID}
		snap := room.snapshot()
		room.mu.Unlock()
		s.broadcaster.Subscribe(roomCode, connID)
		s.broadcaster.SendToConnection(connID, EventJoinedRoom, payload)
		s.broadcaster.SendToConnection(connID, EventRoomState, snap)
		return
	}

	oldID, found := room.byNameRole[nameRoleKey(name, role)]
	if !found {
		// No identity to reclaim: fall back to a fresh join, which applies
		// the usual policy and capacity gates.
		room.mu.Unlock()
		s.JoinRoom(connID, roomCode, name, role)
		return
	}

	p := room.players[oldID]
	delete(room.players, oldID)
	p.ID = connID
	p.Connected = true
	room.players[connID] = p
	room.byNameRole[nameRoleKey(name, role)] = connID

	// Migrate phase-scoped references keyed by the old connection.
	if _, rescued := room.rescuedIDs[oldID]; rescued {
		delete(room.rescuedIDs, oldID)
		room.rescuedIDs[connID] = struct{}{}
	}
	if room.playerMakingID == oldID {
		room.playerMakingID = connID
	}
	if room.currentChatPlayerID == oldID {
		room.currentChatPlayerID = connID
	}
	if role == model.RoleHost {
		room.hostConnID = connID
	}
	snap := room.snapshot()
	room.mu.Unlock()

	s.broadcaster.Unsubscribe(roomCode, oldID)
	s.broadcaster.Subscribe(roomCode, connID)
	s.broadcaster.SendToConnection(connID, EventJoinedRoom, JoinedRoomPayload{
		RoomID:   roomCode,
		Role:     role,
		Name:     name,
		PlayerID: connID,
	})
	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
	s.logger.Info("player rejoined", "room", roomCode, "name", name, "role", role)
}

// GetRoomState re-sends the authoritative snapshot to the requesting
// connection.
func (s *Service) GetRoomState(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	snap := room.snapshot()
	room.mu.Unlock()
	s.broadcaster.SendToConnection(connID, EventRoomState, snap)
}

// RoomSnapshot returns the room's current snapshot for read-only callers
// outside the socket protocol.
func (s *Service) RoomSnapshot(roomCode string) (model.RoomSnapshot, bool) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return model.RoomSnapshot{}, false
	}
	room.mu.Lock()
	snap := room.snapshot()
	room.mu.Unlock()
	return snap, true
}

// Disconnect marks the connection's player as dropped and schedules its
// removal after the grace period. A rejoin under a new connection id
// deletes the old entry, which makes the scheduled removal a no-op.
func (s *Service) Disconnect(connID string) {
	for _, room := range s.registry.Rooms() {
		room.mu.Lock()
		p, ok := room.players[connID]
		if !ok {
			room.mu.Unlock()
			continue
		}
		p.Connected = false
		code := room.code
		snap := room.snapshot()
		room.mu.Unlock()

		s.broadcaster.BroadcastToRoom(code, EventRoomState, snap)
		time.AfterFunc(s.settings.DisconnectGrace, func() {
			s.finalizeDisconnect(code, connID)
		})
		return
	}
}

// finalizeDisconnect runs at grace-period expiry. Removal proceeds only if
// the connection id is still the one registered; a reconnect under a new id
// has already superseded it.
func (s *Service) finalizeDisconnect(roomCode, connID string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}

	room.mu.Lock()
	p, ok := room.players[connID]
	if !ok || p.Connected {
		room.mu.Unlock()
		return
	}

	if connID == room.hostConnID {
		// A room has no defined behavior without its authority.
		s.destroyRoomLocked(room, true)
		return
	}

	room.removePlayer(connID)
	if room.playerMakingID == connID {
		room.playerMakingID = ""
		room.pendingQuestion = nil
		if room.phase == model.PhasePlayerMaking || room.phase == model.PhaseHostReview {
			room.phase = model.PhaseWaiting
		}
	}
	if room.currentChatPlayerID == connID {
		room.currentChatPlayerID = ""
		if room.phase == model.PhaseChat {
			room.phase = model.PhaseExcuse
		}
	}
	snap := room.snapshot()
	finish := room.phase == model.PhaseSelecting && room.allEligibleAnswered()
	room.mu.Unlock()

	s.broadcaster.Unsubscribe(roomCode, connID)
	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
	s.logger.Info("player removed after grace period", "room", roomCode, "name", p.Name)

	if finish {
		// The departed player was the last holdout.
		room.mu.Lock()
		if room.phase == model.PhaseSelecting && room.allEligibleAnswered() {
			s.finishSelectingLocked(room)
		}
		room.mu.Unlock()
	}
}

// DestroyRoom tears the room down on explicit host request.
func (s *Service) DestroyRoom(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	if connID != room.hostConnID {
		room.mu.Unlock()
		return
	}
	s.destroyRoomLocked(room, false)
}

// destroyRoomLocked broadcasts the teardown, unregisters the room, and
// evicts every member. Takes ownership of room.mu and releases it.
func (s *Service) destroyRoomLocked(room *Room, hostLost bool) {
	room.disarmTimer()
	code := room.code
	room.mu.Unlock()

	s.registry.Remove(code)
	if hostLost {
		s.broadcaster.BroadcastToRoom(code, EventHostLeft, struct{}{})
	}
	s.broadcaster.BroadcastToRoom(code, EventRoomDestroyed, struct{}{})
	s.broadcaster.DisconnectRoom(code)
	s.logger.Info("room destroyed", "room", code, "hostLost", hostLost)
}
