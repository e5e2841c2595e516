package game

import (
	"strings"

	"quizroyale/internal/model"
)

// maxExcuseLen caps the appeal text, matching the original 20-character UI
// limit.
const maxExcuseLen = 20

// SubmitExcuse records a wrong answerer's appeal while the excuse window is
// open.
func (s *Service) SubmitExcuse(connID, roomCode, excuse string) {
	excuse = strings.TrimSpace(excuse)
	if excuse == "" {
		return
	}
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.phase != model.PhaseExcuse || room.excusesClosed {
		return
	}
	q := room.currentQuestion
	if q == nil || q.CorrectAnswer == nil {
		return
	}
	p, ok := room.players[connID]
	if !ok || !p.Eligible() || !p.WrongAnswer(*q.CorrectAnswer) {
		return
	}

	if runes := []rune(excuse); len(runes) > maxExcuseLen {
		excuse = string(runes[:maxExcuseLen])
	}
	p.Excuse = excuse

	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
}

// LikeExcuse bumps the like counter on another player's appeal.
func (s *Service) LikeExcuse(connID, roomCode, playerID string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.phase != model.PhaseExcuse && room.phase != model.PhaseChat {
		return
	}
	if _, member := room.players[connID]; !member {
		return
	}
	target, ok := room.players[playerID]
	if !ok || target.Excuse == "" {
		return
	}
	target.Likes++

	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
}

// StartChat opens the host's one-on-one appeal chat with a wrong answerer.
func (s *Service) StartChat(connID, roomCode, playerID string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseExcuse {
		return
	}
	q := room.currentQuestion
	if q == nil || q.CorrectAnswer == nil {
		return
	}
	target, ok := room.players[playerID]
	if !ok || !target.Eligible() || !target.WrongAnswer(*q.CorrectAnswer) {
		return
	}
	room.currentChatPlayerID = playerID
	room.phase = model.PhaseChat

	s.broadcaster.BroadcastToRoom(room.code, EventChatStarted, ChatStartedPayload{
		PlayerID:   playerID,
		PlayerName: target.Name,
	})
	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
}

// ChatMessage relays a message within the appeal chat. Only the host and
// the player on trial may speak, and only they receive the exchange.
func (s *Service) ChatMessage(connID, roomCode, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.phase != model.PhaseChat || room.currentChatPlayerID == "" {
		return
	}
	if connID != room.hostConnID && connID != room.currentChatPlayerID {
		return
	}
	p, ok := room.players[connID]
	if !ok {
		return
	}
	payload := ChatMessagePayload{SenderID: connID, SenderName: p.Name, Message: message}
	s.broadcaster.SendToConnection(room.hostConnID, EventChatMessage, payload)
	s.broadcaster.SendToConnection(room.currentChatPlayerID, EventChatMessage, payload)
}

// JudgePlayer is the host's verdict on a wrong answerer: rescue spares them
// from the closing sweep, anything else eliminates them on the spot. Either
// way the chat ends and the room returns to the excuse phase.
func (s *Service) JudgePlayer(connID, roomCode, playerID string, rescue bool) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID {
		return
	}
	if room.phase != model.PhaseExcuse && room.phase != model.PhaseChat {
		return
	}
	target, ok := room.players[playerID]
	if !ok || target.Eliminated {
		return
	}

	verdict := PlayerJudgedPayload{PlayerID: target.ID, PlayerName: target.Name}
	if rescue {
		room.rescuedIDs[playerID] = struct{}{}
		s.broadcaster.BroadcastToRoom(room.code, EventPlayerRescued, verdict)
	} else {
		target.Eliminated = true
		s.broadcaster.BroadcastToRoom(room.code, EventPlayerEliminated, verdict)
	}

	room.currentChatPlayerID = ""
	room.phase = model.PhaseExcuse
	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
}
