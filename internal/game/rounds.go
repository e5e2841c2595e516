package game

import (
	"math/rand/v2"
	"strings"
	"time"

	"quizroyale/internal/model"
)

// StartGame begins a round with a randomly drawn bank question. Kept as its
// own action name for older clients; host_random_question is the explicit
// form.
func (s *Service) StartGame(connID, roomCode string) {
	s.HostRandomQuestion(connID, roomCode)
}

// HostRandomQuestion draws an unused bank question and opens the selection
// window.
func (s *Service) HostRandomQuestion(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseWaiting {
		return
	}
	q := s.bank.Draw(room.usedQuestionIDs)
	s.startRoundLocked(room, q)
}

// HostMakeQuestion flags that the host is authoring this round's question
// personally; the question arrives via submit_question.
func (s *Service) HostMakeQuestion(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseWaiting {
		return
	}
	room.hostAuthoring = true
}

// HostPlayerQuestion hands question authorship to a randomly chosen
// eligible player.
func (s *Service) HostPlayerQuestion(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	if connID != room.hostConnID || room.phase != model.PhaseWaiting {
		room.mu.Unlock()
		return
	}
	candidates := room.eligiblePlayers()
	if len(candidates) == 0 {
		room.mu.Unlock()
		return
	}
	author := candidates[rand.IntN(len(candidates))]
	room.playerMakingID = author.ID
	room.phase = model.PhasePlayerMaking
	payload := PlayerMakingStartedPayload{PlayerID: author.ID, PlayerName: author.Name}
	snap := room.snapshot()
	room.mu.Unlock()

	s.broadcaster.BroadcastToRoom(roomCode, EventPlayerMakingStarted, payload)
	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
}

// SubmitQuestion accepts an authored question: from the host while
// authoring (straight into selection) or from the chosen player (into host
// review).
func (s *Service) SubmitQuestion(connID, roomCode, text string, options []string) {
	q := model.Question{Text: strings.TrimSpace(text), Options: options}
	if !q.Valid() {
		return
	}

	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	switch {
	case room.phase == model.PhaseWaiting && room.hostAuthoring && connID == room.hostConnID:
		s.startRoundLocked(room, q)
		room.mu.Unlock()
		return
	case room.phase == model.PhasePlayerMaking && connID == room.playerMakingID:
		room.pendingQuestion = &q
		room.phase = model.PhaseHostReview
		hostID := room.hostConnID
		payload := QuestionSubmittedPayload{Question: q.Text, Options: q.Options}
		snap := room.snapshot()
		room.mu.Unlock()

		s.broadcaster.SendToConnection(hostID, EventQuestionSubmitted, payload)
		s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
	default:
		room.mu.Unlock()
	}
}

// ConfirmPlayerQuestion lets the host approve the player-authored question,
// possibly edited, and open the selection window with it.
func (s *Service) ConfirmPlayerQuestion(connID, roomCode, text string, options []string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseHostReview {
		return
	}
	q := model.Question{Text: strings.TrimSpace(text), Options: options}
	if !q.Valid() {
		if room.pendingQuestion == nil {
			return
		}
		q = *room.pendingQuestion
	}
	s.startRoundLocked(room, q)
}

// CancelPlayerQuestion abandons crowd-sourced authoring and returns to
// waiting.
func (s *Service) CancelPlayerQuestion(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	if connID != room.hostConnID {
		room.mu.Unlock()
		return
	}
	if room.phase != model.PhasePlayerMaking && room.phase != model.PhaseHostReview {
		room.mu.Unlock()
		return
	}
	room.playerMakingID = ""
	room.pendingQuestion = nil
	room.phase = model.PhaseWaiting
	snap := room.snapshot()
	room.mu.Unlock()

	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, snap)
}

// startRoundLocked installs the round's question, resets round state, and
// opens the selection window. Caller holds room.mu.
func (s *Service) startRoundLocked(room *Room, q model.Question) {
	q.CorrectAnswer = nil
	room.clearRoundState()
	room.currentQuestion = &q
	room.phase = model.PhaseSelecting
	room.started = true

	code := room.code
	room.armTimer(s.settings.SelectingWindow, func(epoch uint64) {
		s.onSelectingDeadline(code, epoch)
	})

	s.broadcaster.BroadcastToRoom(code, EventRoundStarted, RoundStartedPayload{
		Round:   room.round,
		Options: q.Options,
		Phase:   model.PhaseSelecting,
	})
	s.broadcaster.BroadcastToRoom(code, EventRoomState, room.snapshot())
	s.logger.Info("round started", "room", code, "round", room.round, "question", q.ID)
}

// SubmitAnswer records an eligible player's option choice. The organic
// all-answered check runs after every submission, so the completing answer
// closes the window exactly once.
func (s *Service) SubmitAnswer(connID, roomCode string, answerIndex int) {
	if answerIndex < 0 || answerIndex >= model.OptionCount {
		return
	}
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.phase != model.PhaseSelecting {
		return
	}
	p, ok := room.players[connID]
	if !ok || !p.Eligible() || p.Answer != nil {
		return
	}
	idx := answerIndex
	p.Answer = &idx
	p.AnsweredAt = time.Now()

	s.broadcaster.BroadcastToRoom(roomCode, EventRoomState, room.snapshot())
	if room.allEligibleAnswered() {
		s.finishSelectingLocked(room)
	}
}

// onSelectingDeadline forces completion of a stalled selection window by
// synthesizing uniformly random answers for the holdouts, then running the
// identical path an organic last answer would have. Stale firings (the
// phase already advanced, or the timer was re-armed) no-op via the epoch
// check under the room lock.
func (s *Service) onSelectingDeadline(roomCode string, epoch uint64) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if epoch != room.timerEpoch || room.phase != model.PhaseSelecting {
		return
	}
	forced := 0
	for _, p := range room.eligiblePlayers() {
		if p.Answer == nil {
			idx := rand.IntN(model.OptionCount)
			p.Answer = &idx
			p.AnsweredAt = time.Now()
			forced++
		}
	}
	s.logger.Info("selection window expired", "room", roomCode, "forced", forced)
	s.finishSelectingLocked(room)
}

// finishSelectingLocked closes the selection window: question text and the
// per-option tally go out, and the host takes over for judging. Caller
// holds room.mu; guarded so a forced timeout racing an organic completion
// cannot apply twice.
func (s *Service) finishSelectingLocked(room *Room) {
	if room.phase != model.PhaseSelecting || room.currentQuestion == nil {
		return
	}
	room.disarmTimer()
	room.phase = model.PhaseQuestionReveal

	tally := make([]int, model.OptionCount)
	for _, p := range room.eligiblePlayers() {
		if p.Answer != nil && *p.Answer >= 0 && *p.Answer < model.OptionCount {
			tally[*p.Answer]++
		}
	}

	s.broadcaster.BroadcastToRoom(room.code, EventAllAnswered, AllAnsweredPayload{
		Question: room.currentQuestion.Text,
		Tally:    tally,
		Phase:    model.PhaseQuestionReveal,
	})
	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
}

// SelectCorrectAnswer records the host's judgment. With the rescue variant
// active and wrong answerers present, the room moves into the excuse phase;
// otherwise elimination applies immediately and the round closes into
// results.
func (s *Service) SelectCorrectAnswer(connID, roomCode string, answerIndex int) {
	if answerIndex < 0 || answerIndex >= model.OptionCount {
		return
	}
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseQuestionReveal || room.currentQuestion == nil {
		return
	}
	idx := answerIndex
	room.currentQuestion.CorrectAnswer = &idx

	wrong := room.wrongAnswerers(idx)
	if s.settings.RescueEnabled && len(wrong) > 0 {
		room.phase = model.PhaseExcuse
		room.excusesClosed = false
		code := room.code
		room.armTimer(s.settings.ExcuseWindow, func(epoch uint64) {
			s.onExcuseDeadline(code, epoch)
		})

		refs := make([]model.PlayerRef, 0, len(wrong))
		for _, p := range wrong {
			refs = append(refs, p.Ref())
		}
		s.broadcaster.BroadcastToRoom(code, EventAnswerRevealed, AnswerRevealedPayload{
			CorrectAnswer: idx,
			WrongPlayers:  refs,
			Phase:         model.PhaseExcuse,
		})
		s.broadcaster.BroadcastToRoom(code, EventRoomState, room.snapshot())
		return
	}

	eliminated := s.sweepLocked(room, idx)
	s.enterResultLocked(room, eliminated)
}

// onExcuseDeadline closes excuse submission when the window runs out. The
// host keeps control of judging; only new excuses are refused.
func (s *Service) onExcuseDeadline(roomCode string, epoch uint64) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if epoch != room.timerEpoch {
		return
	}
	if room.phase != model.PhaseExcuse && room.phase != model.PhaseChat {
		return
	}
	room.excusesClosed = true
	s.broadcaster.BroadcastToRoom(roomCode, EventExcuseTimeUp, struct{}{})
}

// sweepLocked eliminates every eligible wrong answerer that was neither
// rescued nor already judged individually. Caller holds room.mu.
func (s *Service) sweepLocked(room *Room, correct int) []model.PlayerRef {
	var eliminated []model.PlayerRef
	for _, p := range room.wrongAnswerers(correct) {
		if _, rescued := room.rescuedIDs[p.ID]; rescued {
			continue
		}
		p.Eliminated = true
		eliminated = append(eliminated, p.Ref())
	}
	return eliminated
}

// enterResultLocked closes the round into the result phase. Caller holds
// room.mu.
func (s *Service) enterResultLocked(room *Room, eliminated []model.PlayerRef) {
	room.disarmTimer()
	room.currentChatPlayerID = ""
	room.phase = model.PhaseResult

	survivors := len(room.eligiblePlayers())
	correct := 0
	if room.currentQuestion != nil && room.currentQuestion.CorrectAnswer != nil {
		correct = *room.currentQuestion.CorrectAnswer
	}
	if eliminated == nil {
		eliminated = []model.PlayerRef{}
	}

	s.broadcaster.BroadcastToRoom(room.code, EventResultRevealed, ResultRevealedPayload{
		CorrectAnswer: correct,
		Eliminated:    eliminated,
		SurvivorCount: survivors,
		Phase:         model.PhaseResult,
	})
	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
	s.logger.Info("round judged", "room", room.code, "round", room.round,
		"eliminated", len(eliminated), "survivors", survivors)
}

// NextRound advances the room: out of the excuse phase it runs the closing
// elimination sweep; out of the result phase it evaluates the win condition
// and either finishes the game or returns to waiting for the next round.
func (s *Service) NextRound(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID {
		return
	}

	switch room.phase {
	case model.PhaseExcuse:
		correct := 0
		if room.currentQuestion != nil && room.currentQuestion.CorrectAnswer != nil {
			correct = *room.currentQuestion.CorrectAnswer
		}
		eliminated := s.sweepLocked(room, correct)
		s.enterResultLocked(room, eliminated)

	case model.PhaseResult:
		survivors := room.eligiblePlayers()
		if len(survivors) <= 1 {
			room.disarmTimer()
			room.phase = model.PhaseFinished
			var winner *model.PlayerView
			if len(survivors) == 1 {
				v := survivors[0].View()
				winner = &v
			}
			s.broadcaster.BroadcastToRoom(room.code, EventGameFinished, GameFinishedPayload{Winner: winner})
			s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
			s.logger.Info("game finished", "room", room.code, "winner", winner != nil)
			return
		}
		room.round++
		room.phase = model.PhaseWaiting
		room.currentQuestion = nil
		room.clearRoundState()
		s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
	}
}

// RestartGame performs the one legal phase regression: from finished back
// to a fresh waiting room with all elimination and answer state cleared.
func (s *Service) RestartGame(connID, roomCode string) {
	room, ok := s.lookupRoom(connID, roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if connID != room.hostConnID || room.phase != model.PhaseFinished {
		return
	}
	room.round = 1
	room.started = false
	room.currentQuestion = nil
	for _, p := range room.players {
		p.Eliminated = false
	}
	room.clearRoundState()
	room.phase = model.PhaseWaiting

	s.broadcaster.BroadcastToRoom(room.code, EventRoomState, room.snapshot())
	s.logger.Info("game restarted", "room", room.code)
}

// FinalChat relays open chat on the finished screen.
func (s *Service) FinalChat(connID, roomCode, message string) {
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
	if room.phase != model.PhaseFinished {
		return
	}
	p, ok := room.players[connID]
	if !ok {
		return
	}
	s.broadcaster.BroadcastToRoom(room.code, EventFinalChat, ChatMessagePayload{
		SenderID:   connID,
		SenderName: p.Name,
		Message:    message,
	})
}
