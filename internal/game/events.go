package game

import "quizroyale/internal/model"

// Outbound event types. Connection-scoped unless noted.
const (
	EventRoomCreated         = "room_created"
	EventJoinedRoom          = "joined_room"
	EventRoomState           = "room_state" // room-scoped snapshot
	EventRoundStarted        = "round_started"
	EventPlayerMakingStarted = "player_making_started"
	EventQuestionSubmitted   = "question_submitted" // host only
	EventAllAnswered         = "all_answered"
	EventAnswerRevealed      = "answer_revealed"
	EventExcuseTimeUp        = "excuse_time_up"
	EventChatStarted         = "chat_started"
	EventChatMessage         = "chat_message" // host + chat partner only
	EventPlayerRescued       = "player_rescued"
	EventPlayerEliminated    = "player_eliminated"
	EventResultRevealed      = "result_revealed"
	EventGameFinished        = "game_finished"
	EventFinalChat           = "final_chat"
	EventHostLeft            = "host_left"
	EventRoomDestroyed       = "room_destroyed"
	EventError               = "error"
)

// RoomCreatedPayload acknowledges room creation to the host.
type RoomCreatedPayload struct {
	RoomID string     `json:"roomId"`
	Role   model.Role `json:"role"`
	Name   string     `json:"name"`
}

// JoinedRoomPayload acknowledges a join or rejoin. Name carries the
// collision-resolved display name actually assigned.
type JoinedRoomPayload struct {
	RoomID   string     `json:"roomId"`
	Role     model.Role `json:"role"`
	Name     string     `json:"name"`
	PlayerID string     `json:"playerId"`
}

// RoundStartedPayload opens the answer-selection window. The question text
// is deliberately absent: players see only the options until everyone has
// answered.
type RoundStartedPayload struct {
	Round   int         `json:"round"`
	Options []string    `json:"options"`
	Phase   model.Phase `json:"phase"`
}

// PlayerMakingStartedPayload announces which player authors this round's
// question.
type PlayerMakingStartedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// QuestionSubmittedPayload delivers a player-authored question to the host
// for review.
type QuestionSubmittedPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// AllAnsweredPayload reveals the question text plus the per-option answer
// tally once the selection window closes.
type AllAnsweredPayload struct {
	Question string      `json:"question"`
	Tally    []int       `json:"tally"`
	Phase    model.Phase `json:"phase"`
}

// AnswerRevealedPayload announces the judged correct option and the players
// who missed it, entering the excuse phase.
type AnswerRevealedPayload struct {
	CorrectAnswer int               `json:"correctAnswer"`
	WrongPlayers  []model.PlayerRef `json:"wrongPlayers"`
	Phase         model.Phase       `json:"phase"`
}

// ChatStartedPayload announces a host/player appeal chat.
type ChatStartedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// ChatMessagePayload is one message within an appeal chat or the finished
// screen free chat.
type ChatMessagePayload struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
}

// PlayerJudgedPayload announces an individual rescue or elimination
// verdict.
type PlayerJudgedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// ResultRevealedPayload closes a round: who fell, how many remain.
type ResultRevealedPayload struct {
	CorrectAnswer int               `json:"correctAnswer"`
	Eliminated    []model.PlayerRef `json:"eliminated"`
	SurvivorCount int               `json:"survivorCount"`
	Phase         model.Phase       `json:"phase"`
}

// GameFinishedPayload ends the game. Winner is nil when the last round
// eliminated everyone.
type GameFinishedPayload struct {
	Winner *model.PlayerView `json:"winner"`
}

// ErrorPayload tells a client it is out of sync and should return to a safe
// screen.
type ErrorPayload struct {
	Message string `json:"message"`
}
