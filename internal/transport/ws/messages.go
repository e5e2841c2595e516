package ws

import (
	"encoding/json"

	"quizroyale/internal/model"
)

// Inbound action types.
const (
	ActionCreateRoom            = "create_room"
	ActionJoinRoom              = "join_room"
	ActionRejoinRoom            = "rejoin_room"
	ActionGetRoomState          = "get_room_state"
	ActionStartGame             = "start_game"
	ActionHostMakeQuestion      = "host_make_question"
	ActionHostRandomQuestion    = "host_random_question"
	ActionHostPlayerQuestion    = "host_player_question"
	ActionSubmitQuestion        = "submit_question"
	ActionConfirmPlayerQuestion = "confirm_player_question"
	ActionCancelPlayerQuestion  = "cancel_player_question"
	ActionSubmitAnswer          = "submit_answer"
	ActionSelectCorrectAnswer   = "select_correct_answer"
	ActionSubmitExcuse          = "submit_excuse"
	ActionLikeExcuse            = "like_excuse"
	ActionStartChat             = "start_chat"
	ActionChatMessage           = "chat_message"
	ActionJudgePlayer           = "judge_player"
	ActionNextRound             = "next_round"
	ActionRestartGame           = "restart_game"
	ActionDestroyRoom           = "destroy_room"
	ActionFinalChat             = "final_chat"
)

type createRoomPayload struct {
	Name string `json:"name"`
}

type joinRoomPayload struct {
	RoomID string     `json:"roomId"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role,omitempty"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type questionPayload struct {
	RoomID   string   `json:"roomId"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

type answerPayload struct {
	RoomID      string `json:"roomId"`
	AnswerIndex int    `json:"answerIndex"`
}

type excusePayload struct {
	RoomID string `json:"roomId"`
	Excuse string `json:"excuse"`
}

type targetPlayerPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type chatPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type judgePayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Rescue   bool   `json:"rescue"`
}

// dispatch decodes one inbound envelope and routes it to the game service.
// Malformed messages are dropped without mutation; the client is expected
// to validate before sending, so this path is a defensive backstop.
func (h *Handler) dispatch(connID string, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug("malformed envelope", "conn", connID, "error", err)
		return
	}

	decode := func(v interface{}) bool {
		if err := json.Unmarshal(msg.Payload, v); err != nil {
			h.logger.Debug("malformed payload", "conn", connID, "type", msg.Type, "error", err)
			return false
		}
		return true
	}

	switch msg.Type {
	case ActionCreateRoom:
		var p createRoomPayload
		if decode(&p) {
			h.svc.CreateRoom(connID, p.Name)
		}
	case ActionJoinRoom:
		var p joinRoomPayload
		if decode(&p) {
			h.svc.JoinRoom(connID, p.RoomID, p.Name, p.Role)
		}
	case ActionRejoinRoom:
		var p joinRoomPayload
		if decode(&p) {
			h.svc.RejoinRoom(connID, p.RoomID, p.Name, p.Role)
		}
	case ActionGetRoomState:
		var p roomPayload
		if decode(&p) {
			h.svc.GetRoomState(connID, p.RoomID)
		}
	case ActionStartGame:
		var p roomPayload
		if decode(&p) {
			h.svc.StartGame(connID, p.RoomID)
		}
	case ActionHostMakeQuestion:
		var p roomPayload
		if decode(&p) {
			h.svc.HostMakeQuestion(connID, p.RoomID)
		}
	case ActionHostRandomQuestion:
		var p roomPayload
		if decode(&p) {
			h.svc.HostRandomQuestion(connID, p.RoomID)
		}
	case ActionHostPlayerQuestion:
		var p roomPayload
		if decode(&p) {
			h.svc.HostPlayerQuestion(connID, p.RoomID)
		}
	case ActionSubmitQuestion:
		var p questionPayload
		if decode(&p) {
			h.svc.SubmitQuestion(connID, p.RoomID, p.Question, p.Options)
		}
	case ActionConfirmPlayerQuestion:
		var p questionPayload
		if decode(&p) {
			h.svc.ConfirmPlayerQuestion(connID, p.RoomID, p.Question, p.Options)
		}
	case ActionCancelPlayerQuestion:
		var p roomPayload
		if decode(&p) {
			h.svc.CancelPlayerQuestion(connID, p.RoomID)
		}
	case ActionSubmitAnswer:
		var p answerPayload
		if decode(&p) {
			h.svc.SubmitAnswer(connID, p.RoomID, p.AnswerIndex)
		}
	case ActionSelectCorrectAnswer:
		var p answerPayload
		if decode(&p) {
			h.svc.SelectCorrectAnswer(connID, p.RoomID, p.AnswerIndex)
		}
	case ActionSubmitExcuse:
		var p excusePayload
		if decode(&p) {
			h.svc.SubmitExcuse(connID, p.RoomID, p.Excuse)
		}
	case ActionLikeExcuse:
		var p targetPlayerPayload
		if decode(&p) {
			h.svc.LikeExcuse(connID, p.RoomID, p.PlayerID)
		}
	case ActionStartChat:
		var p targetPlayerPayload
		if decode(&p) {
			h.svc.StartChat(connID, p.RoomID, p.PlayerID)
		}
	case ActionChatMessage:
		var p chatPayload
		if decode(&p) {
			h.svc.ChatMessage(connID, p.RoomID, p.Message)
		}
	case ActionJudgePlayer:
		var p judgePayload
		if decode(&p) {
			h.svc.JudgePlayer(connID, p.RoomID, p.PlayerID, p.Rescue)
		}
	case ActionNextRound:
		var p roomPayload
		if decode(&p) {
			h.svc.NextRound(connID, p.RoomID)
		}
	case ActionRestartGame:
		var p roomPayload
		if decode(&p) {
			h.svc.RestartGame(connID, p.RoomID)
		}
	case ActionDestroyRoom:
		var p roomPayload
		if decode(&p) {
			h.svc.DestroyRoom(connID, p.RoomID)
		}
	case ActionFinalChat:
		var p chatPayload
		if decode(&p) {
			h.svc.FinalChat(connID, p.RoomID, p.Message)
		}
	default:
		h.logger.Debug("unknown action", "conn", connID, "type", msg.Type)
	}
}
