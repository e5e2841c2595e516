package model

// Phase is the stage a room is currently in. Exactly one phase is active
// at a time; transitions are driven by internal/game.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhasePlayerMaking   Phase = "player_making"
	PhaseHostReview     Phase = "host_review"
	PhaseSelecting      Phase = "selecting"
	PhaseQuestionReveal Phase = "question_reveal"
	PhaseExcuse         Phase = "excuse"
	PhaseChat           Phase = "chat"
	PhaseResult         Phase = "result"
	PhaseFinished       Phase = "finished"
)

// Role is a participant's role within a room, fixed at join time.
// A room has exactly one host.
type Role string

const (
	RoleHost      Role = "host"
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)
