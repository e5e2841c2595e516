package model

// PlayerView is the broadcast-safe projection of a player used in room
// snapshots and event payloads.
type PlayerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Answer     *int   `json:"answer"`
	Excuse     string `json:"excuse,omitempty"`
	Likes      int    `json:"likes"`
	Eliminated bool   `json:"eliminated"`
	Connected  bool   `json:"connected"`
}

// PlayerRef identifies a player in events that only need id and name.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuestionView is the question as clients are allowed to see it. Text is
// withheld while answers are being collected and CorrectAnswer is withheld
// until the host judges.
type QuestionView struct {
	Text          string   `json:"question,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// RoomSnapshot is the full authoritative room state pushed to clients.
type RoomSnapshot struct {
	Players           []PlayerView  `json:"players"`
	Phase             Phase         `json:"phase"`
	Round             int           `json:"round"`
	HostID            string        `json:"hostId"`
	CurrentChatPlayer string        `json:"currentChatPlayer,omitempty"`
	Question          *QuestionView `json:"question,omitempty"`
}
