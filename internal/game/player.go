package game

import (
	"time"

	"quizroyale/internal/model"
)

// Player is one participant's state within a room. The ID is the current
// connection identifier, not a stable identity: a reconnect under a new
// connection re-binds the same Player to the new ID via the room's
// (name, role) index.
type Player struct {
	ID         string
	Name       string
	Role       model.Role
	Answer     *int
	Excuse     string
	Likes      int
	Eliminated bool
	Connected  bool
	AnsweredAt time.Time
}

// Eligible reports whether the player takes part in rounds: a non-eliminated
// participant with the player role. Hosts and spectators never answer.
func (p *Player) Eligible() bool {
	return p.Role == model.RolePlayer && !p.Eliminated
}

// WrongAnswer reports whether the player missed the judged correct option.
func (p *Player) WrongAnswer(correct int) bool {
	return p.Answer == nil || *p.Answer != correct
}

// Ref returns the id/name reference used in transition events.
func (p *Player) Ref() model.PlayerRef {
	return model.PlayerRef{ID: p.ID, Name: p.Name}
}

// View returns the broadcast-safe projection of the player.
func (p *Player) View() model.PlayerView {
	return model.PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		Role:       p.Role,
		Answer:     p.Answer,
		Excuse:     p.Excuse,
		Likes:      p.Likes,
		Eliminated: p.Eliminated,
		Connected:  p.Connected,
	}
}

// resetRound clears the round-scoped fields at the start of a new round.
// Elimination deliberately survives: it is terminal until an explicit
// restart.
func (p *Player) resetRound() {
	p.Answer = nil
	p.Excuse = ""
	p.Likes = 0
	p.AnsweredAt = time.Time{}
}
