package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"quizroyale/internal/model"
)

// Room is one independent game instance. Every mutation happens under mu,
// which is the room's whole concurrency story: actions for the same room
// never interleave, while different rooms proceed in parallel.
type Room struct {
	mu sync.Mutex

	code       string
	hostConnID string
	phase      model.Phase
	round      int
	started    bool

	currentQuestion *model.Question
	players         map[string]*Player
	byNameRole      map[string]string
	usedQuestionIDs map[int]struct{}

	// Phase-scoped fields, cleared on phase exit.
	playerMakingID      string
	pendingQuestion     *model.Question
	currentChatPlayerID string
	rescuedIDs          map[string]struct{}
	excusesClosed       bool
	hostAuthoring       bool

	// Single timer slot. Arming replaces any pending deadline; the epoch
	// lets an already-fired callback detect it has been superseded.
	timer      *time.Timer
	timerEpoch uint64
}

func newRoom(code string) *Room {
	return &Room{
		code:            code,
		phase:           model.PhaseWaiting,
		round:           1,
		players:         make(map[string]*Player),
		byNameRole:      make(map[string]string),
		usedQuestionIDs: make(map[int]struct{}),
		rescuedIDs:      make(map[string]struct{}),
	}
}

// Code returns the room's immutable shareable code.
func (r *Room) Code() string {
	return r.code
}

func nameRoleKey(name string, role model.Role) string {
	return name + "\x00" + string(role)
}

// uniqueName resolves display-name collisions by numeric suffixing:
// "Kim", "Kim2", "Kim3", ... Caller holds r.mu.
func (r *Room) uniqueName(base string) string {
	taken := make(map[string]struct{}, len(r.players))
	for _, p := range r.players {
		taken[p.Name] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// addPlayer registers a player and indexes it for reconnection.
// Caller holds r.mu.
func (r *Room) addPlayer(p *Player) {
	r.players[p.ID] = p
	r.byNameRole[nameRoleKey(p.Name, p.Role)] = p.ID
}

// removePlayer drops a player and its index entry. Caller holds r.mu.
func (r *Room) removePlayer(connID string) {
	p, ok := r.players[connID]
	if !ok {
		return
	}
	delete(r.players, connID)
	delete(r.byNameRole, nameRoleKey(p.Name, p.Role))
	delete(r.rescuedIDs, connID)
}

// eligiblePlayers returns the non-eliminated participants with the player
// role. Caller holds r.mu.
func (r *Room) eligiblePlayers() []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.Eligible() {
			out = append(out, p)
		}
	}
	return out
}

// allEligibleAnswered reports whether the selection window can close
// organically. Vacuously false with zero eligible players so an emptied
// room does not advance on its own. Caller holds r.mu.
func (r *Room) allEligibleAnswered() bool {
	eligible := r.eligiblePlayers()
	if len(eligible) == 0 {
		return false
	}
	for _, p := range eligible {
		if p.Answer == nil {
			return false
		}
	}
	return true
}

// wrongAnswerers returns eligible players who missed the correct option.
// Caller holds r.mu.
func (r *Room) wrongAnswerers(correct int) []*Player {
	var out []*Player
	for _, p := range r.eligiblePlayers() {
		if p.WrongAnswer(correct) {
			out = append(out, p)
		}
	}
	return out
}

// clearRoundState resets everything that is scoped to a single round.
// Caller holds r.mu.
func (r *Room) clearRoundState() {
	for _, p := range r.players {
		p.resetRound()
	}
	r.rescuedIDs = make(map[string]struct{})
	r.playerMakingID = ""
	r.pendingQuestion = nil
	r.currentChatPlayerID = ""
	r.excusesClosed = false
	r.hostAuthoring = false
}

// armTimer replaces any pending deadline with a new one (cancel-then-set,
// never stacked). The callback receives the epoch it was armed under and
// must re-check it against the room before acting. Caller holds r.mu.
func (r *Room) armTimer(d time.Duration, fn func(epoch uint64)) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerEpoch++
	epoch := r.timerEpoch
	r.timer = time.AfterFunc(d, func() { fn(epoch) })
}

// disarmTimer cancels the pending deadline. Bumping the epoch also fences
// off a callback that already fired and is waiting on r.mu. Caller holds
// r.mu.
func (r *Room) disarmTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerEpoch++
}

// snapshot builds the authoritative state pushed as room_state. The
// question text is withheld during selection and the correct answer until
// the host judges. Caller holds r.mu.
func (r *Room) snapshot() model.RoomSnapshot {
	players := make([]model.PlayerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.View())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })

	snap := model.RoomSnapshot{
		Players:           players,
		Phase:             r.phase,
		Round:             r.round,
		HostID:            r.hostConnID,
		CurrentChatPlayer: r.currentChatPlayerID,
	}
	if q := r.currentQuestion; q != nil {
		view := &model.QuestionView{Options: q.Options}
		if r.phase != model.PhaseSelecting {
			view.Text = q.Text
		}
		view.CorrectAnswer = q.CorrectAnswer
		snap.Question = view
	}
	return snap
}
