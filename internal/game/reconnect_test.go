package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizroyale/internal/model"
)

func TestRejoinMigratesPlayerState(t *testing.T) {
	svc, fb := newTestService(t, slowSettings())
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.HostRandomQuestion("h1", code)
	svc.SubmitAnswer("p1", code, 1)

	// Kim drops mid-selection and comes back on a fresh socket.
	svc.Disconnect("p1")
	assert.False(t, playerState(t, svc, code, "p1").Connected)

	svc.RejoinRoom("p1b", code, "Kim", model.RolePlayer)

	migrated := playerState(t, svc, code, "p1b")
	assert.Equal(t, "Kim", migrated.Name)
	assert.True(t, migrated.Connected)
	require.NotNil(t, migrated.Answer)
	assert.Equal(t, 1, *migrated.Answer)

	// The old connection id is gone entirely.
	room, _ := svc.registry.Get(code)
	room.mu.Lock()
	_, oldThere := room.players["p1"]
	room.mu.Unlock()
	assert.False(t, oldThere)
	assert.True(t, fb.subscribed(code, "p1b"))
	assert.False(t, fb.subscribed(code, "p1"))

	joined := fb.lastOf(t, EventJoinedRoom).Payload.(JoinedRoomPayload)
	assert.Equal(t, "p1b", joined.PlayerID)
	assert.Equal(t, "Kim", joined.Name)
}

func TestRejoinBeatsGracePeriodRemoval(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 30 * time.Millisecond
	svc, _ := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.Disconnect("p1")
	svc.RejoinRoom("p1b", code, "Kim", model.RolePlayer)

	// Let the stale removal fire; it must find nothing to remove.
	time.Sleep(3 * settings.DisconnectGrace)
	assert.True(t, playerState(t, svc, code, "p1b").Connected)
}

func TestGracePeriodRemovesGhost(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 30 * time.Millisecond
	svc, _ := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.Disconnect("p1")
	require.Eventually(t, func() bool {
		room, ok := svc.registry.Get(code)
		if !ok {
			return false
		}
		room.mu.Lock()
		defer room.mu.Unlock()
		_, there := room.players["p1"]
		return !there
	}, 2*time.Second, 5*time.Millisecond)

	// The freed name is available again.
	svc.JoinRoom("p3", code, "Kim", "")
	assert.Equal(t, "Kim", playerState(t, svc, code, "p3").Name)
}

func TestHostLossDestroysRoom(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 30 * time.Millisecond
	svc, fb := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")

	svc.Disconnect("h1")
	require.Eventually(t, func() bool {
		return svc.registry.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.NotEmpty(t, fb.eventsOf(EventHostLeft))
	assert.NotEmpty(t, fb.eventsOf(EventRoomDestroyed))
}

func TestHostRejoinKeepsRoomAlive(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 50 * time.Millisecond
	svc, _ := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")

	svc.Disconnect("h1")
	svc.RejoinRoom("h1b", code, "Ari", model.RoleHost)

	time.Sleep(3 * settings.DisconnectGrace)
	require.Equal(t, 1, svc.registry.Len())

	// Room authority moved to the new connection.
	svc.HostRandomQuestion("h1", code)
	assert.Equal(t, model.PhaseWaiting, roomPhase(t, svc, code))
	svc.HostRandomQuestion("h1b", code)
	assert.Equal(t, model.PhaseSelecting, roomPhase(t, svc, code))
}

func TestDepartedHoldoutClosesWindow(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 30 * time.Millisecond
	svc, fb := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.HostRandomQuestion("h1", code)
	svc.SubmitAnswer("p1", code, 0)

	// The only unanswered player leaves for good.
	svc.Disconnect("p2")
	waitForPhase(t, svc, code, model.PhaseQuestionReveal)
	assert.Len(t, fb.eventsOf(EventAllAnswered), 1)
}

func TestDepartedQuestionAuthorRevertsPhase(t *testing.T) {
	settings := slowSettings()
	settings.DisconnectGrace = 30 * time.Millisecond
	svc, _ := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")

	svc.HostPlayerQuestion("h1", code)
	require.Equal(t, model.PhasePlayerMaking, roomPhase(t, svc, code))

	svc.Disconnect("p1")
	waitForPhase(t, svc, code, model.PhaseWaiting)
}

func TestRejoinUnknownIdentityFallsBackToJoin(t *testing.T) {
	svc, _ := newTestService(t, slowSettings())
	code := mustCreateRoom(t, svc, "h1", "Ari")

	svc.RejoinRoom("p9", code, "Nobody", model.RolePlayer)
	p := playerState(t, svc, code, "p9")
	assert.Equal(t, "Nobody", p.Name)
	assert.Equal(t, model.RolePlayer, p.Role)
}
