package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizroyale/internal/model"
)

func TestSelectingDeadlineForcesRandomAnswers(t *testing.T) {
	settings := slowSettings()
	settings.SelectingWindow = 30 * time.Millisecond
	svc, fb := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.HostRandomQuestion("h1", code)
	svc.SubmitAnswer("p1", code, 2)

	waitForPhase(t, svc, code, model.PhaseQuestionReveal)

	// The deliberate answer survives; the holdout got a random one.
	p1 := playerState(t, svc, code, "p1")
	require.NotNil(t, p1.Answer)
	assert.Equal(t, 2, *p1.Answer)

	p2 := playerState(t, svc, code, "p2")
	require.NotNil(t, p2.Answer)
	assert.GreaterOrEqual(t, *p2.Answer, 0)
	assert.Less(t, *p2.Answer, model.OptionCount)

	// Exactly one window close despite the timer and the organic path
	// coexisting.
	assert.Len(t, fb.eventsOf(EventAllAnswered), 1)
}

func TestStaleSelectingDeadlineIsIgnored(t *testing.T) {
	svc, fb := newTestService(t, slowSettings())
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")

	svc.HostRandomQuestion("h1", code)
	room, _ := svc.registry.Get(code)
	room.mu.Lock()
	staleEpoch := room.timerEpoch
	room.mu.Unlock()

	// The last answer closes the window and disarms the timer.
	svc.SubmitAnswer("p1", code, 0)
	require.Equal(t, model.PhaseQuestionReveal, roomPhase(t, svc, code))
	fb.reset()

	// A callback armed under the old epoch must not re-run the close.
	svc.onSelectingDeadline(code, staleEpoch)
	assert.Empty(t, fb.eventsOf(EventAllAnswered))
	assert.Equal(t, model.PhaseQuestionReveal, roomPhase(t, svc, code))
}

func TestExcuseDeadlineClosesSubmissionsOnly(t *testing.T) {
	settings := slowSettings()
	settings.ExcuseWindow = 30 * time.Millisecond
	svc, fb := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	svc.HostRandomQuestion("h1", code)
	svc.SubmitAnswer("p1", code, 0)
	svc.SubmitAnswer("p2", code, 1)
	svc.SelectCorrectAnswer("h1", code, 0)
	require.Equal(t, model.PhaseExcuse, roomPhase(t, svc, code))

	require.Eventually(t, func() bool {
		return len(fb.eventsOf(EventExcuseTimeUp)) > 0
	}, 2*time.Second, 5*time.Millisecond)

	// The phase holds; only new excuses are refused.
	assert.Equal(t, model.PhaseExcuse, roomPhase(t, svc, code))
	svc.SubmitExcuse("p2", code, "too late")
	assert.Empty(t, playerState(t, svc, code, "p2").Excuse)

	// The host still judges and closes the round.
	svc.JudgePlayer("h1", code, "p2", true)
	svc.NextRound("h1", code)
	assert.Equal(t, model.PhaseResult, roomPhase(t, svc, code))
}

func TestNewRoundRearmsTimerCleanly(t *testing.T) {
	settings := slowSettings()
	settings.SelectingWindow = 40 * time.Millisecond
	svc, fb := newTestService(t, settings)
	code := mustCreateRoom(t, svc, "h1", "Ari")
	svc.JoinRoom("p1", code, "Kim", "")
	svc.JoinRoom("p2", code, "Lee", "")

	// Round one closes organically well before its deadline.
	svc.HostRandomQuestion("h1", code)
	answerAll(svc, code, 0, "p1", "p2")
	svc.SelectCorrectAnswer("h1", code, 0)
	svc.NextRound("h1", code)
	require.Equal(t, model.PhaseWaiting, roomPhase(t, svc, code))

	// Round two runs out; only its own deadline may close it.
	svc.HostRandomQuestion("h1", code)
	waitForPhase(t, svc, code, model.PhaseQuestionReveal)
	assert.Len(t, fb.eventsOf(EventAllAnswered), 2)
}
