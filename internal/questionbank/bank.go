// Package questionbank holds the preset question list shared read-only by
// all rooms. The bank itself is immutable after load; per-room used-question
// tracking lives with the room and is passed in on each draw.
package questionbank

import (
	"fmt"
	"math/rand/v2"

	"quizroyale/internal/model"
)

// Bank is an immutable set of preset questions.
type Bank struct {
	questions []model.Question
	byID      map[int]model.Question
}

// New builds a bank from loaded questions, dropping entries that do not
// carry exactly the expected option count.
func New(questions []model.Question) (*Bank, error) {
	b := &Bank{byID: make(map[int]model.Question, len(questions))}
	for _, q := range questions {
		if !q.Valid() {
			continue
		}
		if _, dup := b.byID[q.ID]; dup {
			continue
		}
		q.CorrectAnswer = nil
		b.questions = append(b.questions, q)
		b.byID[q.ID] = q
	}
	if len(b.questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}
	return b, nil
}

// Size returns the number of usable questions.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Draw picks a uniformly random question not present in used and records it
// there. When every question has been used the set is cleared first, so a
// full cycle simply restarts.
func (b *Bank) Draw(used map[int]struct{}) model.Question {
	available := make([]model.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if _, ok := used[q.ID]; !ok {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		for id := range used {
			delete(used, id)
		}
		available = b.questions
	}
	q := available[rand.IntN(len(available))]
	used[q.ID] = struct{}{}
	return q
}
