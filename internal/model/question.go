package model

// OptionCount is the fixed number of choices per question.
const OptionCount = 4

// Question is a single multiple-choice question. CorrectAnswer stays nil
// until the host judges the round.
type Question struct {
	ID            int      `json:"id" bson:"_id"`
	Text          string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty" bson:"-"`
}

// Valid reports whether the question can be used in a round.
func (q Question) Valid() bool {
	return q.Text != "" && len(q.Options) == OptionCount
}
