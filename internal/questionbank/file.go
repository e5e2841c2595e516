package questionbank

import (
	"encoding/json"
	"fmt"
	"os"

	"quizroyale/internal/model"
)

// LoadFile reads the bank from a JSON file holding a flat array of
// {id, question, options} records.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions file: %w", err)
	}

	return New(questions)
}
