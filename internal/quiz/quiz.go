// Package quiz holds the built-in question bank and answer scoring.
package quiz

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed quiz.yaml
var quizYAML []byte

// Question is a single multiple-choice question.
type Question struct {
	ID      int      `yaml:"id" json:"id"`
	Text    string   `yaml:"text" json:"text"`
	Choices []string `yaml:"choices" json:"choices"`
	Answer  string   `yaml:"answer" json:"-"`
}

// Quiz is an ordered set of questions.
type Quiz struct {
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Load parses the embedded question bank.
func Load() (*Quiz, error) {
	var q Quiz
	if err := yaml.Unmarshal(quizYAML, &q); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}
	if len(q.Questions) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	seen := make(map[int]bool, len(q.Questions))
	for _, question := range q.Questions {
		if seen[question.ID] {
			return nil, fmt.Errorf("duplicate question id %d", question.ID)
		}
		seen[question.ID] = true
	}
	return &q, nil
}

// Score counts correct answers. Unanswered questions and answers to
// unknown question ids score zero.
func (q *Quiz) Score(answers map[int]string) int {
	correct := 0
	for _, question := range q.Questions {
		if answer, ok := answers[question.ID]; ok && answer == question.Answer {
			correct++
		}
	}
	return correct
}

// Len returns the number of questions.
func (q *Quiz) Len() int {
	return len(q.Questions)
}
