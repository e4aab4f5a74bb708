package quiz

import "math"

// Score is the result of grading a quiz.
type Score struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}

// Grade scores answers, keyed by question index, against questions.
// Unanswered questions count as wrong.
func Grade(questions []Question, answers map[int]int) Score {
	s := Score{Total: len(questions)}
	for i, q := range questions {
		if sel, ok := answers[i]; ok && sel == q.CorrectIndex {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	s.Passed = s.Total > 0 && s.Percent >= PassPercent
	return s
}
