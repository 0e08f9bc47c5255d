package quiz

import "math"

// QuestionResult tells whether one question was answered right.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Answer        *int   `json:"answer"` // nil: not answered
	CorrectOption int    `json:"correct_option"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
	Explanation   string `json:"explanation"`
}

// Result is the outcome of a graded attempt.
type Result struct {
	QuizID     string           `json:"quiz_id"`
	Score      int              `json:"score"`
	MaxScore   int              `json:"max_score"`
	Percentage float64          `json:"percentage"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Questions  []QuestionResult `json:"questions"`
}

// Grade scores answers (question id -> option index) against q.
// Missing answers count as wrong. Answers to unknown questions are ignored.
func Grade(q Quiz, answers map[string]int) Result {
	res := Result{
		QuizID:    q.ID,
		MaxScore:  q.MaxScore(),
		Total:     len(q.Questions),
		Questions: make([]QuestionResult, 0, len(q.Questions)),
	}
	for _, qu := range q.Questions {
		qr := QuestionResult{QuestionID: qu.ID, Explanation: qu.Explanation}
		if qu.CorrectOption != nil {
			qr.CorrectOption = *qu.CorrectOption
		}
		if ans, ok := answers[qu.ID]; ok {
			ans := ans
			qr.Answer = &ans
			if qu.CorrectOption != nil && ans == *qu.CorrectOption {
				qr.IsCorrect = true
				qr.Points = qu.Points
				res.Score += qu.Points
				res.Correct++
			}
		}
		res.Questions = append(res.Questions, qr)
	}
	if res.MaxScore > 0 {
		res.Percentage = math.Round(float64(res.Score)*10000/float64(res.MaxScore)) / 100
	}
	return res
}
