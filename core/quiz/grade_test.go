package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func testQuiz() Quiz {
	return Quiz{
		ID:          "qz",
		IsPublished: true,
		Questions: []Question{
			{ID: "q1", Options: []string{"a", "b"}, CorrectOption: intPtr(0), Points: 1, Explanation: "first"},
			{ID: "q2", Options: []string{"a", "b", "c"}, CorrectOption: intPtr(2), Points: 2},
			{ID: "q3", Options: []string{"a", "b"}, CorrectOption: intPtr(1), Points: 3},
		},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name       string
		answers    map[string]int
		score      int
		correct    int
		percentage float64
	}{
		{name: "all right", answers: map[string]int{"q1": 0, "q2": 2, "q3": 1}, score: 6, correct: 3, percentage: 100},
		{name: "none", answers: nil, score: 0, correct: 0, percentage: 0},
		{name: "one of three", answers: map[string]int{"q1": 0, "q2": 1, "q3": 0}, score: 1, correct: 1, percentage: 16.67},
		{name: "missing counts as wrong", answers: map[string]int{"q2": 2}, score: 2, correct: 1, percentage: 33.33},
		{name: "unknown ids ignored", answers: map[string]int{"q3": 1, "nope": 0}, score: 3, correct: 1, percentage: 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Grade(testQuiz(), tc.answers)
			assert.Equal(t, "qz", res.QuizID)
			assert.Equal(t, 6, res.MaxScore)
			assert.Equal(t, 3, res.Total)
			assert.Equal(t, tc.score, res.Score)
			assert.Equal(t, tc.correct, res.Correct)
			assert.Equal(t, tc.percentage, res.Percentage)
			assert.Len(t, res.Questions, 3)
		})
	}
}

func TestGradeDetails(t *testing.T) {
	res := Grade(testQuiz(), map[string]int{"q1": 1})
	require.Len(t, res.Questions, 3)

	q1 := res.Questions[0]
	assert.False(t, q1.IsCorrect)
	require.NotNil(t, q1.Answer)
	assert.Equal(t, 1, *q1.Answer)
	assert.Equal(t, 0, q1.CorrectOption)
	assert.Equal(t, "first", q1.Explanation)

	assert.Nil(t, res.Questions[1].Answer)
	assert.Zero(t, res.Questions[1].Points)
}

func TestGradeEmptyQuiz(t *testing.T) {
	res := Grade(Quiz{ID: "empty"}, map[string]int{"x": 1})
	assert.Zero(t, res.MaxScore)
	assert.Zero(t, res.Percentage)
	assert.Empty(t, res.Questions)
}

func TestPublicHidesAnswers(t *testing.T) {
	q := testQuiz()
	pub := q.Public()
	for _, qu := range pub.Questions {
		assert.Nil(t, qu.CorrectOption)
		assert.Empty(t, qu.Explanation)
	}
	// the input quiz is untouched
	assert.NotNil(t, q.Questions[0].CorrectOption)
	assert.Equal(t, "first", q.Questions[0].Explanation)
}
