package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ilmhub/ilm/core"
)

// Difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Quiz is a row of quizzes with its questions ordered by position.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Difficulty       string     `json:"difficulty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"` // 0: no limit
	IsPublished      bool       `json:"is_published"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Questions        []Question `json:"questions"`
}

// MaxScore is the sum of the points of every question.
func (q Quiz) MaxScore() int {
	var max int
	for _, qu := range q.Questions {
		max += qu.Points
	}
	return max
}

// Public returns a copy of the quiz without the answers.
func (q Quiz) Public() Quiz {
	pub := q
	pub.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.CorrectOption = nil
		qu.Explanation = ""
		pub.Questions[i] = qu
	}
	return pub
}

// Question is a row of quiz_questions.
type Question struct {
	ID      string   `json:"id"`
	QuizID  string   `json:"quiz_id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	// CorrectOption is the index of the right option. nil in public views.
	CorrectOption *int   `json:"correct_option,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	Points        int    `json:"points"`
	Position      int    `json:"position"`
}

type NewQuiz struct {
	Title            string        `json:"title" validate:"required,notblank,max=200"`
	Description      string        `json:"description" validate:"max=2000"`
	Category         string        `json:"category" validate:"max=100"`
	Difficulty       string        `json:"difficulty" validate:"required,difficulty"`
	TimeLimitMinutes int           `json:"time_limit_minutes" validate:"min=0,max=600"`
	IsPublished      bool          `json:"is_published"`
	Questions        []NewQuestion `json:"questions" validate:"max=100,dive"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	nq.Category = core.CleanString(nq.Category, true /* lower */)
	nq.Difficulty = core.CleanString(nq.Difficulty, true /* lower */)
	for i := range nq.Questions {
		nq.Questions[i].clean()
	}
	return validate.Struct(nq)
}

type UpdateQuiz struct {
	Title            *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description      *string `json:"description" validate:"omitempty,max=2000"`
	Category         *string `json:"category" validate:"omitempty,max=100"`
	Difficulty       *string `json:"difficulty" validate:"omitempty,difficulty"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,min=0,max=600"`
	IsPublished      *bool   `json:"is_published"`
}

func (uq *UpdateQuiz) Validate(validate *validator.Validate) error {
	if uq.Difficulty != nil {
		d := core.CleanString(*uq.Difficulty, true /* lower */)
		uq.Difficulty = &d
	}
	return validate.Struct(uq)
}

func (uq UpdateQuiz) apply(q *Quiz) {
	if uq.Title != nil {
		q.Title = core.CleanString(*uq.Title)
	}
	if uq.Description != nil {
		q.Description = core.CleanString(*uq.Description)
	}
	if uq.Category != nil {
		q.Category = core.CleanString(*uq.Category, true /* lower */)
	}
	if uq.Difficulty != nil {
		q.Difficulty = *uq.Difficulty
	}
	if uq.TimeLimitMinutes != nil {
		q.TimeLimitMinutes = *uq.TimeLimitMinutes
	}
	if uq.IsPublished != nil {
		q.IsPublished = *uq.IsPublished
	}
}

// NewQuestion is also used to replace a question as a whole.
type NewQuestion struct {
	Text          string   `json:"text" validate:"required,notblank,max=2000"`
	Options       []string `json:"options" validate:"min=2,max=6,dive,required,notblank,max=500"`
	CorrectOption int      `json:"correct_option" validate:"min=0"`
	Explanation   string   `json:"explanation" validate:"max=2000"`
	Points        int      `json:"points" validate:"min=1,max=100"`
	Position      int      `json:"position" validate:"min=0"`
}

func (nq *NewQuestion) clean() {
	nq.Text = core.CleanString(nq.Text)
	nq.Explanation = core.CleanString(nq.Explanation)
	for i, opt := range nq.Options {
		nq.Options[i] = core.CleanString(opt)
	}
	if nq.Points == 0 {
		nq.Points = 1
	}
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.clean()
	return validate.Struct(nq)
}

type QueryFilter struct {
	Search     string
	Category   string
	Difficulty string
	// Published nil means both.
	Published *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Difficulty = core.CleanString(qf.Difficulty, true /* lower */)
}

var OrderingFields = []string{"title", "category", "difficulty", "created_at"}
