package forum

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

// Question statuses
const (
	StatusOpen     = "open"
	StatusAnswered = "answered"
	StatusClosed   = "closed"
)

var (
	Statuses = []string{StatusOpen, StatusAnswered, StatusClosed}

	ErrNotFound       = core.NewNotFoundError("question")
	ErrAnswerNotFound = core.NewNotFoundError("answer")
	ErrClosed         = errors.Wrap(core.ErrInvalidTransition, "question is closed")
)

// Question is a row of forum_questions.
type Question struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Category     string    `json:"category"`
	AuthorID     string    `json:"author_id"`
	Status       string    `json:"status"`
	AnswersCount int       `json:"answers_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Answers      []Answer  `json:"answers,omitempty"`
}

// Answer is a row of forum_answers.
type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Body       string    `json:"body"`
	AuthorID   string    `json:"author_id"`
	IsAccepted bool      `json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewQuestion struct {
	Title    string `json:"title" validate:"required,notblank,max=300"`
	Body     string `json:"body" validate:"required,notblank,max=20000"`
	Category string `json:"category" validate:"max=100"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Body = core.CleanString(nq.Body)
	nq.Category = core.CleanString(nq.Category, true /* lower */)
	return validate.Struct(nq)
}

type NewAnswer struct {
	Body string `json:"body" validate:"required,notblank,max=20000"`
}

func (na *NewAnswer) Validate(validate *validator.Validate) error {
	na.Body = core.CleanString(na.Body)
	return validate.Struct(na)
}

type QueryFilter struct {
	// Search does a case-insensitive match on title or body.
	Search   string
	Category string
	Status   string
	AuthorID string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var OrderingFields = []string{"title", "category", "status", "answers_count", "created_at", "updated_at"}

type (
	Repository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// GetQuestion returns the question without its answers.
		GetQuestion(ctx context.Context, id string) (Question, error)
		QueryQuestions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Question, error)
		// CloseQuestion closes an open or answered question. ErrClosed if it already is.
		CloseQuestion(ctx context.Context, id string, at time.Time) (Question, error)
		DeleteQuestionsByID(ctx context.Context, ids ...string) error

		// AddAnswer stores a and, atomically with it, bumps answers_count and moves an open question to answered.
		// It returns ErrClosed when the question is closed.
		AddAnswer(ctx context.Context, a Answer) (Answer, error)
		// ListAnswers returns the answers of a question, accepted first then oldest first.
		ListAnswers(ctx context.Context, questionID string) ([]Answer, error)
		// AcceptAnswer marks answerID as the only accepted answer of questionID.
		AcceptAnswer(ctx context.Context, questionID, answerID string) (Answer, error)
	}

	Service interface {
		Ask(ctx context.Context, nq NewQuestion, by user.User) (Question, error)
		// Get returns the question with its answers.
		Get(ctx context.Context, id string) (Question, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Question, error)
		Answer(ctx context.Context, questionID string, na NewAnswer, by user.User) (Answer, error)
		Accept(ctx context.Context, questionID, answerID string, by user.User) (Answer, error)
		Close(ctx context.Context, questionID string, by user.User) (Question, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Ask(ctx context.Context, nq NewQuestion, by user.User) (Question, error) {
	now := core.NowFunc()
	return svc.repo.CreateQuestion(ctx, Question{
		Title:     nq.Title,
		Body:      nq.Body,
		Category:  nq.Category,
		AuthorID:  by.ID,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Get(ctx context.Context, id string) (Question, error) {
	q, err := svc.repo.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	q.Answers, err = svc.repo.ListAnswers(ctx, id)
	if err != nil {
		return Question{}, errors.Wrap(err, "listing answers")
	}
	return q, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Question, error) {
	if filter != nil {
		filter.Clean()
	}
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryQuestions(ctx, filter, ordering, page)
}

func (svc *service) Answer(ctx context.Context, questionID string, na NewAnswer, by user.User) (Answer, error) {
	if !by.IsScholar() {
		return Answer{}, core.ErrForbidden
	}
	now := core.NowFunc()
	return svc.repo.AddAnswer(ctx, Answer{
		QuestionID: questionID,
		Body:       na.Body,
		AuthorID:   by.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func canManage(by user.User, q Question) bool {
	return q.AuthorID == by.ID || by.IsAdmin()
}

func (svc *service) Accept(ctx context.Context, questionID, answerID string, by user.User) (Answer, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Answer{}, err
	}
	if !canManage(by, q) {
		return Answer{}, core.ErrForbidden
	}
	return svc.repo.AcceptAnswer(ctx, q.ID, answerID)
}

func (svc *service) Close(ctx context.Context, questionID string, by user.User) (Question, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if !canManage(by, q) {
		return Question{}, core.ErrForbidden
	}
	return svc.repo.CloseQuestion(ctx, q.ID, core.NowFunc())
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteQuestionsByID(ctx, ids...)
}
