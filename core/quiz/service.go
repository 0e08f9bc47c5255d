package quiz

import (
	"context"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/user"
)

var (
	ErrNotFound         = core.NewNotFoundError("quiz")
	ErrQuestionNotFound = core.NewNotFoundError("question")

	optionIndexTag  = "optionindex"
	optionIndexText = "correct_option must be the index of one of the options"
)

type (
	Repository interface {
		// CreateQuiz saves q and its questions.
		CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		// QueryQuizzes returns quizzes without their questions.
		// QueryFilter.Search does a case-insensitive match on one of title or description.
		QueryQuizzes(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Quiz, error)
		// GetQuiz returns the quiz with its questions ordered by position.
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		// UpdateQuiz saves the quiz fields. Questions are left untouched.
		UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		DeleteQuizzesByID(ctx context.Context, ids ...string) error

		CreateQuestion(ctx context.Context, qu Question) (Question, error)
		UpdateQuestion(ctx context.Context, qu Question) (Question, error)
		DeleteQuestion(ctx context.Context, quizID, questionID string) error
	}

	Service interface {
		Create(ctx context.Context, nq NewQuiz, by user.User) (Quiz, error)
		// Get returns the quiz as viewer (nil for anonymous) may see it: answers are hidden from non admins.
		Get(ctx context.Context, id string, viewer *user.User) (Quiz, error)
		Query(ctx context.Context, filter *QueryFilter, viewer *user.User, ordering []core.DBOrdering, page core.Page) ([]Quiz, error)
		Update(ctx context.Context, id string, uq UpdateQuiz) (Quiz, error)
		Delete(ctx context.Context, ids ...string) error

		AddQuestion(ctx context.Context, quizID string, nq NewQuestion) (Question, error)
		UpdateQuestion(ctx context.Context, quizID, questionID string, nq NewQuestion) (Question, error)
		DeleteQuestion(ctx context.Context, quizID, questionID string) error

		// Submit grades answers and records the attempt as a quiz_completed activity.
		Submit(ctx context.Context, id string, answers map[string]int, by user.User) (Result, error)
	}

	service struct {
		repo        Repository
		activitySvc activity.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, activitySvc activity.Service) Service {
	return &service{repo: repo, activitySvc: activitySvc}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterOneOf(validate, translator, "difficulty", "difficulty must be one of easy, medium, hard", Difficulties)

	validate.RegisterStructValidation(newQuestionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, optionIndexTag, optionIndexText)
}

func newQuestionStructValidation(sl validator.StructLevel) {
	if nq, ok := sl.Current().Interface().(NewQuestion); ok {
		if nq.CorrectOption >= len(nq.Options) {
			sl.ReportError(nq.CorrectOption, "correct_option", "CorrectOption", optionIndexTag, "")
		}
	}
}

func toQuestion(quizID string, nq NewQuestion) Question {
	correct := nq.CorrectOption
	return Question{
		QuizID:        quizID,
		Text:          nq.Text,
		Options:       nq.Options,
		CorrectOption: &correct,
		Explanation:   nq.Explanation,
		Points:        nq.Points,
		Position:      nq.Position,
	}
}

func (svc *service) Create(ctx context.Context, nq NewQuiz, by user.User) (Quiz, error) {
	now := core.NowFunc()
	q := Quiz{
		Title:            nq.Title,
		Description:      nq.Description,
		Category:         nq.Category,
		Difficulty:       nq.Difficulty,
		TimeLimitMinutes: nq.TimeLimitMinutes,
		IsPublished:      nq.IsPublished,
		CreatedBy:        by.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
		Questions:        make([]Question, 0, len(nq.Questions)),
	}
	for i, qn := range nq.Questions {
		qu := toQuestion("", qn)
		if qu.Position == 0 {
			qu.Position = i + 1
		}
		q.Questions = append(q.Questions, qu)
	}
	sort.SliceStable(q.Questions, func(i, j int) bool { return q.Questions[i].Position < q.Questions[j].Position })
	return svc.repo.CreateQuiz(ctx, q)
}

// visible loads a quiz, hiding unpublished ones from non admins.
func (svc *service) visible(ctx context.Context, id string, viewer *user.User) (Quiz, error) {
	q, err := svc.repo.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if !q.IsPublished && (viewer == nil || !viewer.IsAdmin()) {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (svc *service) Get(ctx context.Context, id string, viewer *user.User) (Quiz, error) {
	q, err := svc.visible(ctx, id, viewer)
	if err != nil {
		return Quiz{}, err
	}
	if viewer == nil || !viewer.IsAdmin() {
		return q.Public(), nil
	}
	return q, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, viewer *user.User, ordering []core.DBOrdering, page core.Page) ([]Quiz, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	if viewer == nil || !viewer.IsAdmin() {
		filter.Published = core.BoolPtr(true)
	}
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryQuizzes(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, id string, uq UpdateQuiz) (Quiz, error) {
	q, err := svc.repo.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	uq.apply(&q)
	q.UpdatedAt = core.NowFunc()
	if _, err := svc.repo.UpdateQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return svc.repo.GetQuiz(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteQuizzesByID(ctx, ids...)
}

func (svc *service) AddQuestion(ctx context.Context, quizID string, nq NewQuestion) (Question, error) {
	q, err := svc.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return Question{}, err
	}
	qu := toQuestion(q.ID, nq)
	if qu.Position == 0 {
		qu.Position = len(q.Questions) + 1
	}
	return svc.repo.CreateQuestion(ctx, qu)
}

func (svc *service) UpdateQuestion(ctx context.Context, quizID, questionID string, nq NewQuestion) (Question, error) {
	q, err := svc.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return Question{}, err
	}
	var orig *Question
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			orig = &q.Questions[i]
			break
		}
	}
	if orig == nil {
		return Question{}, ErrQuestionNotFound
	}
	qu := toQuestion(q.ID, nq)
	qu.ID = orig.ID
	if qu.Position == 0 {
		qu.Position = orig.Position
	}
	return svc.repo.UpdateQuestion(ctx, qu)
}

func (svc *service) DeleteQuestion(ctx context.Context, quizID, questionID string) error {
	return svc.repo.DeleteQuestion(ctx, quizID, questionID)
}

func (svc *service) Submit(ctx context.Context, id string, answers map[string]int, by user.User) (Result, error) {
	q, err := svc.visible(ctx, id, &by)
	if err != nil {
		return Result{}, err
	}
	res := Grade(q, answers)

	meta := map[string]interface{}{
		"score":      res.Score,
		"max_score":  res.MaxScore,
		"percentage": res.Percentage,
		"correct":    res.Correct,
		"total":      res.Total,
	}
	if _, err := svc.activitySvc.Record(ctx, by.ID, activity.TypeQuizCompleted, activity.TargetQuiz, q.ID, meta); err != nil {
		return Result{}, errors.Wrap(err, "recording quiz attempt")
	}
	return res, nil
}
