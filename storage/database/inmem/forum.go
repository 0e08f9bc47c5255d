package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/forum"
)

// forumRepository locks questions before answers.
type forumRepository struct {
	questions *table[forum.Question]
	answers   *table[forum.Answer]
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{questions: db.questions, answers: db.answers}
}

func (repo *forumRepository) CreateQuestion(_ context.Context, q forum.Question) (forum.Question, error) {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()

	q.ID = newID()
	q.Answers = nil
	repo.questions.insert(q.ID, q)
	return q, nil
}

func (repo *forumRepository) GetQuestion(_ context.Context, id string) (forum.Question, error) {
	repo.questions.mutex.RLock()
	defer repo.questions.mutex.RUnlock()

	if q, ok := repo.questions.get(id); ok {
		return q, nil
	}
	return forum.Question{}, forum.ErrNotFound
}

func compareQuestions(a, b forum.Question, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "category":
		return compareStrings(a.Category, b.Category)
	case "status":
		return compareStrings(a.Status, b.Status)
	case "answers_count":
		return compareInts(a.AnswersCount, b.AnswersCount)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func (repo *forumRepository) QueryQuestions(_ context.Context, filter *forum.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]forum.Question, error) {
	repo.questions.mutex.RLock()
	defer repo.questions.mutex.RUnlock()

	qs := make([]forum.Question, 0)
	for _, q := range repo.questions.all() {
		if filter != nil {
			switch {
			case filter.Search != "" && !matchesAny(filter.Search, q.Title, q.Body),
				filter.Category != "" && q.Category != filter.Category,
				filter.Status != "" && q.Status != filter.Status,
				filter.AuthorID != "" && q.AuthorID != filter.AuthorID:
				continue
			}
		}
		qs = append(qs, q)
	}
	sortRows(qs, ordering, compareQuestions)
	return pageRows(qs, page), nil
}

func (repo *forumRepository) CloseQuestion(_ context.Context, id string, at time.Time) (forum.Question, error) {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()

	q, ok := repo.questions.get(id)
	if !ok {
		return forum.Question{}, forum.ErrNotFound
	}
	if q.Status == forum.StatusClosed {
		return forum.Question{}, forum.ErrClosed
	}
	q.Status = forum.StatusClosed
	q.UpdatedAt = at
	repo.questions.put(id, q)
	return q, nil
}

func (repo *forumRepository) DeleteQuestionsByID(_ context.Context, ids ...string) error {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()
	repo.answers.mutex.Lock()
	defer repo.answers.mutex.Unlock()

	repo.questions.remove(ids...)
	for _, a := range repo.answers.all() {
		if core.StringInSlice(a.QuestionID, ids) {
			repo.answers.remove(a.ID)
		}
	}
	return nil
}

func (repo *forumRepository) AddAnswer(_ context.Context, a forum.Answer) (forum.Answer, error) {
	repo.questions.mutex.Lock()
	defer repo.questions.mutex.Unlock()
	repo.answers.mutex.Lock()
	defer repo.answers.mutex.Unlock()

	q, ok := repo.questions.get(a.QuestionID)
	if !ok {
		return forum.Answer{}, forum.ErrNotFound
	}
	if q.Status == forum.StatusClosed {
		return forum.Answer{}, forum.ErrClosed
	}
	q.AnswersCount++
	if q.Status == forum.StatusOpen {
		q.Status = forum.StatusAnswered
	}
	q.UpdatedAt = a.CreatedAt
	repo.questions.put(q.ID, q)

	a.ID = newID()
	a.IsAccepted = false
	repo.answers.insert(a.ID, a)
	return a, nil
}

func (repo *forumRepository) ListAnswers(_ context.Context, questionID string) ([]forum.Answer, error) {
	repo.answers.mutex.RLock()
	defer repo.answers.mutex.RUnlock()

	answers := make([]forum.Answer, 0)
	for _, a := range repo.answers.all() {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].IsAccepted != answers[j].IsAccepted {
			return answers[i].IsAccepted
		}
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
	return answers, nil
}

func (repo *forumRepository) AcceptAnswer(_ context.Context, questionID, answerID string) (forum.Answer, error) {
	repo.answers.mutex.Lock()
	defer repo.answers.mutex.Unlock()

	accepted, ok := repo.answers.get(answerID)
	if !ok || accepted.QuestionID != questionID {
		return forum.Answer{}, forum.ErrAnswerNotFound
	}
	for _, a := range repo.answers.all() {
		if a.QuestionID == questionID && a.IsAccepted && a.ID != answerID {
			a.IsAccepted = false
			repo.answers.put(a.ID, a)
		}
	}
	accepted.IsAccepted = true
	repo.answers.put(accepted.ID, accepted)
	return accepted, nil
}
