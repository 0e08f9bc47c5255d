package inmemdb

import (
	"context"
	"sort"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/quiz"
)

type quizRepository struct {
	db *table[quiz.Quiz]
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db.quizzes}
}

// copyQuestions deep copies qs, ordered by position.
func copyQuestions(qs []quiz.Question) []quiz.Question {
	cp := make([]quiz.Question, 0, len(qs))
	for _, qu := range qs {
		qu.Options = copyStrings(qu.Options)
		if qu.CorrectOption != nil {
			v := *qu.CorrectOption
			qu.CorrectOption = &v
		}
		cp = append(cp, qu)
	}
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Position < cp[j].Position })
	return cp
}

func (repo *quizRepository) CreateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q.ID = newID()
	for i := range q.Questions {
		q.Questions[i].ID = newID()
		q.Questions[i].QuizID = q.ID
	}
	q.Questions = copyQuestions(q.Questions)
	repo.db.insert(q.ID, q)

	q.Questions = copyQuestions(q.Questions)
	return q, nil
}

func compareQuizzes(a, b quiz.Quiz, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "category":
		return compareStrings(a.Category, b.Category)
	case "difficulty":
		return compareStrings(a.Difficulty, b.Difficulty)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func (repo *quizRepository) QueryQuizzes(_ context.Context, filter *quiz.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]quiz.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	quizzes := make([]quiz.Quiz, 0)
	for _, q := range repo.db.all() {
		if filter != nil {
			switch {
			case filter.Search != "" && !matchesAny(filter.Search, q.Title, q.Description),
				filter.Category != "" && q.Category != filter.Category,
				filter.Difficulty != "" && q.Difficulty != filter.Difficulty,
				filter.Published != nil && q.IsPublished != *filter.Published:
				continue
			}
		}
		q.Questions = nil
		quizzes = append(quizzes, q)
	}
	sortRows(quizzes, ordering, compareQuizzes)
	return pageRows(quizzes, page), nil
}

func (repo *quizRepository) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	q, ok := repo.db.get(id)
	if !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	q.Questions = copyQuestions(q.Questions)
	return q, nil
}

func (repo *quizRepository) UpdateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.get(q.ID)
	if !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	q.Questions = orig.Questions
	repo.db.put(q.ID, q)

	q.Questions = copyQuestions(q.Questions)
	return q, nil
}

func (repo *quizRepository) DeleteQuizzesByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}

func (repo *quizRepository) CreateQuestion(_ context.Context, qu quiz.Question) (quiz.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q, ok := repo.db.get(qu.QuizID)
	if !ok {
		return quiz.Question{}, quiz.ErrNotFound
	}
	qu.ID = newID()
	q.Questions = copyQuestions(append(q.Questions, qu))
	repo.db.put(q.ID, q)
	return qu, nil
}

func (repo *quizRepository) UpdateQuestion(_ context.Context, qu quiz.Question) (quiz.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q, ok := repo.db.get(qu.QuizID)
	if !ok {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	qs := copyQuestions(q.Questions)
	for i := range qs {
		if qs[i].ID == qu.ID {
			qs[i] = qu
			q.Questions = copyQuestions(qs)
			repo.db.put(q.ID, q)
			return qu, nil
		}
	}
	return quiz.Question{}, quiz.ErrQuestionNotFound
}

func (repo *quizRepository) DeleteQuestion(_ context.Context, quizID, questionID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q, ok := repo.db.get(quizID)
	if !ok {
		return quiz.ErrQuestionNotFound
	}
	qs := make([]quiz.Question, 0, len(q.Questions))
	for _, qu := range q.Questions {
		if qu.ID != questionID {
			qs = append(qs, qu)
		}
	}
	if len(qs) == len(q.Questions) {
		return quiz.ErrQuestionNotFound
	}
	q.Questions = qs
	repo.db.put(q.ID, q)
	return nil
}
