package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/quiz"
)

const (
	quizzesTable   = "quizzes"
	questionsTable = "quiz_questions"
)

type quizRow struct {
	ID               string      `db:"id"`
	Title            string      `db:"title"`
	Description      string      `db:"description"`
	Category         string      `db:"category"`
	Difficulty       string      `db:"difficulty"`
	TimeLimitMinutes int         `db:"time_limit_minutes"`
	IsPublished      bool        `db:"is_published"`
	CreatedBy        null.String `db:"created_by"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (r quizRow) toQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		TimeLimitMinutes: r.TimeLimitMinutes,
		IsPublished:      r.IsPublished,
		CreatedBy:        r.CreatedBy.String,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func quizValues(q quiz.Quiz) map[string]interface{} {
	return map[string]interface{}{
		"id":                 q.ID,
		"title":              q.Title,
		"description":        q.Description,
		"category":           q.Category,
		"difficulty":         q.Difficulty,
		"time_limit_minutes": q.TimeLimitMinutes,
		"is_published":       q.IsPublished,
		"created_by":         nullableID(q.CreatedBy),
		"created_at":         q.CreatedAt.UTC(),
		"updated_at":         q.UpdatedAt.UTC(),
	}
}

type questionRow struct {
	ID            string         `db:"id"`
	QuizID        string         `db:"quiz_id"`
	Text          string         `db:"text"`
	Options       pq.StringArray `db:"options"`
	CorrectOption int            `db:"correct_option"`
	Explanation   string         `db:"explanation"`
	Points        int            `db:"points"`
	Position      int            `db:"position"`
}

func (r questionRow) toQuestion() quiz.Question {
	correct := r.CorrectOption
	return quiz.Question{
		ID:            r.ID,
		QuizID:        r.QuizID,
		Text:          r.Text,
		Options:       []string(r.Options),
		CorrectOption: &correct,
		Explanation:   r.Explanation,
		Points:        r.Points,
		Position:      r.Position,
	}
}

func questionValues(qu quiz.Question) map[string]interface{} {
	var correct int
	if qu.CorrectOption != nil {
		correct = *qu.CorrectOption
	}
	return map[string]interface{}{
		"id":             qu.ID,
		"quiz_id":        qu.QuizID,
		"text":           qu.Text,
		"options":        pq.StringArray(qu.Options),
		"correct_option": correct,
		"explanation":    qu.Explanation,
		"points":         qu.Points,
		"position":       qu.Position,
	}
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	q.ID = uuid.New().String()
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := insert(ctx, tx, quizzesTable, quizValues(q)); err != nil {
			return errors.Wrap(err, "inserting quiz")
		}
		for i := range q.Questions {
			q.Questions[i].ID = uuid.New().String()
			q.Questions[i].QuizID = q.ID
			if err := insert(ctx, tx, questionsTable, questionValues(q.Questions[i])); err != nil {
				return errors.Wrap(err, "inserting question")
			}
		}
		return nil
	})
	if err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

func (repo *quizRepository) QueryQuizzes(ctx context.Context, filter *quiz.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]quiz.Quiz, error) {
	b := psql.Select("*").From(quizzesTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "title", "description"))
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.Difficulty != "" {
			b = b.Where(sq.Eq{"difficulty": filter.Difficulty})
		}
		if filter.Published != nil {
			b = b.Where(sq.Eq{"is_published": *filter.Published})
		}
	}

	var rows []quizRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, r.toQuiz())
	}
	return quizzes, nil
}

func (repo *quizRepository) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	if !isUUID(id) {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	var r quizRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(quizzesTable).Where(sq.Eq{"id": id})); err != nil {
		return quiz.Quiz{}, trapNoRowsErr(err, quiz.ErrNotFound, "finding quiz")
	}
	q := r.toQuiz()

	var rows []questionRow
	b := psql.Select("*").From(questionsTable).Where(sq.Eq{"quiz_id": id}).OrderBy("position", "id")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "querying questions")
	}
	q.Questions = make([]quiz.Question, 0, len(rows))
	for _, qr := range rows {
		q.Questions = append(q.Questions, qr.toQuestion())
	}
	return q, nil
}

func (repo *quizRepository) UpdateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	found, err := update(ctx, repo.db, quizzesTable, q.ID, quizValues(q))
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	if !found {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	return q, nil
}

func (repo *quizRepository) DeleteQuizzesByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, quizzesTable, ids), "deleting quizzes")
}

func (repo *quizRepository) CreateQuestion(ctx context.Context, qu quiz.Question) (quiz.Question, error) {
	qu.ID = uuid.New().String()
	if err := insert(ctx, repo.db, questionsTable, questionValues(qu)); err != nil {
		return quiz.Question{}, errors.Wrap(err, "inserting question")
	}
	return qu, nil
}

func (repo *quizRepository) UpdateQuestion(ctx context.Context, qu quiz.Question) (quiz.Question, error) {
	if !isUUID(qu.ID) || !isUUID(qu.QuizID) {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	vals := questionValues(qu)
	delete(vals, "id")
	n, err := execute(ctx, repo.db, psql.Update(questionsTable).SetMap(vals).Where(sq.Eq{"id": qu.ID, "quiz_id": qu.QuizID}))
	if err != nil {
		return quiz.Question{}, errors.Wrap(err, "updating question")
	}
	if n == 0 {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	return qu, nil
}

func (repo *quizRepository) DeleteQuestion(ctx context.Context, quizID, questionID string) error {
	if !isUUID(quizID) || !isUUID(questionID) {
		return quiz.ErrQuestionNotFound
	}
	n, err := execute(ctx, repo.db, psql.Delete(questionsTable).Where(sq.Eq{"id": questionID, "quiz_id": quizID}))
	if err != nil {
		return errors.Wrap(err, "deleting question")
	}
	if n == 0 {
		return quiz.ErrQuestionNotFound
	}
	return nil
}
