package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/forum"
)

const (
	forumQuestionsTable = "forum_questions"
	forumAnswersTable   = "forum_answers"
)

type forumQuestionRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Body         string    `db:"body"`
	Category     string    `db:"category"`
	AuthorID     string    `db:"author_id"`
	Status       string    `db:"status"`
	AnswersCount int       `db:"answers_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r forumQuestionRow) toQuestion() forum.Question {
	return forum.Question{
		ID:           r.ID,
		Title:        r.Title,
		Body:         r.Body,
		Category:     r.Category,
		AuthorID:     r.AuthorID,
		Status:       r.Status,
		AnswersCount: r.AnswersCount,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type forumAnswerRow struct {
	ID         string    `db:"id"`
	QuestionID string    `db:"question_id"`
	Body       string    `db:"body"`
	AuthorID   string    `db:"author_id"`
	IsAccepted bool      `db:"is_accepted"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r forumAnswerRow) toAnswer() forum.Answer {
	return forum.Answer{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		Body:       r.Body,
		AuthorID:   r.AuthorID,
		IsAccepted: r.IsAccepted,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type forumRepository struct {
	db *sqlx.DB
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *sqlx.DB) forum.Repository {
	return &forumRepository{db: db}
}

func questionMap(q forum.Question) map[string]interface{} {
	return map[string]interface{}{
		"id":            q.ID,
		"title":         q.Title,
		"body":          q.Body,
		"category":      q.Category,
		"author_id":     q.AuthorID,
		"status":        q.Status,
		"answers_count": q.AnswersCount,
		"created_at":    q.CreatedAt.UTC(),
		"updated_at":    q.UpdatedAt.UTC(),
	}
}

func (repo *forumRepository) CreateQuestion(ctx context.Context, q forum.Question) (forum.Question, error) {
	q.ID = uuid.New().String()
	if err := insert(ctx, repo.db, forumQuestionsTable, questionMap(q)); err != nil {
		return forum.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo *forumRepository) GetQuestion(ctx context.Context, id string) (forum.Question, error) {
	if !isUUID(id) {
		return forum.Question{}, forum.ErrNotFound
	}
	var r forumQuestionRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(forumQuestionsTable).Where(sq.Eq{"id": id})); err != nil {
		return forum.Question{}, trapNoRowsErr(err, forum.ErrNotFound, "finding question")
	}
	return r.toQuestion(), nil
}

func (repo *forumRepository) QueryQuestions(ctx context.Context, filter *forum.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]forum.Question, error) {
	b := psql.Select("*").From(forumQuestionsTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "title", "body"))
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if filter.AuthorID != "" {
			if !isUUID(filter.AuthorID) {
				return []forum.Question{}, nil
			}
			b = b.Where(sq.Eq{"author_id": filter.AuthorID})
		}
	}

	var rows []forumQuestionRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qs := make([]forum.Question, 0, len(rows))
	for _, r := range rows {
		qs = append(qs, r.toQuestion())
	}
	return qs, nil
}

// questionStatusErr tells a missing question from a closed one after a guarded update matched nothing.
func questionStatusErr(ctx context.Context, exec sqlx.QueryerContext, id string) error {
	var status string
	if err := selectOne(ctx, exec, &status, psql.Select("status").From(forumQuestionsTable).Where(sq.Eq{"id": id})); err != nil {
		return trapNoRowsErr(err, forum.ErrNotFound, "finding question")
	}
	return forum.ErrClosed
}

func (repo *forumRepository) CloseQuestion(ctx context.Context, id string, at time.Time) (forum.Question, error) {
	if !isUUID(id) {
		return forum.Question{}, forum.ErrNotFound
	}
	b := psql.Update(forumQuestionsTable).
		Set("status", forum.StatusClosed).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"status": forum.StatusClosed}).
		Suffix("RETURNING *")
	var r forumQuestionRow
	if err := selectOne(ctx, repo.db, &r, b); err != nil {
		if err == sql.ErrNoRows {
			return forum.Question{}, questionStatusErr(ctx, repo.db, id)
		}
		return forum.Question{}, trapNoRowsErr(err, forum.ErrNotFound, "closing question")
	}
	return r.toQuestion(), nil
}

func (repo *forumRepository) DeleteQuestionsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, forumQuestionsTable, ids), "deleting questions")
}

func (repo *forumRepository) AddAnswer(ctx context.Context, a forum.Answer) (forum.Answer, error) {
	if !isUUID(a.QuestionID) {
		return forum.Answer{}, forum.ErrNotFound
	}
	a.ID = uuid.New().String()
	a.IsAccepted = false
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		bump := psql.Update(forumQuestionsTable).
			Set("answers_count", sq.Expr("answers_count + 1")).
			Set("status", sq.Expr("CASE WHEN status = ? THEN ? ELSE status END", forum.StatusOpen, forum.StatusAnswered)).
			Set("updated_at", a.CreatedAt.UTC()).
			Where(sq.Eq{"id": a.QuestionID}).
			Where(sq.NotEq{"status": forum.StatusClosed})
		n, err := execute(ctx, tx, bump)
		if err != nil {
			return errors.Wrap(err, "updating question")
		}
		if n == 0 {
			return questionStatusErr(ctx, tx, a.QuestionID)
		}
		err = insert(ctx, tx, forumAnswersTable, map[string]interface{}{
			"id":          a.ID,
			"question_id": a.QuestionID,
			"body":        a.Body,
			"author_id":   a.AuthorID,
			"is_accepted": a.IsAccepted,
			"created_at":  a.CreatedAt.UTC(),
			"updated_at":  a.UpdatedAt.UTC(),
		})
		return errors.Wrap(err, "inserting answer")
	})
	if err != nil {
		return forum.Answer{}, err
	}
	return a, nil
}

func (repo *forumRepository) ListAnswers(ctx context.Context, questionID string) ([]forum.Answer, error) {
	if !isUUID(questionID) {
		return []forum.Answer{}, nil
	}
	var rows []forumAnswerRow
	b := psql.Select("*").From(forumAnswersTable).
		Where(sq.Eq{"question_id": questionID}).
		OrderBy("is_accepted DESC", "created_at ASC")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "listing answers")
	}
	answers := make([]forum.Answer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, r.toAnswer())
	}
	return answers, nil
}

func (repo *forumRepository) AcceptAnswer(ctx context.Context, questionID, answerID string) (forum.Answer, error) {
	if !isUUID(questionID) || !isUUID(answerID) {
		return forum.Answer{}, forum.ErrAnswerNotFound
	}
	var r forumAnswerRow
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		b := psql.Select("*").From(forumAnswersTable).
			Where(sq.Eq{"id": answerID, "question_id": questionID}).
			Suffix("FOR UPDATE")
		if err := selectOne(ctx, tx, &r, b); err != nil {
			return trapNoRowsErr(err, forum.ErrAnswerNotFound, "finding answer")
		}
		// unaccept first so the partial unique index never sees two accepted answers
		now := core.NowFunc()
		unaccept := psql.Update(forumAnswersTable).
			Set("is_accepted", false).
			Set("updated_at", now).
			Where(sq.Eq{"question_id": questionID, "is_accepted": true}).
			Where(sq.NotEq{"id": answerID})
		if _, err := execute(ctx, tx, unaccept); err != nil {
			return errors.Wrap(err, "unaccepting answers")
		}
		accept := psql.Update(forumAnswersTable).
			Set("is_accepted", true).
			Set("updated_at", now).
			Where(sq.Eq{"id": answerID})
		if _, err := execute(ctx, tx, accept); err != nil {
			return errors.Wrap(err, "accepting answer")
		}
		r.IsAccepted = true
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return forum.Answer{}, err
	}
	return r.toAnswer(), nil
}
