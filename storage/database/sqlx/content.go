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
	"github.com/ilmhub/ilm/core/content"
)

const contentTable = "content_items"

type contentRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Summary     string         `db:"summary"`
	Body        string         `db:"body"`
	ContentType string         `db:"content_type"`
	Category    string         `db:"category"`
	Tags        pq.StringArray `db:"tags"`
	Language    string         `db:"language"`
	MediaURL    string         `db:"media_url"`
	AuthorID    string         `db:"author_id"`
	Status      string         `db:"status"`
	ReviewNotes string         `db:"review_notes"`
	ReviewerID  null.String    `db:"reviewer_id"`
	ViewsCount  int            `db:"views_count"`
	PublishedAt null.Time      `db:"published_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r contentRow) toItem() content.Item {
	it := content.Item{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		Body:        r.Body,
		ContentType: r.ContentType,
		Category:    r.Category,
		Tags:        []string(r.Tags),
		Language:    r.Language,
		MediaURL:    r.MediaURL,
		AuthorID:    r.AuthorID,
		Status:      r.Status,
		ReviewNotes: r.ReviewNotes,
		ReviewerID:  r.ReviewerID,
		ViewsCount:  r.ViewsCount,
		PublishedAt: r.PublishedAt,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if it.PublishedAt.Valid {
		it.PublishedAt.Time = it.PublishedAt.Time.UTC()
	}
	return it
}

func contentValues(it content.Item) map[string]interface{} {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]interface{}{
		"id":           it.ID,
		"title":        it.Title,
		"summary":      it.Summary,
		"body":         it.Body,
		"content_type": it.ContentType,
		"category":     it.Category,
		"tags":         pq.StringArray(tags),
		"language":     it.Language,
		"media_url":    it.MediaURL,
		"author_id":    it.AuthorID,
		"status":       it.Status,
		"review_notes": it.ReviewNotes,
		"reviewer_id":  it.ReviewerID,
		"views_count":  it.ViewsCount,
		"published_at": it.PublishedAt,
		"created_at":   it.CreatedAt.UTC(),
		"updated_at":   it.UpdatedAt.UTC(),
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *sqlx.DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateItem(ctx context.Context, it content.Item) (content.Item, error) {
	it.ID = uuid.New().String()
	if err := insert(ctx, repo.db, contentTable, contentValues(it)); err != nil {
		return content.Item{}, errors.Wrap(err, "inserting content")
	}
	return it, nil
}

func (repo *contentRepository) QueryItems(ctx context.Context, filter *content.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]content.Item, error) {
	b := psql.Select("*").From(contentTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "title", "summary", "body"))
		}
		if filter.ContentType != "" {
			b = b.Where(sq.Eq{"content_type": filter.ContentType})
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.Tag != "" {
			b = b.Where(sq.Expr("? = ANY(tags)", filter.Tag))
		}
		if filter.Language != "" {
			b = b.Where(sq.Eq{"language": filter.Language})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if isUUID(filter.AuthorID) {
			b = b.Where(sq.Eq{"author_id": filter.AuthorID})
		} else if filter.AuthorID != "" {
			return []content.Item{}, nil
		}
		if filter.PublicOnly {
			if isUUID(filter.VisibleAuthorID) {
				b = b.Where(sq.Or{sq.Eq{"status": content.StatusPublished}, sq.Eq{"author_id": filter.VisibleAuthorID}})
			} else {
				b = b.Where(sq.Eq{"status": content.StatusPublished})
			}
		}
	}

	var rows []contentRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying content")
	}
	items := make([]content.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, nil
}

func (repo *contentRepository) GetItem(ctx context.Context, id string) (content.Item, error) {
	if !isUUID(id) {
		return content.Item{}, content.ErrNotFound
	}
	var r contentRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(contentTable).Where(sq.Eq{"id": id})); err != nil {
		return content.Item{}, trapNoRowsErr(err, content.ErrNotFound, "finding content")
	}
	return r.toItem(), nil
}

func (repo *contentRepository) UpdateItem(ctx context.Context, it content.Item, prevStatus string) (content.Item, error) {
	vals := contentValues(it)
	delete(vals, "views_count") // only IncrementViews moves the counter
	found, err := update(ctx, repo.db, contentTable, it.ID, vals, sq.Eq{"status": prevStatus})
	if err != nil {
		return content.Item{}, errors.Wrap(err, "updating content")
	}
	if !found {
		if _, err := repo.GetItem(ctx, it.ID); err != nil {
			return content.Item{}, err
		}
		return content.Item{}, errors.Wrapf(core.ErrInvalidTransition, "content is no longer %s", prevStatus)
	}
	return it, nil
}

func (repo *contentRepository) IncrementViews(ctx context.Context, id string) (content.Item, error) {
	if !isUUID(id) {
		return content.Item{}, content.ErrNotFound
	}
	b := psql.Update(contentTable).
		Set("views_count", sq.Expr("views_count + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING *")
	var r contentRow
	if err := selectOne(ctx, repo.db, &r, b); err != nil {
		return content.Item{}, trapNoRowsErr(err, content.ErrNotFound, "incrementing views")
	}
	return r.toItem(), nil
}

func (repo *contentRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, contentTable, ids), "deleting content")
}

func (repo *contentRepository) PublishedTaxonomy(ctx context.Context, category string) ([]content.Taxonomy, error) {
	b := psql.Select("category", "tags").From(contentTable).
		Where(sq.Eq{"status": content.StatusPublished}).
		OrderBy("category", "id")
	if category != "" {
		b = b.Where(sq.Eq{"category": category})
	}

	var rows []struct {
		Category string         `db:"category"`
		Tags     pq.StringArray `db:"tags"`
	}
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying taxonomy")
	}
	tax := make([]content.Taxonomy, 0, len(rows))
	for _, r := range rows {
		tax = append(tax, content.Taxonomy{Category: r.Category, Tags: []string(r.Tags)})
	}
	return tax, nil
}
