package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/hadith"
)

const (
	hadithsTable    = "hadiths"
	upsertBatchSize = 500
)

var hadithColumns = []string{
	"id", "collection", "book", "chapter", "number", "arabic_text", "translation",
	"narrator", "grade", "search_text", "created_at", "updated_at",
}

type hadithRow struct {
	ID          string    `db:"id"`
	Collection  string    `db:"collection"`
	Book        string    `db:"book"`
	Chapter     string    `db:"chapter"`
	Number      int       `db:"number"`
	ArabicText  string    `db:"arabic_text"`
	Translation string    `db:"translation"`
	Narrator    string    `db:"narrator"`
	Grade       string    `db:"grade"`
	SearchText  string    `db:"search_text"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r hadithRow) toHadith() hadith.Hadith {
	return hadith.Hadith{
		ID:          r.ID,
		Collection:  r.Collection,
		Book:        r.Book,
		Chapter:     r.Chapter,
		Number:      r.Number,
		ArabicText:  r.ArabicText,
		Translation: r.Translation,
		Narrator:    r.Narrator,
		Grade:       r.Grade,
		SearchText:  r.SearchText,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// hadithValues follows the order of hadithColumns.
func hadithValues(h hadith.Hadith) []interface{} {
	return []interface{}{
		h.ID, h.Collection, h.Book, h.Chapter, h.Number, h.ArabicText, h.Translation,
		h.Narrator, h.Grade, h.SearchText, h.CreatedAt.UTC(), h.UpdatedAt.UTC(),
	}
}

func hadithMap(h hadith.Hadith) map[string]interface{} {
	vals := hadithValues(h)
	m := make(map[string]interface{}, len(hadithColumns))
	for i, col := range hadithColumns {
		m[col] = vals[i]
	}
	return m
}

type hadithRepository struct {
	db *sqlx.DB
}

var _ hadith.Repository = (*hadithRepository)(nil)

func NewHadithRepository(db *sqlx.DB) hadith.Repository {
	return &hadithRepository{db: db}
}

func (repo *hadithRepository) CreateHadith(ctx context.Context, h hadith.Hadith) (hadith.Hadith, error) {
	h.ID = uuid.New().String()
	if err := insert(ctx, repo.db, hadithsTable, hadithMap(h)); err != nil {
		return hadith.Hadith{}, errors.Wrap(err, "inserting hadith")
	}
	return h, nil
}

func (repo *hadithRepository) GetHadith(ctx context.Context, id string) (hadith.Hadith, error) {
	if !isUUID(id) {
		return hadith.Hadith{}, hadith.ErrNotFound
	}
	var r hadithRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(hadithsTable).Where(sq.Eq{"id": id})); err != nil {
		return hadith.Hadith{}, trapNoRowsErr(err, hadith.ErrNotFound, "finding hadith")
	}
	return r.toHadith(), nil
}

func (repo *hadithRepository) GetHadithByNumber(ctx context.Context, collection string, number int) (hadith.Hadith, error) {
	var r hadithRow
	b := psql.Select("*").From(hadithsTable).Where(sq.Eq{"collection": collection, "number": number})
	if err := selectOne(ctx, repo.db, &r, b); err != nil {
		return hadith.Hadith{}, trapNoRowsErr(err, hadith.ErrNotFound, "finding hadith by number")
	}
	return r.toHadith(), nil
}

func (repo *hadithRepository) QueryHadiths(ctx context.Context, filter *hadith.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]hadith.Hadith, error) {
	b := psql.Select("*").From(hadithsTable)
	if filter != nil {
		if filter.Q != "" {
			b = b.Where(sq.Like{"search_text": contains(filter.Q)})
		}
		if filter.Collection != "" {
			b = b.Where(sq.Eq{"collection": filter.Collection})
		}
		if filter.Grade != "" {
			b = b.Where(sq.Eq{"grade": filter.Grade})
		}
		if filter.Narrator != "" {
			b = b.Where(sq.ILike{"narrator": contains(filter.Narrator)})
		}
	}

	var rows []hadithRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying hadiths")
	}
	hs := make([]hadith.Hadith, 0, len(rows))
	for _, r := range rows {
		hs = append(hs, r.toHadith())
	}
	return hs, nil
}

func (repo *hadithRepository) UpdateHadith(ctx context.Context, h hadith.Hadith) (hadith.Hadith, error) {
	found, err := update(ctx, repo.db, hadithsTable, h.ID, hadithMap(h))
	if err != nil {
		return hadith.Hadith{}, errors.Wrap(err, "updating hadith")
	}
	if !found {
		return hadith.Hadith{}, hadith.ErrNotFound
	}
	return h, nil
}

func (repo *hadithRepository) DeleteHadithsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, hadithsTable, ids), "deleting hadiths")
}

const hadithConflict = `ON CONFLICT (collection, number) DO UPDATE SET
	book = EXCLUDED.book,
	chapter = EXCLUDED.chapter,
	arabic_text = EXCLUDED.arabic_text,
	translation = EXCLUDED.translation,
	narrator = EXCLUDED.narrator,
	grade = EXCLUDED.grade,
	search_text = EXCLUDED.search_text,
	updated_at = EXCLUDED.updated_at`

// dedupeHadiths keeps the last hadith given for each (collection, number).
// Postgres refuses to upsert the same key twice in one statement.
func dedupeHadiths(hs []hadith.Hadith) []hadith.Hadith {
	type key struct {
		collection string
		number     int
	}
	idx := make(map[key]int, len(hs))
	out := make([]hadith.Hadith, 0, len(hs))
	for _, h := range hs {
		k := key{h.Collection, h.Number}
		if i, ok := idx[k]; ok {
			out[i] = h
			continue
		}
		idx[k] = len(out)
		out = append(out, h)
	}
	return out
}

func (repo *hadithRepository) UpsertHadiths(ctx context.Context, hs []hadith.Hadith) (int, error) {
	hs = dedupeHadiths(hs)
	var total int
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(hs); start += upsertBatchSize {
			end := start + upsertBatchSize
			if end > len(hs) {
				end = len(hs)
			}
			b := psql.Insert(hadithsTable).Columns(hadithColumns...).Suffix(hadithConflict)
			for _, h := range hs[start:end] {
				h.ID = uuid.New().String()
				b = b.Values(hadithValues(h)...)
			}
			n, err := execute(ctx, tx, b)
			if err != nil {
				return errors.Wrap(err, "upserting hadiths")
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
