package inmemdb

import (
	"context"
	"strings"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/hadith"
)

type hadithRepository struct {
	db *table[hadith.Hadith]
}

var _ hadith.Repository = (*hadithRepository)(nil)

func NewHadithRepository(db *DB) hadith.Repository {
	return &hadithRepository{db: db.hadiths}
}

func (repo *hadithRepository) byNumber(collection string, number int) (hadith.Hadith, bool) {
	for _, h := range repo.db.all() {
		if h.Collection == collection && h.Number == number {
			return h, true
		}
	}
	return hadith.Hadith{}, false
}

func (repo *hadithRepository) CreateHadith(_ context.Context, h hadith.Hadith) (hadith.Hadith, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	h.ID = newID()
	repo.db.insert(h.ID, h)
	return h, nil
}

func (repo *hadithRepository) GetHadith(_ context.Context, id string) (hadith.Hadith, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if h, ok := repo.db.get(id); ok {
		return h, nil
	}
	return hadith.Hadith{}, hadith.ErrNotFound
}

func (repo *hadithRepository) GetHadithByNumber(_ context.Context, collection string, number int) (hadith.Hadith, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if h, ok := repo.byNumber(collection, number); ok {
		return h, nil
	}
	return hadith.Hadith{}, hadith.ErrNotFound
}

func compareHadiths(a, b hadith.Hadith, field string) int {
	switch field {
	case "collection":
		return compareStrings(a.Collection, b.Collection)
	case "number":
		return compareInts(a.Number, b.Number)
	case "grade":
		return compareStrings(a.Grade, b.Grade)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func (repo *hadithRepository) QueryHadiths(_ context.Context, filter *hadith.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]hadith.Hadith, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	hs := make([]hadith.Hadith, 0)
	for _, h := range repo.db.all() {
		if filter != nil {
			switch {
			case filter.Q != "" && !strings.Contains(h.SearchText, filter.Q),
				filter.Collection != "" && h.Collection != filter.Collection,
				filter.Grade != "" && h.Grade != filter.Grade,
				filter.Narrator != "" && !containsFold(h.Narrator, filter.Narrator):
				continue
			}
		}
		hs = append(hs, h)
	}
	sortRows(hs, ordering, compareHadiths)
	return pageRows(hs, page), nil
}

func (repo *hadithRepository) UpdateHadith(_ context.Context, h hadith.Hadith) (hadith.Hadith, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.put(h.ID, h) {
		return hadith.Hadith{}, hadith.ErrNotFound
	}
	return h, nil
}

func (repo *hadithRepository) DeleteHadithsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}

func (repo *hadithRepository) UpsertHadiths(_ context.Context, hs []hadith.Hadith) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	written := make(map[string]bool, len(hs))
	for _, h := range hs {
		if orig, ok := repo.byNumber(h.Collection, h.Number); ok {
			h.ID = orig.ID
			h.CreatedAt = orig.CreatedAt
			repo.db.put(h.ID, h)
			written[h.ID] = true
			continue
		}
		h.ID = newID()
		repo.db.insert(h.ID, h)
		written[h.ID] = true
	}
	return len(written), nil
}
