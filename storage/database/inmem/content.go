package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/content"
)

type contentRepository struct {
	db *table[content.Item]
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db.content}
}

func (repo *contentRepository) CreateItem(_ context.Context, it content.Item) (content.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	it.ID = newID()
	it.Tags = copyStrings(it.Tags)
	repo.db.insert(it.ID, it)
	return it, nil
}

func compareItems(a, b content.Item, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "category":
		return compareStrings(a.Category, b.Category)
	case "views_count":
		return compareInts(a.ViewsCount, b.ViewsCount)
	case "published_at":
		return compareNullTimes(a.PublishedAt, b.PublishedAt)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func itemMatches(it content.Item, filter *content.QueryFilter) bool {
	if filter == nil {
		return true
	}
	switch {
	case filter.Search != "" && !matchesAny(filter.Search, it.Title, it.Summary, it.Body),
		filter.ContentType != "" && it.ContentType != filter.ContentType,
		filter.Category != "" && it.Category != filter.Category,
		filter.Tag != "" && !core.StringInSlice(filter.Tag, it.Tags),
		filter.Language != "" && it.Language != filter.Language,
		filter.Status != "" && it.Status != filter.Status,
		filter.AuthorID != "" && it.AuthorID != filter.AuthorID:
		return false
	}
	if filter.PublicOnly && it.Status != content.StatusPublished {
		return filter.VisibleAuthorID != "" && it.AuthorID == filter.VisibleAuthorID
	}
	return true
}

func (repo *contentRepository) QueryItems(_ context.Context, filter *content.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]content.Item, 0)
	for _, it := range repo.db.all() {
		if itemMatches(it, filter) {
			items = append(items, it)
		}
	}
	sortRows(items, ordering, compareItems)
	return pageRows(items, page), nil
}

func (repo *contentRepository) GetItem(_ context.Context, id string) (content.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if it, ok := repo.db.get(id); ok {
		return it, nil
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) UpdateItem(_ context.Context, it content.Item, prevStatus string) (content.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.get(it.ID)
	if !ok {
		return content.Item{}, content.ErrNotFound
	}
	if orig.Status != prevStatus {
		return content.Item{}, errors.Wrapf(core.ErrInvalidTransition, "content is no longer %s", prevStatus)
	}
	it.ViewsCount = orig.ViewsCount
	it.Tags = copyStrings(it.Tags)
	repo.db.put(it.ID, it)
	return it, nil
}

func (repo *contentRepository) IncrementViews(_ context.Context, id string) (content.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	it, ok := repo.db.get(id)
	if !ok {
		return content.Item{}, content.ErrNotFound
	}
	it.ViewsCount++
	repo.db.put(id, it)
	return it, nil
}

func (repo *contentRepository) DeleteItemsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}

func (repo *contentRepository) PublishedTaxonomy(_ context.Context, category string) ([]content.Taxonomy, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tax := make([]content.Taxonomy, 0)
	for _, it := range repo.db.all() {
		if it.Status != content.StatusPublished || (category != "" && it.Category != category) {
			continue
		}
		tax = append(tax, content.Taxonomy{Category: it.Category, Tags: copyStrings(it.Tags)})
	}
	return tax, nil
}
