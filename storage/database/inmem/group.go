package inmemdb

import (
	"context"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/group"
)

type groupRepository struct {
	db *table[group.Group]
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db.groups}
}

func (repo *groupRepository) linkTaken(link, excludedID string) bool {
	for _, g := range repo.db.all() {
		if g.InviteLink == link && g.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *groupRepository) CheckInviteLinkUniqueness(_ context.Context, link string, excludedID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.linkTaken(link, excludedID) {
		return group.ErrLinkExists
	}
	return nil
}

func (repo *groupRepository) CreateGroup(_ context.Context, g group.Group) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.linkTaken(g.InviteLink, "") {
		return group.Group{}, group.ErrLinkExists
	}
	g.ID = newID()
	repo.db.insert(g.ID, g)
	return g, nil
}

func compareGroups(a, b group.Group, field string) int {
	switch field {
	case "name":
		return compareStrings(a.Name, b.Name)
	case "member_count":
		return compareInts(a.MemberCount, b.MemberCount)
	case "city":
		return compareStrings(a.City, b.City)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func (repo *groupRepository) QueryGroups(_ context.Context, filter *group.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]group.Group, 0)
	for _, g := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !matchesAny(filter.Search, g.Name, g.Description, g.City) {
				continue
			}
			if filter.Category != "" && g.Category != filter.Category {
				continue
			}
			if filter.Language != "" && g.Language != filter.Language {
				continue
			}
			if filter.IsActive != nil && g.IsActive != *filter.IsActive {
				continue
			}
			if filter.IsVerified != nil && g.IsVerified != *filter.IsVerified {
				continue
			}
		}
		groups = append(groups, g)
	}
	sortRows(groups, ordering, compareGroups)
	return pageRows(groups, page), nil
}

func (repo *groupRepository) GetGroup(_ context.Context, id string) (group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.get(id); ok {
		return g, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(_ context.Context, g group.Group) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.linkTaken(g.InviteLink, g.ID) {
		return group.Group{}, group.ErrLinkExists
	}
	if !repo.db.put(g.ID, g) {
		return group.Group{}, group.ErrNotFound
	}
	return g, nil
}

func (repo *groupRepository) DeleteGroupsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}
