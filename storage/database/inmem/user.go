package inmemdb

import (
	"context"
	"strings"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.all() {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = newID()
	usr.Roles = copyStrings(usr.Roles)
	repo.db.insert(usr.ID, usr)
	return usr, nil
}

func hasRolePrefix(usr user.User, prefixes []string) bool {
	for _, p := range prefixes {
		if usr.RoleStartsWith(p) {
			return true
		}
	}
	return false
}

func compareUsers(a, b user.User, field string) int {
	switch field {
	case "name":
		return compareStrings(a.Name, b.Name)
	case "username":
		return compareStrings(a.Username, b.Username)
	case "email":
		return compareStrings(a.Email, b.Email)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	case "last_login":
		return compareTimes(a.LastLogin, b.LastLogin)
	}
	return 0
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !matchesAny(filter.Search, usr.Name, usr.Username, usr.Email) {
				continue
			}
			if len(filter.Roles) > 0 && !hasRolePrefix(usr, filter.Roles) {
				continue
			}
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
			if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
				continue
			}
			if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
				continue
			}
		}
		users = append(users, usr)
	}
	sortRows(users, ordering, compareUsers)
	return pageRows(users, page), nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.get(filter.ID); ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.all() {
		switch {
		case filter.Username != "":
			if usr.Username == filter.Username {
				return usr, nil
			}
		case filter.Email != "":
			if strings.EqualFold(usr.Email, filter.Email) {
				return usr, nil
			}
		case filter.UsernameOrEmail != "":
			if usr.Username == filter.UsernameOrEmail || strings.EqualFold(usr.Email, filter.UsernameOrEmail) {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.get(usr.ID)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.CreatedAt = orig.CreatedAt
	usr.Roles = copyStrings(usr.Roles)
	repo.db.put(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}
