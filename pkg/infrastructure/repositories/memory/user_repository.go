package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// UserRepository provides in-memory user storage
type UserRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.UserRepository = (*UserRepository)(nil)

// GetUser returns a user by id
func (r *UserRepository) GetUser(ctx context.Context, id entities.UserID) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.ID == id }, id)
}

// GetUserByUsername returns a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.Username == username }, username)
}

// GetUserByEmail returns a user by email, ignoring case
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return strings.EqualFold(u.Email, email) }, email)
}

// ListUsers returns users ordered by id
func (r *UserRepository) ListUsers(ctx context.Context, page repositories.Page) ([]*entities.User, error) {
	users := make([]*entities.User, 0)
	err := r.store.view(func(st *state) error {
		for _, user := range st.users {
			user := user
			users = append(users, &user)
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return paginate(users, page), err
}

// CountUsers returns the number of users
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.store.view(func(st *state) error {
		count = int64(len(st.users))
		return nil
	})
	return count, err
}

// CreateUser stores a user and assigns its id
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.store.update(func(st *state) error {
		if err := checkUser(st, user); err != nil {
			return err
		}
		st.seq.user++
		user.ID = entities.UserID(st.seq.user)
		user.CreatedAt = r.store.now()
		st.users[user.ID] = *user
		return nil
	})
}

// UpdateUser saves all user fields
func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.store.update(func(st *state) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return entities.NewNotFoundError("user", user.ID)
		}
		if err := checkUser(st, user); err != nil {
			return err
		}
		user.CreatedAt = existing.CreatedAt
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepository) find(match func(entities.User) bool, key any) (*entities.User, error) {
	var found *entities.User
	err := r.store.view(func(st *state) error {
		for _, user := range st.users {
			if match(user) {
				user := user
				found = &user
				return nil
			}
		}
		return entities.NewNotFoundError("user", key)
	})
	return found, err
}

func checkUser(st *state, user *entities.User) error {
	for id, other := range st.users {
		if id == user.ID {
			continue
		}
		if other.Username == user.Username {
			return entities.NewConflictError("user", "username already registered")
		}
		if strings.EqualFold(other.Email, user.Email) {
			return entities.NewConflictError("user", "email already registered")
		}
	}
	return nil
}
