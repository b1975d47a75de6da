package repositories

import (
	"context"

	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// UserRepository provides access to staff users
type UserRepository interface {
	GetUser(ctx context.Context, id entities.UserID) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	ListUsers(ctx context.Context, page Page) ([]*entities.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user *entities.User) error
	UpdateUser(ctx context.Context, user *entities.User) error
}
