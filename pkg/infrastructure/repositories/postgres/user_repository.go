package postgres

import (
	"context"
	"strings"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"gorm.io/gorm"
)

// UserRepository stores users
type UserRepository struct {
	db *gorm.DB
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// GetUser returns a user by id
func (r *UserRepository) GetUser(ctx context.Context, id entities.UserID) (*entities.User, error) {
	return r.first(ctx, id, "id = ?", int64(id))
}

// GetUserByUsername returns a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, username, "username = ?", username)
}

// GetUserByEmail matches case-insensitively
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, email, "lower(email) = ?", strings.ToLower(email))
}

func (r *UserRepository) first(ctx context.Context, key any, query string, args ...any) (*entities.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		return nil, translate(err, "user", key)
	}
	return m.toEntity()
}

// ListUsers returns a page of users ordered by id
func (r *UserRepository) ListUsers(ctx context.Context, page repositories.Page) ([]*entities.User, error) {
	var models []userModel
	if err := paginate(r.db.WithContext(ctx).Order("id"), page).Find(&models).Error; err != nil {
		return nil, translate(err, "user", nil)
	}
	result := make([]*entities.User, 0, len(models))
	for _, m := range models {
		user, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, nil
}

// CountUsers counts every user
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&count).Error; err != nil {
		return 0, translate(err, "user", nil)
	}
	return count, nil
}

// CreateUser inserts a user and sets its id
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	m := toUserModel(user)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "user", user.Username)
	}
	created, err := m.toEntity()
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// UpdateUser saves a user
func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	m := toUserModel(user)
	result := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"email":           m.Email,
		"hashed_password": m.HashedPassword,
		"full_name":       m.FullName,
		"role":            m.Role,
		"is_active":       m.IsActive,
	})
	if result.Error != nil {
		return translate(result.Error, "user", user.ID)
	}
	if result.RowsAffected == 0 {
		return entities.NewNotFoundError("user", user.ID)
	}
	return nil
}
