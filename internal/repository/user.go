// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"kindler/internal/cache"
	"kindler/internal/models"
	"kindler/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SampleRandomExcluding(ctx context.Context, exclude []uint, location string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// userCacheEntry is the cached form of a user row. Password and PicturePath
// are excluded from the public JSON form of models.User, so they are carried
// alongside it here; returning a user without them would blank both columns
// on the next Save.
type userCacheEntry struct {
	User        models.User `json:"user"`
	Password    string      `json:"password"`
	PicturePath string      `json:"picture_path"`
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var entry userCacheEntry
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &entry, cache.UserTTL, func() error {
		defer observability.TrackQuery("get_by_id", "users")()
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewStorageError(err)
		}
		entry = userCacheEntry{User: user, Password: user.Password, PicturePath: user.PicturePath}
		return nil
	})

	if err != nil {
		return nil, err
	}

	user := entry.User
	user.Password = entry.Password
	user.PicturePath = entry.PicturePath
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username already taken")
		}
		return models.NewStorageError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewStorageError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return users, nil
}

// SampleRandomExcluding returns one user picked uniformly at random from
// those whose ID is not in exclude, optionally restricted to a location.
// It returns nil, nil when no user qualifies.
func (r *userRepository) SampleRandomExcluding(ctx context.Context, exclude []uint, location string) (*models.User, error) {
	defer observability.TrackQuery("sample_random", "users")()

	q := r.db.WithContext(ctx).Model(&models.User{})
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if location != "" {
		q = q.Where("location = ?", location)
	}

	var user models.User
	if err := q.Order("random()").Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	return &user, nil
}
