package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindWithGrants loads the profile and every group with its permissions.
	FindWithGrants(ctx context.Context, id string) (*models.User, error)
	ReplaceGroups(ctx context.Context, user *models.User, groups []models.Group) error
	EnsureProfile(ctx context.Context, userID, role string) (created bool, err error)
	TouchLastLogin(ctx context.Context, id string) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and, when set, its profile.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// prevent returning a zero-value user struct => callers rely on the error
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindWithGrants(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Groups.Permissions").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ReplaceGroups drops every previous membership; one role at a time.
func (r *userRepository) ReplaceGroups(ctx context.Context, user *models.User, groups []models.Group) error {
	assoc := r.db.WithContext(ctx).Model(user).Association("Groups")
	var err error
	if len(groups) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(groups)
	}
	if err != nil {
		return fmt.Errorf("replace groups: %w", err)
	}
	return nil
}

func (r *userRepository) EnsureProfile(ctx context.Context, userID, role string) (bool, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find profile: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(&models.UserProfile{UserID: userID, Role: role}).Error; err != nil {
		return false, fmt.Errorf("create profile: %w", err)
	}
	return true, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", &now).Error
}
