// Package users provides database operations for librarian accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername("frontdesk")
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/entities"
)

// Repository handles all user database operations.
// Lookups return gorm.ErrRecordNotFound when no user matches.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user whose password has already been hashed.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByTokenHash retrieves a user by the SHA-256 hash of their API token.
func (r *Repository) GetUserByTokenHash(tokenHash string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("token_hash = ? AND token_hash <> ''", tokenHash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetToken stores a new API token hash for the user. Returns
// gorm.ErrRecordNotFound when the user does not exist.
func (r *Repository) SetToken(userID uint, tokenHash string, createdAt time.Time) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       tokenHash,
		"token_created_at": createdAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearToken removes the user's API token.
func (r *Repository) ClearToken(userID uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	}).Error
}

// RecordLogin resets the failed login counter and stamps the login time.
func (r *Repository) RecordLogin(userID uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	}).Error
}

// RecordFailedLogin stores the failed login counter and an optional lock.
func (r *Repository) RecordFailedLogin(userID uint, failedCount int, lockedUntil *time.Time) error {
	updates := map[string]any{
		"failed_login_count": failedCount,
	}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdatePasswordHash replaces the user's password hash.
func (r *Repository) UpdatePasswordHash(userID uint, hash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

// CountUsers returns the number of accounts.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
