package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

const (
	defaultMaxFailedLogins = 5
	defaultAccountLockout  = 30 * time.Minute
)

// UserRepository is the user storage the service depends on.
type UserRepository interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	GetUserByTokenHash(tokenHash string) (*entities.User, error)
	SetToken(userID uint, tokenHash string, createdAt time.Time) error
	ClearToken(userID uint) error
	RecordLogin(userID uint, at time.Time) error
	RecordFailedLogin(userID uint, failedCount int, lockedUntil *time.Time) error
	UpdatePasswordHash(userID uint, hash string) error
	CountUsers() (int64, error)
}

// Service manages librarian and admin accounts: passwords, lockout and API
// tokens. Patrons never have accounts.
type Service struct {
	users  UserRepository
	config config.Auth
	now    func() time.Time
}

func NewService(users UserRepository, cfg config.Auth) *Service {
	return &Service{users: users, config: cfg, now: time.Now}
}

// notFoundAs maps gorm's missing-row error to target and leaves others alone.
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func validateNewUser(username, password string, role entities.UserRole) error {
	switch {
	case username == "":
		return ErrUsernameRequired
	case password == "":
		return ErrPasswordRequired
	case !usernamePattern.MatchString(username):
		return ErrUsernameInvalid
	case role != entities.UserRoleAdmin && role != entities.UserRoleLibrarian:
		return ErrInvalidRole
	}
	return nil
}

// CreateUser adds a staff account. The password must satisfy HashPassword.
func (s *Service) CreateUser(username, password string, role entities.UserRole) (*entities.User, error) {
	if err := validateNewUser(username, password, role); err != nil {
		return nil, err
	}

	switch _, err := s.users.GetUserByUsername(username); {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username and password. An account is locked for
// LockoutDuration once its consecutive failures reach MaxLoginAttempts.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailure(user, now)
		return nil, err
	}

	if err := s.users.RecordLogin(user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	return user, nil
}

func (s *Service) recordFailure(user *entities.User, now time.Time) {
	limit := s.config.MaxLoginAttempts
	if limit <= 0 {
		limit = defaultMaxFailedLogins
	}
	lockout := s.config.LockoutDuration
	if lockout <= 0 {
		lockout = defaultAccountLockout
	}

	user.FailedLoginCount++
	user.LockedUntil = nil
	if user.FailedLoginCount >= limit {
		until := now.Add(lockout)
		user.LockedUntil = &until
		log.Printf("[AUTH] Account %q locked until %s", user.Username, until.Format(time.RFC3339))
	}

	if err := s.users.RecordFailedLogin(user.ID, user.FailedLoginCount, user.LockedUntil); err != nil {
		log.Printf("[AUTH] Failed to record failed login for %q: %v", user.Username, err)
	}
}

func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return user, nil
}

// ValidateToken resolves a plaintext API token to its owner. Tokens older
// than TokenExpiry are rejected when an expiry is configured.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if !LooksLikeAPIToken(token) {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByTokenHash(HashToken(token))
	if err != nil {
		return nil, notFoundAs(err, ErrInvalidToken)
	}

	expiry := s.config.TokenExpiry
	if expiry > 0 && user.TokenCreatedAt != nil && s.now().Sub(*user.TokenCreatedAt) > expiry {
		return nil, ErrTokenExpired
	}
	return user, nil
}

// GenerateToken issues a new API token, replacing any previous one. Only
// the hash is stored; the plaintext is returned once.
func (s *Service) GenerateToken(userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", err
	}
	if err := s.users.SetToken(userID, hash, s.now()); err != nil {
		return "", notFoundAs(err, ErrUserNotFound)
	}
	return plaintext, nil
}

func (s *Service) RevokeToken(userID uint) error {
	return s.users.ClearToken(userID)
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(userID uint, current, next string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(current, user.PasswordHash); err != nil {
		return err
	}

	hash, err := HashPassword(next, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(userID, hash)
}

// HasUsers reports whether any staff account exists.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	return count > 0, err
}
