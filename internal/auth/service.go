package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidRole      = errors.New("role must be one of admin, editor, viewer")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 30 * time.Minute
)

// Permission is something a catalog user may be allowed to do.
type Permission string

const (
	// PermEditCatalog covers creating, changing and deleting authors and books.
	PermEditCatalog Permission = "catalog.edit"
	// PermViewHistory covers the audit API and the change history on detail pages.
	PermViewHistory Permission = "catalog.history"
)

var rolePermissions = map[entities.UserRole][]Permission{
	entities.UserRoleAdmin:  {PermEditCatalog, PermViewHistory},
	entities.UserRoleEditor: {PermEditCatalog},
	entities.UserRoleViewer: {},
}

// Allows reports whether role grants perm. Unknown roles grant nothing.
func Allows(role entities.UserRole, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// ParseRole validates a role name.
func ParseRole(name string) (entities.UserRole, error) {
	role := entities.UserRole(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := rolePermissions[role]; !ok {
		return "", ErrInvalidRole
	}
	return role, nil
}

// NewUser is the input for CreateUser.
type NewUser struct {
	Username string            `validate:"required,username"`
	Email    string            `validate:"required,max=254,email"`
	Password string            `validate:"required"`
	Role     entities.UserRole `validate:"required,role"`
}

var userValidator = newUserValidator()

func newUserValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	usernamePattern := regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := rolePermissions[entities.UserRole(fl.Field().String())]
		return ok
	})
	return v
}

// Validate returns the error for the first invalid field.
func (u NewUser) Validate() error {
	err := userValidator.Struct(u)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fe := fieldErrs[0]
	missing := fe.Tag() == "required"
	switch fe.Field() {
	case "Username":
		if missing {
			return ErrUsernameRequired
		}
		return ErrUsernameInvalid
	case "Email":
		if missing {
			return ErrEmailRequired
		}
		return ErrEmailInvalid
	case "Password":
		return ErrPasswordRequired
	default:
		return ErrInvalidRole
	}
}

// Service manages the accounts that may edit the catalog: creation,
// password logins with lockout, and API tokens.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	return &Service{db: db, config: cfg}
}

func byLogin(username, email string) query.Scope {
	return query.Where(sq.Or{sq.Eq{"username": username}, sq.Eq{"email": email}})
}

// findUser returns the first user matching scope, or missing when none does.
func (s *Service) findUser(scope query.Scope, missing error) (*entities.User, error) {
	var user entities.User
	err := s.db.Scopes(scope).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, missing
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// CreateUser adds an account. The username and email must both be unused.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	input := NewUser{Username: username, Email: email, Password: password, Role: role}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, err := s.findUser(byLogin(username, email), ErrUserNotFound)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a password for a username or email. After
// MaxLoginAttempts consecutive failures the account is locked for
// LockoutDuration.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.findUser(byLogin(login, login), ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	updates := map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		user.FailedLoginCount++
		updates = map[string]any{"failed_login_count": user.FailedLoginCount}
		if user.FailedLoginCount >= s.config.MaxLoginAttempts {
			updates["locked_until"] = now.Add(s.config.LockoutDuration)
		}
		s.db.Model(user).Updates(updates)
		return nil, err
	}

	s.db.Model(user).Updates(updates)
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.findUser(query.Where(sq.Eq{"id": id}), ErrUserNotFound)
}

// ValidateToken checks a plaintext token and returns its owner. Tokens older
// than TokenExpiry return ErrTokenExpired.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.findUser(query.Where(sq.Eq{"token_hash": HashToken(token)}), ErrInvalidToken)
	if err != nil {
		return nil, err
	}
	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil && time.Since(*user.TokenCreatedAt) > s.config.TokenExpiry {
		return nil, ErrTokenExpired
	}
	return user, nil
}

// GenerateToken issues a new API token for a user, replacing any previous
// one. The plaintext is returned once; only its hash is stored.
func (s *Service) GenerateToken(userID uint) (string, error) {
	token, err := NewAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.setToken(userID, token.Hash, time.Now()); err != nil {
		return "", err
	}
	return token.Plaintext, nil
}

// RevokeToken removes a user's API token.
func (s *Service) RevokeToken(userID uint) error {
	return s.setToken(userID, "", nil)
}

func (s *Service) setToken(userID uint, hash string, createdAt any) error {
	result := s.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       hash,
		"token_created_at": createdAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HasUsers reports whether any account exists.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	if err := s.db.Model(&entities.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
