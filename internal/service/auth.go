package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/godeye/godeye-go/internal/crypto"
	"github.com/godeye/godeye-go/internal/model"
	"github.com/godeye/godeye-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNameInvalid        = errors.New("name must be between 2 and 50 characters")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooWeak    = errors.New("password must contain an uppercase letter, a lowercase letter and a digit")
	ErrFieldsRequired     = errors.New("name, email and password are required")
	ErrEmailTaken         = errors.New("email already taken")
)

// AuthService handles registration, login and profile lookups.
type AuthService struct {
	store              UserStore
	jwtSecret          string
	jwtExpiry          time.Duration
	defaultMaxSearches int
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, secret string, expiry time.Duration, defaultMaxSearches int) *AuthService {
	return &AuthService{
		store:              store,
		jwtSecret:          secret,
		jwtExpiry:          expiry,
		defaultMaxSearches: defaultMaxSearches,
	}
}

// NormalizeEmail lowercases and trims an email address. Normalization is
// idempotent: applying it twice yields the same result.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the request, hashes the password and creates the user.
// New accounts start with role "user", a zero search counter and the
// configured default search cap.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return model.UserResponse{}, ErrFieldsRequired
	}
	if len(name) < 2 || len(name) > 50 {
		return model.UserResponse{}, ErrNameInvalid
	}
	if err := validateEmail(email); err != nil {
		return model.UserResponse{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return model.UserResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		SearchCount:  0,
		MaxSearches:  s.defaultMaxSearches,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

// Login authenticates a user and returns a session token. Unknown email and
// wrong password both yield ErrInvalidCredentials so the response never
// reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.ID, user.Email, user.Name, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}
