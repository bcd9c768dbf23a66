package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/repositories"
	"salaogestor_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountEmailExists = errors.New("an account with this email already exists")
	ErrInvalidRole        = errors.New("role must be admin or employee")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrAccountValidation  = errors.New("account data validation error")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error)
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.User, error)
	LoginUser(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	ResetPassword(ctx context.Context, userID int64, req ResetPasswordRequest) error
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

// --- authService Implementation ---
type authService struct {
	authRepo   repositories.AuthRepository
	db         repositories.SQLExecutor
	tokens     *utils.TokenManager
	bcryptCost int
	compare    func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, db repositories.SQLExecutor, tokens *utils.TokenManager) AuthService {
	return &authService{
		authRepo:   authRepo,
		db:         db,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		compare:    bcrypt.CompareHashAndPassword,
	}
}

// unknownUserHash is compared against when the email has no account, so a
// failed login costs one bcrypt comparison either way.
func (s *authService) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-account-placeholder"), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *authService) hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) createUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrAccountValidation)
	}
	if !models.IsValidRole(string(role)) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	hashed, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hashed, Role: role}
	if _, err := s.authRepo.CreateUser(ctx, s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAccountEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// RegisterUser is the public sign-up path; it always creates an employee.
func (s *authService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	return s.createUser(ctx, req.Email, req.Password, models.RoleEmployee)
}

// CreateAccount is the admin path and may create accounts of any role.
func (s *authService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.User, error) {
	return s.createUser(ctx, req.Email, req.Password, models.Role(req.Role))
}

// LoginUser handles user login and token generation.
func (s *authService) LoginUser(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = s.compare(s.unknownUserHash(), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	user.PasswordHash = ""
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// GetUserProfile retrieves a user's account by their ID.
func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	account, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return err
	}
	withHash, err := s.authRepo.FindUserByEmail(ctx, account.Email)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := s.compare([]byte(withHash.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, userID, req.NewPassword)
}

// ResetPassword sets a new password for any account. Callers must be admins.
func (s *authService) ResetPassword(ctx context.Context, userID int64, req ResetPasswordRequest) error {
	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *authService) setPassword(ctx context.Context, userID int64, password string) error {
	hashed, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.authRepo.UpdatePasswordHash(ctx, s.db, userID, hashed); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when no admin account exists.
// It reports whether an account was created.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.authRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.createUser(ctx, email, password, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
