package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backend/pkg/apperror"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// ProfileResponse is the authenticated user's view of themselves, including
// the effective permission slugs the frontend uses to toggle UI affordances.
type ProfileResponse struct {
	UserResponse
	Permissions []string `json:"permissions"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*ProfileResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo     repository.UserRepository
	resolver PermissionService
	cache    *auth.Cache
	secret   []byte
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, resolver PermissionService, cache *auth.Cache, secret []byte) UserService {
	return &userService{repo: repo, resolver: resolver, cache: cache, secret: secret}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	// Basic Email format validation fallback
	if !emailRegex.MatchString(req.Email) {
		return nil, apperror.BadRequest("Invalid email format.")
	}

	// Double check username/email uniqueness via repo directly
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperror.Conflict("Username already exists.")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("Email already exists.")
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password.")
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.FromDBError(err, "Could not create the user.")
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenPairResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password.")
	}

	return s.issueTokenPair(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("No refresh token provided.")
	}

	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token.")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, apperror.Unauthorized("Refresh token expired.")
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token.")
	}

	// Rotate: the presented token is single use.
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, apperror.FromDBError(err, "Could not rotate the refresh token.")
	}

	return s.issueTokenPair(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return apperror.FromDBError(err, "Could not revoke the refresh token.")
	}
	return nil
}

func (s *userService) Me(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the user.")
	}

	slugs, err := s.resolver.ResolveEffective(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		UserResponse: *mapToResponse(user),
		Permissions:  slugs.Slice(),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the user.")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.FromDBError(err, "Could not list users.")
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToResponse(&u))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found.")
		}
		return nil, apperror.FromDBError(err, "Could not fetch the user.")
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, apperror.Conflict("Username already exists.")
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		if !emailRegex.MatchString(req.Email) {
			return nil, apperror.BadRequest("Invalid email format.")
		}
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperror.Conflict("Email already exists.")
		}
		user.Email = req.Email
	}

	if req.Phone != "" {
		user.Phone = req.Phone
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.Internal("Failed to hash password.")
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.FromDBError(err, "Could not update the user.")
	}

	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("User not found.")
		}
		return apperror.FromDBError(err, "Could not fetch the user.")
	}

	if err := s.repo.DeleteRefreshTokensForUser(ctx, user.ID); err != nil {
		return apperror.FromDBError(err, "Could not revoke the user's sessions.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.FromDBError(err, "Could not delete the user.")
	}

	s.cache.Invalidate(id)
	return nil
}

func (s *userService) issueTokenPair(ctx context.Context, user *model.User) (*TokenPairResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token.")
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, apperror.Internal("Failed to generate refresh token.")
	}

	record := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, &record); err != nil {
		return nil, apperror.FromDBError(err, "Could not persist the refresh token.")
	}

	return &TokenPairResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
