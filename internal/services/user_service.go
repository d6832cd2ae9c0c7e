package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"billing-backend/internal/auth"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
	"billing-backend/internal/timeutil"
)

type UserService struct {
	Store      repositories.Store
	JWTManager *auth.JWTManager
}

func NewUserService(store repositories.Store, jwtManager *auth.JWTManager) *UserService {
	return &UserService{Store: store, JWTManager: jwtManager}
}

func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     req.Username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if u.Role == "" {
		u.Role = models.RoleCashier
	}
	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Err: ErrDuplicateName, Details: map[string]string{"username": "exists"}}
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Store.GetUser(ctx, id)
}

// Login checks the password and returns a signed token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.Store.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	at := timeutil.Now()
	if err := s.Store.TouchLastLogin(ctx, user.ID, at); err != nil {
		log.Printf("[Auth] Could not record last login for %s: %v", user.Username, err)
	} else {
		user.LastLogin = &at
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// EnsureAdmin creates the first admin account when the user table is
// empty. It does nothing once any user exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, fullName string) error {
	n, err := s.Store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if password == "" {
		return errors.New("no users exist and no admin password is configured")
	}
	u, err := s.CreateUser(ctx, &models.CreateUserRequest{
		Username: username,
		FullName: fullName,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.Printf("[Auth] Created initial admin user %q", u.Username)
	return nil
}
