package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/apperr"
	"github.com/emilythestrangee/subreddits/backend/internal/auth"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/models"
)

type AccountService struct {
	store  database.Store
	tokens *auth.Tokens
	log    *zap.Logger
}

func NewAccountService(store database.Store, tokens *auth.Tokens, log *zap.Logger) *AccountService {
	return &AccountService{store: store, tokens: tokens, log: log}
}

func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return nil, apperr.Validation("INVALID_ACCOUNT", "Name and email are required")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	user := models.User{Name: name, Email: email, Password: hashed}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.AlreadyExists("EMAIL_TAKEN", "Email already registered")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return &models.AuthResponse{Token: token, User: user, Message: "User registered successfully"}, nil
}

func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	invalid := apperr.NotAuthenticated("INVALID_CREDENTIALS", "Invalid credentials")

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, database.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, invalid
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	return &models.AuthResponse{Token: token, User: *user, Message: "Login successful"}, nil
}

// Me returns the authenticated caller.
func (s *AccountService) Me(ctx context.Context, userID string) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookup(err, errUserNotFound, "load user")
	}
	return user, nil
}
