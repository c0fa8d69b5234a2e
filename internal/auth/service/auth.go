package service

import (
	"context"
	"errors"

	"renthub/internal/auth/token"
	"renthub/internal/users/repository"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
	"renthub/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *token.Manager
	validate *validator.Validate
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *authService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validate.Struct(req); err != nil {
		s.cfg.Log.Warn("Signup validation failed", "error", err)
		return nil, apperrors.Validation("Invalid signup input", map[string]any{"error": err.Error()})
	}

	phone := sanitizer.NormalizePhone(req.Phone)
	if phone == "" {
		return nil, apperrors.Validation("Invalid phone number", map[string]any{"phone": req.Phone})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Phone:    phone,
		Role:     role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "role", user.Role)
	return user, nil
}

func (s *authService) Signin(ctx context.Context, req *model.SigninRequest) (*model.SigninResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Invalid signin input", map[string]any{"error": err.Error()})
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same response as a bad password; no account probing.
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User signed in", "id", user.ID)
	return &model.SigninResponse{Token: signed, User: user}, nil
}
