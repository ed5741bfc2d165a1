package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/access-management/internal"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Signup registers an Employee and signs a token for it.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*AuthResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		return nil, user.ErrUsernameTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	record := &userDatamodel.User{
		Username:     dto.Username,
		PasswordHash: hash,
		Email:        dto.Email,
		FullName:     dto.FullName,
		Role:         string(internal.RoleEmployee),
	}
	if err := s.userRepo.Create(ctx, record); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user signed up", "user_id", record.ID, "username", record.Username)
	return s.issue(user.FromDataModel(record))
}

// Authenticate validates credentials and returns a signed token
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	return s.issue(user.FromDataModel(record))
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolveIdentity verifies the token and reloads its user, so a deleted user
// is rejected and a changed role applies at once.
func (s *Service) ResolveIdentity(ctx context.Context, tokenString string) (*internal.Identity, error) {
	if tokenString == "" {
		return nil, internal.ErrMissingToken
	}

	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	record, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		return nil, internal.ErrInvalidToken.WithMessage("User no longer exists")
	}

	return user.FromDataModel(record).Identity(), nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issue(u *user.User) (*AuthResult, error) {
	token, err := s.tokenGenerator.GenerateAccessToken(u.Identity())
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}
