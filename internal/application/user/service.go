// Package user provides the application layer for user management
package user

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

// UserService implements user management use cases
type UserService struct {
	userRepo  outbound.UserRepository
	tokens    outbound.TokenService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	tokens outbound.TokenService,
	validator *validation.Validator,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokens:    tokens,
		validator: validator,
		logger:    logger.Named("user-service"),
	}
}

var _ inbound.UserService = (*UserService)(nil)

// Register creates a new user account and signs it in
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.AuthResult, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	email := user.NormalizeEmail(cmd.Email)
	s.logger.Info("Registering new user", zap.String("email", email))

	// Check if user already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewDatabaseError("check email", err)
	}
	if exists {
		return nil, errors.NewEmailAlreadyExistsError(email)
	}

	newUser, err := user.NewUser(email, cmd.FirstName, cmd.LastName, cmd.Password)
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if stderrors.Is(err, user.ErrEmailTaken) {
			return nil, errors.NewEmailAlreadyExistsError(email)
		}
		return nil, errors.NewDatabaseError("create user", err)
	}

	result, err := s.issue(ctx, newUser)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)
	return result, nil
}

// Login authenticates a user
func (s *UserService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthResult, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	email := user.NormalizeEmail(cmd.Email)
	s.logger.Info("User login attempt", zap.String("email", email))

	userEntity, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, errors.NewDatabaseError("find user", err)
	}

	if err := userEntity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, errors.NewInvalidCredentialsError()
	}

	userEntity.RecordLogin()
	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	result, err := s.issue(ctx, userEntity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", userEntity.ID().String()),
	)
	return result, nil
}

// Logout revokes the presented token
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errors.NewUnauthorizedError("")
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		s.logger.Info("Logout with unusable token", zap.Error(err))
		return errors.NewUnauthorizedError("Invalid or expired token").WithCause(err)
	}
	return nil
}

// Authenticate resolves a bearer token into the calling principal
func (s *UserService) Authenticate(ctx context.Context, token string) (*inbound.Principal, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("")
	}

	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token").WithCause(err)
	}

	return &inbound.Principal{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    string(claims.Role),
		TokenID: claims.TokenID,
	}, nil
}

// CurrentUser returns the profile of the signed-in user
func (s *UserService) CurrentUser(ctx context.Context, userID uuid.UUID) (*inbound.UserDTO, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, errors.NewUserNotFoundError(userID.String())
		}
		return nil, errors.NewDatabaseError("find user", err)
	}

	dto := ToDTO(userEntity)
	return &dto, nil
}

func (s *UserService) issue(ctx context.Context, u *user.User) (*inbound.AuthResult, error) {
	token, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}
	return &inbound.AuthResult{
		User:      ToDTO(u),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// ToDTO converts a user entity into its public view
func ToDTO(u *user.User) inbound.UserDTO {
	return inbound.UserDTO{
		ID:        u.ID(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt().Format(time.RFC3339),
	}
}
