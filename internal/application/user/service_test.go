package user_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	usersvc "github.com/recipemanager/server/internal/application/user"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/user"
	gormrepo "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"github.com/recipemanager/server/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	users   outbound.UserRepository
	tokens  *testutils.MockTokenService
	service *usersvc.UserService
	factory *testutils.Factory
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = gormrepo.NewUserRepository(testutils.NewSQLiteDB(s.T()))
	s.tokens = new(testutils.MockTokenService)
	s.service = usersvc.NewUserService(s.users, s.tokens, validation.New(), zap.NewNop())
	s.factory = testutils.NewFactory(s.T(), 7)
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.tokens.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) expectIssue() {
	s.tokens.On("Issue", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(&outbound.IssuedToken{Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}, nil).
		Once()
}

func (s *UserServiceTestSuite) TestRegister() {
	s.expectIssue()

	result, err := s.service.Register(s.ctx, inbound.RegisterCommand{
		Email:     "Cook@Example.COM",
		Password:  "correct-horse-battery",
		FirstName: "Julia",
		LastName:  "Child",
	})
	s.Require().NoError(err)
	s.Equal("signed-token", result.Token)
	s.Equal("cook@example.com", result.User.Email)
	s.Equal(string(user.RoleUser), result.User.Role)

	stored, err := s.users.FindByEmail(s.ctx, "cook@example.com")
	s.Require().NoError(err)
	s.Equal(result.User.ID, stored.ID())
	s.NoError(stored.CheckPassword("correct-horse-battery"))
}

func (s *UserServiceTestSuite) TestRegisterDuplicateEmail() {
	existing := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, existing))

	_, err := s.service.Register(s.ctx, inbound.RegisterCommand{
		Email:     existing.Email(),
		Password:  "another-password",
		FirstName: "Someone",
	})
	s.True(errors.Is(err, errors.CodeEmailAlreadyExists))
}

func (s *UserServiceTestSuite) TestRegisterValidation() {
	tests := []struct {
		name string
		cmd  inbound.RegisterCommand
	}{
		{"missing email", inbound.RegisterCommand{Password: "long-enough", FirstName: "A"}},
		{"bad email", inbound.RegisterCommand{Email: "nope", Password: "long-enough", FirstName: "A"}},
		{"short password", inbound.RegisterCommand{Email: "a@b.co", Password: "short", FirstName: "A"}},
		{"missing first name", inbound.RegisterCommand{Email: "a@b.co", Password: "long-enough"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Register(s.ctx, tt.cmd)
			s.Equal(errors.CodeValidationFailed, errors.GetCode(err))
		})
	}
}

func (s *UserServiceTestSuite) TestLogin() {
	u := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, u))
	s.expectIssue()

	result, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: testutils.DefaultPassword})
	s.Require().NoError(err)
	s.Equal(u.ID(), result.User.ID)

	stored, err := s.users.FindByID(s.ctx, u.ID())
	s.Require().NoError(err)
	s.NotNil(stored.LastLoginAt())
}

func (s *UserServiceTestSuite) TestLoginRejectsBadCredentials() {
	u := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, u))

	_, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: "wrong-password"})
	s.True(errors.Is(err, errors.CodeInvalidCredentials))

	_, err = s.service.Login(s.ctx, inbound.LoginCommand{Email: "ghost@example.com", Password: "whatever"})
	s.True(errors.Is(err, errors.CodeInvalidCredentials), "unknown email must look the same as a wrong password")
}

func (s *UserServiceTestSuite) TestLoginTokenFailure() {
	u := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, u))
	s.tokens.On("Issue", mock.Anything, mock.Anything).Return(nil, stderrors.New("signing failed")).Once()

	_, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: testutils.DefaultPassword})
	s.Equal(errors.CodeInternal, errors.GetCode(err))
}

func (s *UserServiceTestSuite) TestLogout() {
	s.tokens.On("Revoke", mock.Anything, "good").Return(nil).Once()
	s.tokens.On("Revoke", mock.Anything, "bad").Return(stderrors.New("malformed")).Once()

	s.NoError(s.service.Logout(s.ctx, "good"))
	s.True(errors.Is(s.service.Logout(s.ctx, "bad"), errors.CodeUnauthorized))
	s.True(errors.Is(s.service.Logout(s.ctx, ""), errors.CodeUnauthorized))
}

func (s *UserServiceTestSuite) TestAuthenticate() {
	id := uuid.New()
	s.tokens.On("Verify", mock.Anything, "good").Return(&outbound.TokenClaims{
		TokenID: "jti-1",
		UserID:  id,
		Email:   "cook@example.com",
		Role:    user.RoleAdmin,
	}, nil).Once()
	s.tokens.On("Verify", mock.Anything, "expired").Return(nil, stderrors.New("token expired")).Once()

	principal, err := s.service.Authenticate(s.ctx, "good")
	s.Require().NoError(err)
	s.Equal(id, principal.UserID)
	s.Equal("jti-1", principal.TokenID)
	s.True(principal.IsAdmin())

	_, err = s.service.Authenticate(s.ctx, "expired")
	s.True(errors.Is(err, errors.CodeUnauthorized))
}

func (s *UserServiceTestSuite) TestCurrentUser() {
	u := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, u))

	dto, err := s.service.CurrentUser(s.ctx, u.ID())
	s.Require().NoError(err)
	s.Equal(u.Email(), dto.Email)
	s.Equal(u.FirstName(), dto.FirstName)

	_, err = s.service.CurrentUser(s.ctx, uuid.New())
	s.True(errors.Is(err, errors.CodeUserNotFound))
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
