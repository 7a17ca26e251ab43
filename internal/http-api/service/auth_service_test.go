package service

import (
	"context"
	"testing"
	"time"

	"comichub/internal/config"
	"comichub/internal/http-api/models"
	"comichub/internal/middleware/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- MOCK REPOSITORIES ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockInviteRepo struct {
	mock.Mock
}

func (m *MockInviteRepo) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InviteCode), args.Error(1)
}

func (m *MockInviteRepo) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockInviteRepo) RecordUse(ctx context.Context, use *models.UsedInviteCode) error {
	args := m.Called(ctx, use)
	return args.Error(0)
}

// --- SETUP ---

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-0123456789-0123456789-01",
		AccessTokenTTL: time.Hour,
	}
}

func newAuthService() (*MockUserRepo, *MockInviteRepo, AuthService) {
	users := new(MockUserRepo)
	invites := new(MockInviteRepo)
	return users, invites, NewAuthService(users, invites, testConfig())
}

// --- TESTS ---

func TestRegisterConsumesInviteCode(t *testing.T) {
	users, invites, svc := newAuthService()

	invites.On("FindByCode", mock.Anything, "welcome-1").
		Return(&models.InviteCode{Code: "welcome-1", Role: models.RoleCreator}, nil)
	users.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	invites.On("Delete", mock.Anything, "welcome-1").Return(nil)
	invites.On("RecordUse", mock.Anything, mock.MatchedBy(func(u *models.UsedInviteCode) bool {
		return u.InviteCode == "welcome-1" && u.Success
	})).Return(nil)

	user, err := svc.Register(context.Background(), "alice", "secret-password", "alice@example.com", "welcome-1")
	require.NoError(t, err)

	// role comes from the code, password is stored hashed
	assert.Equal(t, models.RoleCreator, user.Role)
	assert.NotEqual(t, "secret-password", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "secret-password"))

	invites.AssertCalled(t, "Delete", mock.Anything, "welcome-1")
}

func TestRegisterRejectsUnknownInviteCode(t *testing.T) {
	users, invites, svc := newAuthService()

	invites.On("FindByCode", mock.Anything, "bogus").Return(nil, gorm.ErrRecordNotFound)
	invites.On("RecordUse", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(context.Background(), "alice", "secret-password", "alice@example.com", "bogus")
	assert.ErrorIs(t, err, ErrInvalidInviteCode)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	users, invites, svc := newAuthService()

	invites.On("FindByCode", mock.Anything, "welcome-1").
		Return(&models.InviteCode{Code: "welcome-1", Role: models.RoleUser}, nil)
	users.On("FindByUsername", mock.Anything, "alice").Return(&models.User{ID: "existing"}, nil)
	invites.On("RecordUse", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(context.Background(), "alice", "secret-password", "alice@example.com", "welcome-1")
	assert.ErrorIs(t, err, ErrNameInUse)
}

func TestLoginAndValidateToken(t *testing.T) {
	users, _, svc := newAuthService()

	hashed, err := auth.HashPassword("secret-password")
	require.NoError(t, err)
	users.On("FindByUsername", mock.Anything, "alice").Return(&models.User{
		ID: "user-1", Username: "alice", Password: hashed, Role: models.RoleCreator,
	}, nil)

	token, user, err := svc.Login(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleCreator, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	users, _, svc := newAuthService()

	hashed, err := auth.HashPassword("secret-password")
	require.NoError(t, err)
	users.On("FindByUsername", mock.Anything, "alice").Return(&models.User{
		ID: "user-1", Username: "alice", Password: hashed,
	}, nil)

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	users, _, svc := newAuthService()

	users.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, _, svc := newAuthService()
	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
