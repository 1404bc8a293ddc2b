package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

type mockAccountRepo struct {
	users       map[string]*models.User
	tokens      map[string]string
	teachers    map[string]bool
	students    map[string]bool
	createErr   error
	created     *models.User
	createdRole models.AccountRole
	teacher     *models.Teacher
	lastLogin   bool
	tokenLookup int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		users:    map[string]*models.User{},
		tokens:   map[string]string{},
		teachers: map[string]bool{},
		students: map[string]bool{},
	}
}

func (m *mockAccountRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *mockAccountRepo) CreateAccount(ctx context.Context, user *models.User, role models.AccountRole, teacher *models.Teacher, token *models.AuthToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "user-" + user.Username
	token.UserID = user.ID
	m.users[user.Username] = user
	m.tokens[user.ID] = token.Key
	m.created = user
	m.createdRole = role
	m.teacher = teacher
	return nil
}

func (m *mockAccountRepo) IsTeacher(ctx context.Context, userID string) (bool, error) {
	return m.teachers[userID], nil
}

func (m *mockAccountRepo) IsStudent(ctx context.Context, userID string) (bool, error) {
	return m.students[userID], nil
}

func (m *mockAccountRepo) GetOrCreateToken(ctx context.Context, userID, key string) (string, error) {
	if existing, ok := m.tokens[userID]; ok {
		return existing, nil
	}
	m.tokens[userID] = key
	return key, nil
}

func (m *mockAccountRepo) FindUserByToken(ctx context.Context, key string) (*models.User, error) {
	m.tokenLookup++
	for userID, k := range m.tokens {
		if k != key {
			continue
		}
		for _, user := range m.users {
			if user.ID == userID {
				return user, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.lastLogin = true
	return nil
}

func newTestAccountService(repo *mockAccountRepo) *AccountService {
	return NewAccountService(repo, nil, nil, nil, nil, AccountConfig{BcryptCost: bcrypt.MinCost})
}

func addUser(t *testing.T, repo *mockAccountRepo, username, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "user-" + username, Username: username, PasswordHash: string(hash), IsActive: active}
	repo.users[username] = user
	return user
}

func TestCreateAppUserRejectsUnknownRole(t *testing.T) {
	svc := newTestAccountService(newMockAccountRepo())

	for _, role := range []string{"", "admin", "Student"} {
		_, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: role, Username: "ada", Password: "pw"})
		appErr := appErrors.FromError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrUnsupportedRole.Code, appErr.Code, role)
		assert.Equal(t, "Role not supported", appErr.Message)
	}
}

func TestCreateAppUserStudent(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo)

	resp, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: "student", Username: "ada", Password: "secret", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Len(t, resp.Token, 40)
	assert.Equal(t, models.RoleStudent, repo.createdRole)
	assert.True(t, repo.created.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("secret")))
	assert.Equal(t, resp.Token, repo.tokens[repo.created.ID])
}

func TestCreateAppUserTeacherProfile(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo)

	_, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: "teacher", Username: "grace", Password: "secret", Dept: "Computing"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, repo.createdRole)
	require.NotNil(t, repo.teacher)
	require.NotNil(t, repo.teacher.Dept)
	assert.Equal(t, "Computing", *repo.teacher.Dept)
	assert.Nil(t, repo.teacher.Description)
}

func TestCreateAppUserFieldErrors(t *testing.T) {
	svc := newTestAccountService(newMockAccountRepo())

	_, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: "student", Username: "bad name!", Email: "nope"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "username")
	assert.Equal(t, []string{"This field is required."}, appErr.Details["password"])
	assert.Equal(t, []string{"Enter a valid email address."}, appErr.Details["email"])
}

func TestCreateAppUserDuplicateUsername(t *testing.T) {
	repo := newMockAccountRepo()
	addUser(t, repo, "ada", "pw", true)
	svc := newTestAccountService(repo)

	_, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: "teacher", Username: "ada", Password: "pw"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, []string{"A user with that username already exists."}, appErr.Details["username"])
	assert.Nil(t, repo.created)
}

func TestCreateAppUserConcurrentDuplicate(t *testing.T) {
	repo := newMockAccountRepo()
	repo.createErr = fmt.Errorf("insert user: %w", &pq.Error{Code: "23505", Constraint: "users_username_key"})
	svc := newTestAccountService(repo)

	_, err := svc.CreateAppUser(context.Background(), dto.CreateAppUserRequest{Role: "student", Username: "ada", Password: "pw"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, []string{"A user with that username already exists."}, appErr.Details["username"])
}

func TestObtainTokenRoleResolution(t *testing.T) {
	cases := []struct {
		name     string
		teacher  bool
		student  bool
		expected string
	}{
		{"teacher", true, false, "teacher"},
		{"student", false, true, "student"},
		{"both prefers teacher", true, true, "teacher"},
		{"neither", false, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockAccountRepo()
			user := addUser(t, repo, "ada", "pw", true)
			repo.teachers[user.ID] = tc.teacher
			repo.students[user.ID] = tc.student
			svc := newTestAccountService(repo)

			resp, err := svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "ada", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resp.Role)
			assert.Len(t, resp.Token, 40)
			assert.True(t, repo.lastLogin)
		})
	}
}

func TestObtainTokenReturnsExistingToken(t *testing.T) {
	repo := newMockAccountRepo()
	user := addUser(t, repo, "ada", "pw", true)
	repo.tokens[user.ID] = "existing-key"
	svc := newTestAccountService(repo)

	first, err := svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	second, err := svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "existing-key", first.Token)
	assert.Equal(t, first.Token, second.Token)
}

func TestObtainTokenInvalidCredentials(t *testing.T) {
	repo := newMockAccountRepo()
	addUser(t, repo, "ada", "pw", true)
	addUser(t, repo, "off", "pw", false)
	svc := newTestAccountService(repo)

	_, err := svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "ada", Password: "wrong"})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, []string{"Unable to log in with provided credentials."}, appErr.Details[appErrors.NonFieldErrors])

	_, err = svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "ghost", Password: "pw"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{Username: "off", Password: "pw"})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
	assert.Equal(t, []string{"User account is disabled."}, appErr.Details[appErrors.NonFieldErrors])

	_, err = svc.ObtainToken(context.Background(), dto.ObtainTokenRequest{})
	appErr = appErrors.FromError(err)
	assert.Contains(t, appErr.Details, "username")
	assert.Contains(t, appErr.Details, "password")
}

func TestAuthenticate(t *testing.T) {
	repo := newMockAccountRepo()
	user := addUser(t, repo, "ada", "pw", true)
	inactive := addUser(t, repo, "off", "pw", false)
	repo.tokens[user.ID] = "good"
	repo.tokens[inactive.ID] = "stale"
	svc := newTestAccountService(repo)

	got, err := svc.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "unknown")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Authenticate(context.Background(), "stale")
	assert.Equal(t, "User inactive or deleted.", appErrors.FromError(err).Message)

	_, err = svc.Authenticate(context.Background(), " ")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthenticateServesCachedUserUntilExpiry(t *testing.T) {
	repo := newMockAccountRepo()
	user := addUser(t, repo, "ada", "pw", true)
	repo.tokens[user.ID] = "good"
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewAccountService(repo, nil, cache, nil, nil, AccountConfig{BcryptCost: bcrypt.MinCost, TokenCacheTTL: time.Minute})

	_, err := svc.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	require.Contains(t, cacheRepo.values, TokenKey("good"))

	user.IsActive = false
	got, err := svc.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, 1, repo.tokenLookup)

	delete(cacheRepo.values, TokenKey("good"))
	_, err = svc.Authenticate(context.Background(), "good")
	assert.Equal(t, "User inactive or deleted.", appErrors.FromError(err).Message)
	assert.Equal(t, 2, repo.tokenLookup)
}
