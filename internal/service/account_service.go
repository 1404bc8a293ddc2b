package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/database"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

const (
	usernameTakenMessage = "A user with that username already exists."
	invalidTokenMessage  = "Invalid token."
	inactiveTokenMessage = "User inactive or deleted."
)

type accountRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, user *models.User, role models.AccountRole, teacher *models.Teacher, token *models.AuthToken) error
	IsTeacher(ctx context.Context, userID string) (bool, error)
	IsStudent(ctx context.Context, userID string) (bool, error)
	GetOrCreateToken(ctx context.Context, userID, key string) (string, error)
	FindUserByToken(ctx context.Context, key string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// AccountConfig tunes hashing and token issuance.
type AccountConfig struct {
	TokenKeyBytes int
	BcryptCost    int
	TokenCacheTTL time.Duration
}

// AccountService creates application accounts and issues API tokens.
type AccountService struct {
	repo      accountRepository
	validator *validation.Validator
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	config    AccountConfig
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(repo accountRepository, validate *validation.Validator, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config AccountConfig) *AccountService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenKeyBytes <= 0 {
		config.TokenKeyBytes = 20
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{repo: repo, validator: validate, cache: cache, metrics: metrics, logger: logger, config: config}
}

// CreateAppUser validates the role specific form, then creates the user, its
// role row and its token together.
func (s *AccountService) CreateAppUser(ctx context.Context, req dto.CreateAppUserRequest) (*dto.TokenResponse, error) {
	role, ok := models.ParseAccountRole(req.Role)
	if !ok {
		return nil, appErrors.ErrUnsupportedRole
	}

	var teacher *models.Teacher
	form := req.StudentForm()
	if role == models.RoleTeacher {
		teacherForm := req.TeacherForm()
		if err := s.validator.Check(teacherForm); err != nil {
			return nil, err
		}
		teacher = &models.Teacher{Dept: optional(teacherForm.Dept), Description: optional(teacherForm.Description)}
	} else if err := s.validator.Check(form); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, form.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.FieldError("username", usernameTakenMessage)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	key, err := newTokenKey(s.config.TokenKeyBytes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	token := &models.AuthToken{Key: key}
	if err := s.repo.CreateAccount(ctx, user, role, teacher, token); err != nil {
		if database.IsUniqueViolation(err, "users_username_key") {
			return nil, appErrors.FieldError("username", usernameTakenMessage)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	s.metrics.AccountCreated(string(role))
	s.logger.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return &dto.TokenResponse{Token: token.Key}, nil
}

// ObtainToken checks credentials and returns the user's token with its role.
// Teachers take precedence over students.
func (s *AccountService) ObtainToken(ctx context.Context, req dto.ObtainTokenRequest) (*dto.ObtainTokenResponse, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nonFieldError(appErrors.ErrInvalidCredentials)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nonFieldError(appErrors.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, nonFieldError(appErrors.ErrInactiveAccount)
	}

	role, err := s.resolveRole(ctx, user)
	if err != nil {
		return nil, err
	}

	key, err := newTokenKey(s.config.TokenKeyBytes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}
	stored, err := s.repo.GetOrCreateToken(ctx, user.ID, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.metrics.TokenObtained(string(role))
	return &dto.ObtainTokenResponse{Token: stored, Role: string(role)}, nil
}

func (s *AccountService) resolveRole(ctx context.Context, user *models.User) (models.AccountRole, error) {
	isTeacher, err := s.repo.IsTeacher(ctx, user.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}
	isStudent, err := s.repo.IsStudent(ctx, user.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}

	switch {
	case isTeacher && isStudent:
		s.logger.Warn("user is both teacher and student, reporting teacher",
			zap.String("user_id", user.ID), zap.String("username", user.Username))
		return models.RoleTeacher, nil
	case isTeacher:
		return models.RoleTeacher, nil
	case isStudent:
		return models.RoleStudent, nil
	default:
		return "", nil
	}
}

// Authenticate resolves the active owner of an API key. Lookups are cached
// when Redis caching is enabled.
func (s *AccountService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, invalidTokenMessage)
	}

	cacheKey := TokenKey(key)
	var cached models.User
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	user, err := s.repo.FindUserByToken(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, invalidTokenMessage)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to authenticate token")
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, inactiveTokenMessage)
	}

	_ = s.cache.Set(ctx, cacheKey, user, s.config.TokenCacheTTL)
	return user, nil
}

func nonFieldError(err *appErrors.Error) *appErrors.Error {
	return appErrors.WithDetails(err, map[string][]string{appErrors.NonFieldErrors: {err.Message}})
}

func newTokenKey(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
