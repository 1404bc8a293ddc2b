package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

type subjectRepository interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	FindLevel(ctx context.Context, id string) (*models.Level, error)
	CreateLevel(ctx context.Context, level *models.Level) error
	ListByDegree(ctx context.Context, degreeID string) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	ListExtraTitles(ctx context.Context, subjectID string) ([]models.ExtraTitle, error)
	CreateExtraTitle(ctx context.Context, title *models.ExtraTitle) error
}

type degreeLookup interface {
	GetDegree(ctx context.Context, id string) (*models.Degree, error)
}

// SubjectService manages levels, subjects and extra titles.
type SubjectService struct {
	repo      subjectRepository
	degrees   degreeLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, degrees degreeLookup, validate *validation.Validator, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, degrees: degrees, validator: validate, logger: logger}
}

// ListLevels returns every level.
func (s *SubjectService) ListLevels(ctx context.Context) ([]models.Level, error) {
	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list levels")
	}
	return levels, nil
}

// CreateLevel adds a level.
func (s *SubjectService) CreateLevel(ctx context.Context, req dto.CreateLevelRequest) (*models.Level, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	level := &models.Level{YearName: strings.TrimSpace(req.YearName)}
	if err := s.repo.CreateLevel(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create level")
	}
	return level, nil
}

// ListByDegree returns the subjects of a degree.
func (s *SubjectService) ListByDegree(ctx context.Context, degreeID string) ([]models.Subject, error) {
	if _, err := s.degrees.GetDegree(ctx, degreeID); err != nil {
		return nil, err
	}
	subjects, err := s.repo.ListByDegree(ctx, degreeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject to a degree.
func (s *SubjectService) Create(ctx context.Context, degreeID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.degrees.GetDegree(ctx, degreeID); err != nil {
		return nil, err
	}
	if req.LevelID != nil {
		if _, err := s.repo.FindLevel(ctx, *req.LevelID); err != nil {
			return nil, lookupError(err, "level not found", "failed to load level")
		}
	}

	subject := &models.Subject{
		Code:        req.Code,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		LevelID:     req.LevelID,
		DegreeID:    degreeID,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// ListExtraTitles returns the alternative titles of a subject.
func (s *SubjectService) ListExtraTitles(ctx context.Context, subjectID string) ([]models.ExtraTitle, error) {
	if _, err := s.Get(ctx, subjectID); err != nil {
		return nil, err
	}
	titles, err := s.repo.ListExtraTitles(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list extra titles")
	}
	return titles, nil
}

// CreateExtraTitle adds an alternative title, English unless told otherwise.
func (s *SubjectService) CreateExtraTitle(ctx context.Context, subjectID string, req dto.CreateExtraTitleRequest) (*models.ExtraTitle, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, subjectID); err != nil {
		return nil, err
	}
	language := req.Language
	if language == "" {
		language = models.DefaultExtraTitleLanguage
	}
	title := &models.ExtraTitle{Title: strings.TrimSpace(req.Title), Language: language, SubjectID: subjectID}
	if err := s.repo.CreateExtraTitle(ctx, title); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create extra title")
	}
	return title, nil
}
