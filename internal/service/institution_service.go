package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/database"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

type institutionRepository interface {
	ListUniversities(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error)
	FindUniversity(ctx context.Context, id string) (*models.University, error)
	CreateUniversity(ctx context.Context, university *models.University) error
	DeleteUniversity(ctx context.Context, id string) error
	ListSchools(ctx context.Context, universityID string) ([]models.School, error)
	FindSchool(ctx context.Context, id string) (*models.School, error)
	CreateSchool(ctx context.Context, school *models.School) error
	DeleteSchool(ctx context.Context, id string) error
	ListDegrees(ctx context.Context, schoolID string) ([]models.Degree, error)
	FindDegree(ctx context.Context, id string) (*models.Degree, error)
	CreateDegree(ctx context.Context, degree *models.Degree) error
}

type universityPage struct {
	Items []models.University `json:"items"`
	Total int                 `json:"total"`
}

// InstitutionService manages universities, schools and degrees.
type InstitutionService struct {
	repo      institutionRepository
	validator *validation.Validator
	cache     *CacheService
	logger    *zap.Logger
}

// NewInstitutionService creates a new institution service.
func NewInstitutionService(repo institutionRepository, validate *validation.Validator, cache *CacheService, logger *zap.Logger) *InstitutionService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstitutionService{repo: repo, validator: validate, cache: cache, logger: logger}
}

// ListUniversities returns a page of universities and whether it came from cache.
func (s *InstitutionService) ListUniversities(ctx context.Context, filter models.UniversityFilter) ([]models.University, *models.Pagination, bool, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	key := UniversityListKey(filter.Search, filter.Page, filter.PageSize)
	var page universityPage
	hit, _ := s.cache.Get(ctx, key, &page)
	if !hit {
		items, total, err := s.repo.ListUniversities(ctx, filter)
		if err != nil {
			return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list universities")
		}
		page = universityPage{Items: items, Total: total}
		_ = s.cache.Set(ctx, key, page, 0)
	}

	return page.Items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: page.Total}, hit, nil
}

// GetUniversity returns a university by id.
func (s *InstitutionService) GetUniversity(ctx context.Context, id string) (*models.University, error) {
	university, err := s.repo.FindUniversity(ctx, id)
	if err != nil {
		return nil, lookupError(err, "university not found", "failed to load university")
	}
	return university, nil
}

// CreateUniversity adds a university.
func (s *InstitutionService) CreateUniversity(ctx context.Context, req dto.CreateUniversityRequest) (*models.University, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	university := &models.University{Name: strings.TrimSpace(req.Name), Address: req.Address, City: req.City}
	if err := s.repo.CreateUniversity(ctx, university); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create university")
	}
	_ = s.cache.Invalidate(ctx, UniversityListPattern())
	return university, nil
}

// DeleteUniversity removes a university and everything beneath it.
func (s *InstitutionService) DeleteUniversity(ctx context.Context, id string) error {
	if _, err := s.GetUniversity(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUniversity(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete university")
	}
	_ = s.cache.Invalidate(ctx, UniversityListPattern())
	s.logger.Info("university deleted", zap.String("university_id", id))
	return nil
}

// ListSchools returns the schools of a university.
func (s *InstitutionService) ListSchools(ctx context.Context, universityID string) ([]models.School, error) {
	if _, err := s.GetUniversity(ctx, universityID); err != nil {
		return nil, err
	}
	schools, err := s.repo.ListSchools(ctx, universityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	return schools, nil
}

// GetSchool returns a school by id.
func (s *InstitutionService) GetSchool(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindSchool(ctx, id)
	if err != nil {
		return nil, lookupError(err, "school not found", "failed to load school")
	}
	return school, nil
}

// CreateSchool adds a school to a university.
func (s *InstitutionService) CreateSchool(ctx context.Context, universityID string, req dto.CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.GetUniversity(ctx, universityID); err != nil {
		return nil, err
	}
	school := &models.School{Name: strings.TrimSpace(req.Name), Address: req.Address, UniversityID: universityID}
	if err := s.repo.CreateSchool(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}
	return school, nil
}

// DeleteSchool removes a school and its degrees.
func (s *InstitutionService) DeleteSchool(ctx context.Context, id string) error {
	if _, err := s.GetSchool(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteSchool(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school")
	}
	return nil
}

// ListDegrees returns the degrees of a school.
func (s *InstitutionService) ListDegrees(ctx context.Context, schoolID string) ([]models.Degree, error) {
	if _, err := s.GetSchool(ctx, schoolID); err != nil {
		return nil, err
	}
	degrees, err := s.repo.ListDegrees(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list degrees")
	}
	return degrees, nil
}

// GetDegree returns a degree by id.
func (s *InstitutionService) GetDegree(ctx context.Context, id string) (*models.Degree, error) {
	degree, err := s.repo.FindDegree(ctx, id)
	if err != nil {
		return nil, lookupError(err, "degree not found", "failed to load degree")
	}
	return degree, nil
}

// CreateDegree adds a degree to a school.
func (s *InstitutionService) CreateDegree(ctx context.Context, schoolID string, req dto.CreateDegreeRequest) (*models.Degree, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.GetSchool(ctx, schoolID); err != nil {
		return nil, err
	}
	degree := &models.Degree{Title: strings.TrimSpace(req.Title), SchoolID: schoolID}
	if err := s.repo.CreateDegree(ctx, degree); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create degree")
	}
	return degree, nil
}

// lookupError maps a missing row or malformed key to NOT_FOUND and anything
// else to INTERNAL_ERROR.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
