package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

type courseRepository interface {
	ListLabels(ctx context.Context) ([]models.CourseLabel, error)
	FindLabel(ctx context.Context, id string) (*models.CourseLabel, error)
	CreateLabel(ctx context.Context, label *models.CourseLabel) error
	ListSemesterDates(ctx context.Context) ([]models.SemesterDate, error)
	CountSemesterDates(ctx context.Context, ids []string) (int, error)
	CreateSemesterDate(ctx context.Context, date *models.SemesterDate) error
	ListByDegree(ctx context.Context, degreeID string) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type levelLookup interface {
	FindLevel(ctx context.Context, id string) (*models.Level, error)
}

// CourseService manages course labels, semester dates and courses.
type CourseService struct {
	repo      courseRepository
	degrees   degreeLookup
	levels    levelLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(repo courseRepository, degrees degreeLookup, levels levelLookup, validate *validation.Validator, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, degrees: degrees, levels: levels, validator: validate, logger: logger}
}

// ListLabels returns every course label.
func (s *CourseService) ListLabels(ctx context.Context) ([]models.CourseLabel, error) {
	labels, err := s.repo.ListLabels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course labels")
	}
	return labels, nil
}

// CreateLabel adds a course label.
func (s *CourseService) CreateLabel(ctx context.Context, req dto.CreateCourseLabelRequest) (*models.CourseLabel, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	label := &models.CourseLabel{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateLabel(ctx, label); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course label")
	}
	return label, nil
}

// ListSemesterDates returns every semester date.
func (s *CourseService) ListSemesterDates(ctx context.Context) ([]models.SemesterDate, error) {
	dates, err := s.repo.ListSemesterDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester dates")
	}
	return dates, nil
}

// CreateSemesterDate adds a semester boundary.
func (s *CourseService) CreateSemesterDate(ctx context.Context, req dto.CreateSemesterDateRequest) (*models.SemesterDate, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.FieldError("date", "Enter a valid date.")
	}
	date := &models.SemesterDate{Date: day}
	if err := s.repo.CreateSemesterDate(ctx, date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester date")
	}
	return date, nil
}

// ListByDegree returns the courses of a degree.
func (s *CourseService) ListByDegree(ctx context.Context, degreeID string) ([]models.CourseDetail, error) {
	if _, err := s.degrees.GetDegree(ctx, degreeID); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListByDegree(ctx, degreeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	return course, nil
}

// Create adds a course to a degree after checking every referenced row.
func (s *CourseService) Create(ctx context.Context, degreeID string, req dto.CreateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.degrees.GetDegree(ctx, degreeID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindLabel(ctx, req.LabelID); err != nil {
		return nil, lookupError(err, "course label not found", "failed to load course label")
	}
	if req.LevelID != nil {
		if _, err := s.levels.FindLevel(ctx, *req.LevelID); err != nil {
			return nil, lookupError(err, "level not found", "failed to load level")
		}
	}
	if err := s.checkSemesterDates(ctx, req); err != nil {
		return nil, err
	}

	language := req.Language
	if language == nil {
		def := models.DefaultCourseLanguage
		language = &def
	}
	course := &models.Course{
		LabelID:               req.LabelID,
		Language:              language,
		FirstSemesterStartID:  req.FirstSemesterStartID,
		FirstSemesterEndID:    req.FirstSemesterEndID,
		SecondSemesterStartID: req.SecondSemesterStartID,
		SecondSemesterEndID:   req.SecondSemesterEndID,
		LevelID:               req.LevelID,
		DegreeID:              degreeID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return s.Get(ctx, course.ID)
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

func (s *CourseService) checkSemesterDates(ctx context.Context, req dto.CreateCourseRequest) error {
	seen := map[string]struct{}{}
	var ids []string
	for _, id := range []*string{req.FirstSemesterStartID, req.FirstSemesterEndID, req.SecondSemesterStartID, req.SecondSemesterEndID} {
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	if len(ids) == 0 {
		return nil
	}
	count, err := s.repo.CountSemesterDates(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester dates")
	}
	if count != len(ids) {
		return appErrors.Clone(appErrors.ErrNotFound, "semester date not found")
	}
	return nil
}
