package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/database"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/export"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

const subjectTaughtMessage = "subject is already being taught"

var timetableExportHeaders = []string{"Week day", "Start", "Duration", "Period", "Description"}

type teachingSubjectRepository interface {
	Create(ctx context.Context, ts *models.TeachingSubject) error
	ExistsForSubject(ctx context.Context, subjectID string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.TeachingSubjectDetail, error)
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.TeachingSubjectDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSubjectDetail, error)
	ListStudents(ctx context.Context, id string) ([]models.Member, error)
	ListTeachers(ctx context.Context, id string) ([]models.Member, error)
	AddStudent(ctx context.Context, id, studentID string) error
	RemoveStudent(ctx context.Context, id, studentID string) error
	AddTeacher(ctx context.Context, id, teacherID string) error
	RemoveTeacher(ctx context.Context, id, teacherID string) error
	ListExams(ctx context.Context, id string) ([]models.Exam, error)
	CreateExam(ctx context.Context, exam *models.Exam) error
	ListTimetables(ctx context.Context, id string) ([]models.Timetable, error)
	CreateTimetable(ctx context.Context, slot *models.Timetable) error
}

type subjectLookup interface {
	Get(ctx context.Context, id string) (*models.Subject, error)
}

type courseLookup interface {
	Get(ctx context.Context, id string) (*models.CourseDetail, error)
}

type memberLookup interface {
	FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

// TimetableExport is a rendered timetable document.
type TimetableExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TeachingSubjectService manages teaching subjects with their members, exams and timetables.
type TeachingSubjectService struct {
	repo      teachingSubjectRepository
	subjects  subjectLookup
	courses   courseLookup
	members   memberLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewTeachingSubjectService creates a new teaching subject service.
func NewTeachingSubjectService(repo teachingSubjectRepository, subjects subjectLookup, courses courseLookup, members memberLookup, validate *validation.Validator, logger *zap.Logger) *TeachingSubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachingSubjectService{repo: repo, subjects: subjects, courses: courses, members: members, validator: validate, logger: logger}
}

// Create starts teaching a subject. A subject has at most one teaching subject;
// the unique constraint settles concurrent creates that pass the check.
func (s *TeachingSubjectService) Create(ctx context.Context, req dto.CreateTeachingSubjectRequest) (*models.TeachingSubjectDetail, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.subjects.Get(ctx, req.SubjectID); err != nil {
		return nil, err
	}
	if req.CourseID != nil {
		if _, err := s.courses.Get(ctx, *req.CourseID); err != nil {
			return nil, err
		}
	}

	taught, err := s.repo.ExistsForSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teaching subject")
	}
	if taught {
		return nil, appErrors.Clone(appErrors.ErrConflict, subjectTaughtMessage)
	}

	ts := &models.TeachingSubject{Address: req.Address, CourseID: req.CourseID, SubjectID: req.SubjectID}
	if err := s.repo.Create(ctx, ts); err != nil {
		if database.IsUniqueViolation(err, "teaching_subjects_subject_id_key") {
			return nil, appErrors.Clone(appErrors.ErrConflict, subjectTaughtMessage)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teaching subject")
	}
	return s.Get(ctx, ts.ID)
}

// Get returns a teaching subject with its students and teachers.
func (s *TeachingSubjectService) Get(ctx context.Context, id string) (*models.TeachingSubjectDetail, error) {
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Students, err = s.repo.ListStudents(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if detail.Teachers, err = s.repo.ListTeachers(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if detail.Students == nil {
		detail.Students = []models.Member{}
	}
	if detail.Teachers == nil {
		detail.Teachers = []models.Member{}
	}
	return detail, nil
}

// Delete removes a teaching subject.
func (s *TeachingSubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teaching subject")
	}
	return nil
}

// ForUser returns the teaching subjects the user teaches followed by those
// the user is enrolled in.
func (s *TeachingSubjectService) ForUser(ctx context.Context, user *models.User) ([]models.TeachingSubjectDetail, error) {
	items := []models.TeachingSubjectDetail{}

	teacher, err := s.members.FindTeacherByUserID(ctx, user.ID)
	switch {
	case err == nil:
		taught, err := s.repo.ListByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching subjects")
		}
		items = append(items, taught...)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	student, err := s.members.FindStudentByUserID(ctx, user.ID)
	switch {
	case err == nil:
		enrolled, err := s.repo.ListByStudent(ctx, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching subjects")
		}
		items = append(items, enrolled...)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	return items, nil
}

// AddStudent enrolls a student.
func (s *TeachingSubjectService) AddStudent(ctx context.Context, id, studentID string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.AddStudent(ctx, id, studentID); err != nil {
		return membershipError(err, "student not found")
	}
	return nil
}

// RemoveStudent drops an enrollment.
func (s *TeachingSubjectService) RemoveStudent(ctx context.Context, id, studentID string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.RemoveStudent(ctx, id, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove student")
	}
	return nil
}

// AddTeacher assigns a teacher.
func (s *TeachingSubjectService) AddTeacher(ctx context.Context, id, teacherID string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.AddTeacher(ctx, id, teacherID); err != nil {
		return membershipError(err, "teacher not found")
	}
	return nil
}

// RemoveTeacher drops a teacher assignment.
func (s *TeachingSubjectService) RemoveTeacher(ctx context.Context, id, teacherID string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.RemoveTeacher(ctx, id, teacherID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove teacher")
	}
	return nil
}

// ListExams returns the exams of a teaching subject.
func (s *TeachingSubjectService) ListExams(ctx context.Context, id string) ([]models.Exam, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	exams, err := s.repo.ListExams(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// CreateExam schedules an exam. Duration defaults to 30 minutes.
func (s *TeachingSubjectService) CreateExam(ctx context.Context, id string, req dto.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	exam := &models.Exam{Title: req.Title, Address: req.Address, Duration: withDefaultDuration(req.Duration), TeachingSubjectID: id}
	if req.Date != nil {
		day, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.FieldError("date", "Enter a valid date.")
		}
		exam.Date = &day
	}
	if err := s.repo.CreateExam(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// ListTimetables returns the weekly slots of a teaching subject.
func (s *TeachingSubjectService) ListTimetables(ctx context.Context, id string) ([]models.Timetable, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	slots, err := s.repo.ListTimetables(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return slots, nil
}

// CreateTimetable adds a weekly slot. Week day and period default to "1",
// duration to 30 minutes.
func (s *TeachingSubjectService) CreateTimetable(ctx context.Context, id string, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	start, ok := validation.ParseClock(req.StartAt)
	if !ok {
		return nil, appErrors.FieldError("start_at", "Enter a valid time.")
	}

	slot := &models.Timetable{
		StartAt:           start,
		WeekDay:           firstNonEmpty(req.WeekDay, models.DefaultWeekDay),
		Description:       req.Description,
		Period:            firstNonEmpty(req.Period, models.DefaultPeriod),
		Duration:          withDefaultDuration(req.Duration),
		TeachingSubjectID: id,
	}
	if err := s.repo.CreateTimetable(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return slot, nil
}

// ExportTimetables renders the weekly slots as csv, pdf or xlsx.
func (s *TeachingSubjectService) ExportTimetables(ctx context.Context, id, format string) (*TimetableExport, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.FieldError("format", "Select a valid choice. That choice is not one of the available choices.")
	}
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	slots, err := s.repo.ListTimetables(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	dataset := export.Dataset{Title: detail.String() + " timetable", Headers: timetableExportHeaders}
	for _, slot := range slots {
		duration := ""
		if slot.Duration != nil {
			duration = strconv.Itoa(*slot.Duration)
		}
		description := ""
		if slot.Description != nil {
			description = *slot.Description
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Week day":    models.ChoiceLabel(models.WeekDays, slot.WeekDay),
			"Start":       slot.StartAt,
			"Duration":    duration,
			"Period":      models.ChoiceLabel(models.Periods, slot.Period),
			"Description": description,
		})
	}

	body, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.logger.Debug("timetable exported", zap.String("teaching_subject_id", id), zap.String("format", exporter.Extension()))
	return &TimetableExport{
		Filename:    fmt.Sprintf("timetable-%s.%s", id, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func (s *TeachingSubjectService) find(ctx context.Context, id string) (*models.TeachingSubjectDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teaching subject not found", "failed to load teaching subject")
	}
	return detail, nil
}

func membershipError(err error, notFound string) error {
	if database.IsForeignKeyViolation(err) || database.IsInvalidText(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update members")
}

func withDefaultDuration(duration *int) *int {
	if duration != nil {
		return duration
	}
	d := models.DefaultDurationMinutes
	return &d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
