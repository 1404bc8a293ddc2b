package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

const (
	subjectID = "8b7c2f0e-4a55-4d8c-9a61-0f1e2d3c4b5a"
	courseID  = "1f2e3d4c-5b6a-4978-8a9b-0c1d2e3f4a5b"
)

type mockTeachingSubjectRepo struct {
	items      map[string]*models.TeachingSubjectDetail
	bySubject  map[string]bool
	timetables []models.Timetable
	exams      []models.Exam
	byStudent  map[string][]models.TeachingSubjectDetail
	byTeacher  map[string][]models.TeachingSubjectDetail
	addErr     error
	raceCreate bool
	created    int
}

func newMockTeachingSubjectRepo() *mockTeachingSubjectRepo {
	return &mockTeachingSubjectRepo{
		items:     map[string]*models.TeachingSubjectDetail{},
		bySubject: map[string]bool{},
		byStudent: map[string][]models.TeachingSubjectDetail{},
		byTeacher: map[string][]models.TeachingSubjectDetail{},
	}
}

func (m *mockTeachingSubjectRepo) Create(ctx context.Context, ts *models.TeachingSubject) error {
	if m.bySubject[ts.SubjectID] {
		return fmt.Errorf("create teaching subject: %w", &pq.Error{Code: "23505", Constraint: "teaching_subjects_subject_id_key"})
	}
	m.created++
	ts.ID = fmt.Sprintf("ts-%d", len(m.items)+1)
	m.bySubject[ts.SubjectID] = true
	m.items[ts.ID] = &models.TeachingSubjectDetail{TeachingSubject: *ts, SubjectTitle: "Algebra"}
	return nil
}

func (m *mockTeachingSubjectRepo) ExistsForSubject(ctx context.Context, subjectID string) (bool, error) {
	if m.raceCreate {
		return false, nil
	}
	return m.bySubject[subjectID], nil
}

func (m *mockTeachingSubjectRepo) FindByID(ctx context.Context, id string) (*models.TeachingSubjectDetail, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail := *item
	return &detail, nil
}

func (m *mockTeachingSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockTeachingSubjectRepo) ListByStudent(ctx context.Context, studentID string) ([]models.TeachingSubjectDetail, error) {
	return m.byStudent[studentID], nil
}

func (m *mockTeachingSubjectRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSubjectDetail, error) {
	return m.byTeacher[teacherID], nil
}

func (m *mockTeachingSubjectRepo) ListStudents(ctx context.Context, id string) ([]models.Member, error) {
	return nil, nil
}

func (m *mockTeachingSubjectRepo) ListTeachers(ctx context.Context, id string) ([]models.Member, error) {
	return []models.Member{{ID: "t1", Username: "grace"}}, nil
}

func (m *mockTeachingSubjectRepo) AddStudent(ctx context.Context, id, studentID string) error {
	return m.addErr
}

func (m *mockTeachingSubjectRepo) RemoveStudent(ctx context.Context, id, studentID string) error {
	return nil
}

func (m *mockTeachingSubjectRepo) AddTeacher(ctx context.Context, id, teacherID string) error {
	return m.addErr
}

func (m *mockTeachingSubjectRepo) RemoveTeacher(ctx context.Context, id, teacherID string) error {
	return nil
}

func (m *mockTeachingSubjectRepo) ListExams(ctx context.Context, id string) ([]models.Exam, error) {
	return m.exams, nil
}

func (m *mockTeachingSubjectRepo) CreateExam(ctx context.Context, exam *models.Exam) error {
	m.exams = append(m.exams, *exam)
	return nil
}

func (m *mockTeachingSubjectRepo) ListTimetables(ctx context.Context, id string) ([]models.Timetable, error) {
	return m.timetables, nil
}

func (m *mockTeachingSubjectRepo) CreateTimetable(ctx context.Context, slot *models.Timetable) error {
	m.timetables = append(m.timetables, *slot)
	return nil
}

type stubSubjects map[string]*models.Subject

func (s stubSubjects) Get(ctx context.Context, id string) (*models.Subject, error) {
	if subject, ok := s[id]; ok {
		return subject, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
}

type stubCourses map[string]*models.CourseDetail

func (s stubCourses) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	if course, ok := s[id]; ok {
		return course, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

type stubMembers struct {
	students map[string]*models.Student
	teachers map[string]*models.Teacher
}

func (s stubMembers) FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if student, ok := s.students[userID]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (s stubMembers) FindTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if teacher, ok := s.teachers[userID]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

func newTestTeachingSubjectService(repo *mockTeachingSubjectRepo, members stubMembers) *TeachingSubjectService {
	subjects := stubSubjects{subjectID: {ID: subjectID, Title: "Algebra"}}
	courses := stubCourses{courseID: {Course: models.Course{ID: courseID}, LabelName: "A"}}
	return NewTeachingSubjectService(repo, subjects, courses, members, nil, nil)
}

func TestCreateTeachingSubjectOncePerSubject(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	created, err := svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: subjectID})
	require.NoError(t, err)
	assert.Equal(t, subjectID, created.SubjectID)
	assert.Len(t, created.Teachers, 1)
	assert.NotNil(t, created.Students)

	_, err = svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: subjectID})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, 1, repo.created)
}

func TestCreateTeachingSubjectConcurrentDuplicate(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	repo.bySubject[subjectID] = true
	repo.raceCreate = true
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	_, err := svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: subjectID})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "subject is already being taught", appErr.Message)
	assert.Empty(t, repo.items)
}

func TestCreateTeachingSubjectUnknownRefs(t *testing.T) {
	svc := newTestTeachingSubjectService(newMockTeachingSubjectRepo(), stubMembers{})

	_, err := svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: courseID})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	missingCourse := subjectID
	_, err = svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: subjectID, CourseID: &missingCourse})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.CreateTeachingSubjectRequest{SubjectID: "nope"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateTimetableDefaults(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	repo.items["ts-1"] = &models.TeachingSubjectDetail{TeachingSubject: models.TeachingSubject{ID: "ts-1"}}
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	slot, err := svc.CreateTimetable(context.Background(), "ts-1", dto.CreateTimetableRequest{StartAt: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", slot.StartAt)
	assert.Equal(t, "1", slot.WeekDay)
	assert.Equal(t, "1", slot.Period)
	require.NotNil(t, slot.Duration)
	assert.Equal(t, 30, *slot.Duration)

	_, err = svc.CreateTimetable(context.Background(), "ts-1", dto.CreateTimetableRequest{StartAt: "09:30", WeekDay: "8"})
	assert.Contains(t, appErrors.FromError(err).Details, "week_day")

	negative := -5
	_, err = svc.CreateTimetable(context.Background(), "ts-1", dto.CreateTimetableRequest{StartAt: "09:30", Duration: &negative})
	assert.Contains(t, appErrors.FromError(err).Details, "duration")

	_, err = svc.CreateTimetable(context.Background(), "missing", dto.CreateTimetableRequest{StartAt: "09:30"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateExamParsesDate(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	repo.items["ts-1"] = &models.TeachingSubjectDetail{TeachingSubject: models.TeachingSubject{ID: "ts-1"}}
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	date := "2024-06-20"
	exam, err := svc.CreateExam(context.Background(), "ts-1", dto.CreateExamRequest{Date: &date})
	require.NoError(t, err)
	require.NotNil(t, exam.Date)
	assert.Equal(t, "2024-06-20", exam.Date.Format("2006-01-02"))
	assert.Equal(t, 30, *exam.Duration)

	bad := "20/06/2024"
	_, err = svc.CreateExam(context.Background(), "ts-1", dto.CreateExamRequest{Date: &bad})
	assert.Contains(t, appErrors.FromError(err).Details, "date")
}

func TestExportTimetablesCSV(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	code := 101
	repo.items["ts-1"] = &models.TeachingSubjectDetail{TeachingSubject: models.TeachingSubject{ID: "ts-1"}, SubjectCode: &code, SubjectTitle: "Algebra"}
	duration := 90
	repo.timetables = []models.Timetable{{StartAt: "11:30:00", WeekDay: "3", Period: "2", Duration: &duration}}
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	out, err := svc.ExportTimetables(context.Background(), "ts-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable-ts-1.csv", out.Filename)
	lines := strings.Split(strings.TrimSpace(string(out.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Week day,Start,Duration,Period,Description", lines[0])
	assert.Equal(t, "Wednesday,11:30:00,90,Second semester,", lines[1])

	_, err = svc.ExportTimetables(context.Background(), "ts-1", "docx")
	assert.Contains(t, appErrors.FromError(err).Details, "format")
}

func TestForUserCombinesRoles(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	repo.byTeacher["teacher-1"] = []models.TeachingSubjectDetail{{SubjectTitle: "Algebra"}}
	repo.byStudent["student-1"] = []models.TeachingSubjectDetail{{SubjectTitle: "Physics"}}
	members := stubMembers{
		students: map[string]*models.Student{"u1": {ID: "student-1"}},
		teachers: map[string]*models.Teacher{"u1": {ID: "teacher-1"}},
	}
	svc := newTestTeachingSubjectService(repo, members)

	items, err := svc.ForUser(context.Background(), &models.User{ID: "u1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Algebra", items[0].SubjectTitle)
	assert.Equal(t, "Physics", items[1].SubjectTitle)

	items, err = svc.ForUser(context.Background(), &models.User{ID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestAddStudentUnknown(t *testing.T) {
	repo := newMockTeachingSubjectRepo()
	repo.items["ts-1"] = &models.TeachingSubjectDetail{TeachingSubject: models.TeachingSubject{ID: "ts-1"}}
	repo.addErr = fmt.Errorf("add teaching subject student: %w", &pq.Error{Code: "23503"})
	svc := newTestTeachingSubjectService(repo, stubMembers{})

	err := svc.AddStudent(context.Background(), "ts-1", "ghost")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "student not found", appErr.Message)
}
