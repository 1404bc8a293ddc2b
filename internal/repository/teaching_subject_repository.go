package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

const teachingSubjectDetailSelect = `SELECT ts.id, ts.address, ts.course_id, ts.subject_id,
s.code AS subject_code, s.title AS subject_title, cl.name AS course_label, l.year_name AS course_level
FROM teaching_subjects ts
JOIN subjects s ON s.id = ts.subject_id
LEFT JOIN courses c ON c.id = ts.course_id
LEFT JOIN course_labels cl ON cl.id = c.label_id
LEFT JOIN levels l ON l.id = c.level_id`

// TeachingSubjectRepository handles teaching subjects, their members, exams and timetables.
type TeachingSubjectRepository struct {
	db *sqlx.DB
}

// NewTeachingSubjectRepository creates a new repository instance.
func NewTeachingSubjectRepository(db *sqlx.DB) *TeachingSubjectRepository {
	return &TeachingSubjectRepository{db: db}
}

// Create persists a teaching subject. A second row for the same subject
// fails with the teaching_subjects_subject_id_key unique violation.
func (r *TeachingSubjectRepository) Create(ctx context.Context, ts *models.TeachingSubject) error {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	const query = `INSERT INTO teaching_subjects (id, address, course_id, subject_id) VALUES (:id, :address, :course_id, :subject_id)`
	if _, err := r.db.NamedExecContext(ctx, query, ts); err != nil {
		return fmt.Errorf("create teaching subject: %w", err)
	}
	return nil
}

// ExistsForSubject reports whether the subject is already being taught.
func (r *TeachingSubjectRepository) ExistsForSubject(ctx context.Context, subjectID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM teaching_subjects WHERE subject_id = $1)`, subjectID); err != nil {
		return false, fmt.Errorf("check teaching subject: %w", err)
	}
	return exists, nil
}

// FindByID returns a teaching subject with its display fields.
func (r *TeachingSubjectRepository) FindByID(ctx context.Context, id string) (*models.TeachingSubjectDetail, error) {
	var detail models.TeachingSubjectDetail
	if err := r.db.GetContext(ctx, &detail, teachingSubjectDetailSelect+" WHERE ts.id = $1", id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Delete removes a teaching subject with its memberships, exams and timetables.
func (r *TeachingSubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teaching_subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teaching subject: %w", err)
	}
	return nil
}

// ListByStudent returns the teaching subjects a student is enrolled in.
func (r *TeachingSubjectRepository) ListByStudent(ctx context.Context, studentID string) ([]models.TeachingSubjectDetail, error) {
	query := teachingSubjectDetailSelect + ` JOIN teaching_subject_students tss ON tss.teaching_subject_id = ts.id
WHERE tss.student_id = $1 ORDER BY s.code ASC NULLS LAST, s.title ASC`
	var items []models.TeachingSubjectDetail
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list teaching subjects by student: %w", err)
	}
	return items, nil
}

// ListByTeacher returns the teaching subjects a teacher teaches.
func (r *TeachingSubjectRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeachingSubjectDetail, error) {
	query := teachingSubjectDetailSelect + ` JOIN teaching_subject_teachers tst ON tst.teaching_subject_id = ts.id
WHERE tst.teacher_id = $1 ORDER BY s.code ASC NULLS LAST, s.title ASC`
	var items []models.TeachingSubjectDetail
	if err := r.db.SelectContext(ctx, &items, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teaching subjects by teacher: %w", err)
	}
	return items, nil
}

// ListStudents returns the enrolled students joined with their users.
func (r *TeachingSubjectRepository) ListStudents(ctx context.Context, id string) ([]models.Member, error) {
	const query = `SELECT st.id, st.user_id, u.username, u.first_name, u.last_name
FROM teaching_subject_students tss
JOIN students st ON st.id = tss.student_id
JOIN users u ON u.id = st.user_id
WHERE tss.teaching_subject_id = $1 ORDER BY u.username ASC`
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, id); err != nil {
		return nil, fmt.Errorf("list teaching subject students: %w", err)
	}
	return members, nil
}

// ListTeachers returns the assigned teachers joined with their users.
func (r *TeachingSubjectRepository) ListTeachers(ctx context.Context, id string) ([]models.Member, error) {
	const query = `SELECT te.id, te.user_id, u.username, u.first_name, u.last_name
FROM teaching_subject_teachers tst
JOIN teachers te ON te.id = tst.teacher_id
JOIN users u ON u.id = te.user_id
WHERE tst.teaching_subject_id = $1 ORDER BY u.username ASC`
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, id); err != nil {
		return nil, fmt.Errorf("list teaching subject teachers: %w", err)
	}
	return members, nil
}

// AddStudent enrolls a student. Enrolling twice is a no-op.
func (r *TeachingSubjectRepository) AddStudent(ctx context.Context, id, studentID string) error {
	const query = `INSERT INTO teaching_subject_students (teaching_subject_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, id, studentID); err != nil {
		return fmt.Errorf("add teaching subject student: %w", err)
	}
	return nil
}

// RemoveStudent drops an enrollment.
func (r *TeachingSubjectRepository) RemoveStudent(ctx context.Context, id, studentID string) error {
	const query = `DELETE FROM teaching_subject_students WHERE teaching_subject_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, studentID); err != nil {
		return fmt.Errorf("remove teaching subject student: %w", err)
	}
	return nil
}

// AddTeacher assigns a teacher. Assigning twice is a no-op.
func (r *TeachingSubjectRepository) AddTeacher(ctx context.Context, id, teacherID string) error {
	const query = `INSERT INTO teaching_subject_teachers (teaching_subject_id, teacher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, id, teacherID); err != nil {
		return fmt.Errorf("add teaching subject teacher: %w", err)
	}
	return nil
}

// RemoveTeacher drops a teacher assignment.
func (r *TeachingSubjectRepository) RemoveTeacher(ctx context.Context, id, teacherID string) error {
	const query = `DELETE FROM teaching_subject_teachers WHERE teaching_subject_id = $1 AND teacher_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, teacherID); err != nil {
		return fmt.Errorf("remove teaching subject teacher: %w", err)
	}
	return nil
}

// ListExams returns the exams of a teaching subject, soonest first.
func (r *TeachingSubjectRepository) ListExams(ctx context.Context, id string) ([]models.Exam, error) {
	const query = `SELECT id, title, address, duration, date, teaching_subject_id FROM exams WHERE teaching_subject_id = $1 ORDER BY date ASC NULLS LAST`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, id); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// CreateExam persists an exam.
func (r *TeachingSubjectRepository) CreateExam(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	const query = `INSERT INTO exams (id, title, address, duration, date, teaching_subject_id) VALUES (:id, :title, :address, :duration, :date, :teaching_subject_id)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// ListTimetables returns the weekly slots of a teaching subject in week order.
func (r *TeachingSubjectRepository) ListTimetables(ctx context.Context, id string) ([]models.Timetable, error) {
	const query = `SELECT id, to_char(start_at, 'HH24:MI:SS') AS start_at, week_day, description, period, duration, teaching_subject_id
FROM timetables WHERE teaching_subject_id = $1 ORDER BY week_day ASC, start_at ASC`
	var slots []models.Timetable
	if err := r.db.SelectContext(ctx, &slots, query, id); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return slots, nil
}

// CreateTimetable persists a weekly slot.
func (r *TeachingSubjectRepository) CreateTimetable(ctx context.Context, slot *models.Timetable) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO timetables (id, start_at, week_day, description, period, duration, teaching_subject_id)
VALUES (:id, :start_at, :week_day, :description, :period, :duration, :teaching_subject_id)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}
