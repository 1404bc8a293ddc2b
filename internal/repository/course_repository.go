package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

const courseDetailSelect = `SELECT c.id, c.label_id, c.language, c.first_semester_start_id, c.first_semester_end_id,
c.second_semester_start_id, c.second_semester_end_id, c.level_id, c.degree_id,
cl.name AS label_name, l.year_name AS level_year_name
FROM courses c
JOIN course_labels cl ON cl.id = c.label_id
LEFT JOIN levels l ON l.id = c.level_id`

// CourseRepository handles course labels, semester dates and courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListLabels returns every course label.
func (r *CourseRepository) ListLabels(ctx context.Context) ([]models.CourseLabel, error) {
	var labels []models.CourseLabel
	if err := r.db.SelectContext(ctx, &labels, `SELECT id, name FROM course_labels ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list course labels: %w", err)
	}
	return labels, nil
}

// FindLabel returns a course label by id.
func (r *CourseRepository) FindLabel(ctx context.Context, id string) (*models.CourseLabel, error) {
	var label models.CourseLabel
	if err := r.db.GetContext(ctx, &label, `SELECT id, name FROM course_labels WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &label, nil
}

// CreateLabel persists a course label.
func (r *CourseRepository) CreateLabel(ctx context.Context, label *models.CourseLabel) error {
	if label.ID == "" {
		label.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO course_labels (id, name) VALUES (:id, :name)`, label); err != nil {
		return fmt.Errorf("create course label: %w", err)
	}
	return nil
}

// ListSemesterDates returns every semester date in calendar order.
func (r *CourseRepository) ListSemesterDates(ctx context.Context) ([]models.SemesterDate, error) {
	var dates []models.SemesterDate
	if err := r.db.SelectContext(ctx, &dates, `SELECT id, date FROM semester_dates ORDER BY date ASC`); err != nil {
		return nil, fmt.Errorf("list semester dates: %w", err)
	}
	return dates, nil
}

// CountSemesterDates returns how many of ids exist.
func (r *CourseRepository) CountSemesterDates(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM semester_dates WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("build semester date query: %w", err)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count semester dates: %w", err)
	}
	return count, nil
}

// CreateSemesterDate persists a semester date.
func (r *CourseRepository) CreateSemesterDate(ctx context.Context, date *models.SemesterDate) error {
	if date.ID == "" {
		date.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO semester_dates (id, date) VALUES (:id, :date)`, date); err != nil {
		return fmt.Errorf("create semester date: %w", err)
	}
	return nil
}

// ListByDegree returns the courses of a degree with label and level names.
func (r *CourseRepository) ListByDegree(ctx context.Context, degreeID string) ([]models.CourseDetail, error) {
	query := courseDetailSelect + " WHERE c.degree_id = $1 ORDER BY l.year_name ASC NULLS LAST, cl.name ASC"
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, degreeID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course with its label and level names.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, courseDetailSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	const query = `INSERT INTO courses (id, label_id, language, first_semester_start_id, first_semester_end_id, second_semester_start_id, second_semester_end_id, level_id, degree_id)
VALUES (:id, :label_id, :language, :first_semester_start_id, :first_semester_end_id, :second_semester_start_id, :second_semester_end_id, :level_id, :degree_id)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Delete removes a course and its teaching subjects.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
