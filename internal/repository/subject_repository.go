package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

const subjectColumns = "id, code, title, description, level_id, degree_id"

// SubjectRepository handles levels, subjects and their extra titles.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListLevels returns every level.
func (r *SubjectRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	if err := r.db.SelectContext(ctx, &levels, `SELECT id, year_name FROM levels ORDER BY year_name ASC`); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// FindLevel returns a level by id.
func (r *SubjectRepository) FindLevel(ctx context.Context, id string) (*models.Level, error) {
	var level models.Level
	if err := r.db.GetContext(ctx, &level, `SELECT id, year_name FROM levels WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &level, nil
}

// CreateLevel persists a level.
func (r *SubjectRepository) CreateLevel(ctx context.Context, level *models.Level) error {
	if level.ID == "" {
		level.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO levels (id, year_name) VALUES (:id, :year_name)`, level); err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	return nil
}

// ListByDegree returns the subjects of a degree ordered by code.
func (r *SubjectRepository) ListByDegree(ctx context.Context, degreeID string) ([]models.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects WHERE degree_id = $1 ORDER BY code ASC NULLS LAST, title ASC"
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, degreeID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create persists a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	const query = `INSERT INTO subjects (id, code, title, description, level_id, degree_id) VALUES (:id, :code, :title, :description, :level_id, :degree_id)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Delete removes a subject together with its extra titles and teaching subject.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ListExtraTitles returns the alternative titles of a subject.
func (r *SubjectRepository) ListExtraTitles(ctx context.Context, subjectID string) ([]models.ExtraTitle, error) {
	var titles []models.ExtraTitle
	if err := r.db.SelectContext(ctx, &titles, `SELECT id, title, language, subject_id FROM extra_titles WHERE subject_id = $1 ORDER BY language ASC`, subjectID); err != nil {
		return nil, fmt.Errorf("list extra titles: %w", err)
	}
	return titles, nil
}

// CreateExtraTitle persists an alternative subject title.
func (r *SubjectRepository) CreateExtraTitle(ctx context.Context, title *models.ExtraTitle) error {
	if title.ID == "" {
		title.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO extra_titles (id, title, language, subject_id) VALUES (:id, :title, :language, :subject_id)`, title); err != nil {
		return fmt.Errorf("create extra title: %w", err)
	}
	return nil
}
