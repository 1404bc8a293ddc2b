package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

// InstitutionRepository handles universities, schools and degrees.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository creates a new repository instance.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// ListUniversities returns universities matching the filter with the total count.
func (r *InstitutionRepository) ListUniversities(ctx context.Context, filter models.UniversityFilter) ([]models.University, int, error) {
	base := "FROM universities WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(city) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, address, city %s ORDER BY name ASC LIMIT %d OFFSET %d", base, size, offset)
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list universities: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count universities: %w", err)
	}
	return universities, total, nil
}

// FindUniversity returns a university by id.
func (r *InstitutionRepository) FindUniversity(ctx context.Context, id string) (*models.University, error) {
	var university models.University
	if err := r.db.GetContext(ctx, &university, `SELECT id, name, address, city FROM universities WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &university, nil
}

// CreateUniversity persists a university.
func (r *InstitutionRepository) CreateUniversity(ctx context.Context, university *models.University) error {
	if university.ID == "" {
		university.ID = uuid.NewString()
	}
	const query = `INSERT INTO universities (id, name, address, city) VALUES (:id, :name, :address, :city)`
	if _, err := r.db.NamedExecContext(ctx, query, university); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

// DeleteUniversity removes a university with its schools and degrees.
func (r *InstitutionRepository) DeleteUniversity(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete university: %w", err)
	}
	return nil
}

// ListSchools returns the schools of a university.
func (r *InstitutionRepository) ListSchools(ctx context.Context, universityID string) ([]models.School, error) {
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, `SELECT id, name, address, university_id FROM schools WHERE university_id = $1 ORDER BY name ASC`, universityID); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// FindSchool returns a school by id.
func (r *InstitutionRepository) FindSchool(ctx context.Context, id string) (*models.School, error) {
	var school models.School
	if err := r.db.GetContext(ctx, &school, `SELECT id, name, address, university_id FROM schools WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// CreateSchool persists a school.
func (r *InstitutionRepository) CreateSchool(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	const query = `INSERT INTO schools (id, name, address, university_id) VALUES (:id, :name, :address, :university_id)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// DeleteSchool removes a school and its degrees.
func (r *InstitutionRepository) DeleteSchool(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete school: %w", err)
	}
	return nil
}

// ListDegrees returns the degrees of a school.
func (r *InstitutionRepository) ListDegrees(ctx context.Context, schoolID string) ([]models.Degree, error) {
	var degrees []models.Degree
	if err := r.db.SelectContext(ctx, &degrees, `SELECT id, title, school_id FROM degrees WHERE school_id = $1 ORDER BY title ASC`, schoolID); err != nil {
		return nil, fmt.Errorf("list degrees: %w", err)
	}
	return degrees, nil
}

// FindDegree returns a degree by id.
func (r *InstitutionRepository) FindDegree(ctx context.Context, id string) (*models.Degree, error) {
	var degree models.Degree
	if err := r.db.GetContext(ctx, &degree, `SELECT id, title, school_id FROM degrees WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &degree, nil
}

// CreateDegree persists a degree.
func (r *InstitutionRepository) CreateDegree(ctx context.Context, degree *models.Degree) error {
	if degree.ID == "" {
		degree.ID = uuid.NewString()
	}
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO degrees (id, title, school_id) VALUES (:id, :title, :school_id)`, degree); err != nil {
		return fmt.Errorf("create degree: %w", err)
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
