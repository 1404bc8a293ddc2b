package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

const userColumns = "id, username, email, first_name, last_name, password_hash, is_active, is_staff, date_joined, last_login"

// UserRepository persists users, their role rows and their API tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns the user with the exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = $1 LIMIT 1"
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername reports whether the username is taken.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// CreateAccount inserts the user, its role row and its token in one transaction.
// teacher is only used for RoleTeacher.
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User, role models.AccountRole, teacher *models.Teacher, token *models.AuthToken) (err error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.DateJoined.IsZero() {
		user.DateJoined = now
	}
	token.UserID = user.ID
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create account: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertUser = `INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_active, is_staff, date_joined) VALUES (:id, :username, :email, :first_name, :last_name, :password_hash, :is_active, :is_staff, :date_joined)`
	if _, err = tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	switch role {
	case models.RoleTeacher:
		if teacher == nil {
			teacher = &models.Teacher{}
		}
		if teacher.ID == "" {
			teacher.ID = uuid.NewString()
		}
		teacher.UserID = user.ID
		const insertTeacher = `INSERT INTO teachers (id, user_id, dept, description) VALUES (:id, :user_id, :dept, :description)`
		if _, err = tx.NamedExecContext(ctx, insertTeacher, teacher); err != nil {
			return fmt.Errorf("insert teacher: %w", err)
		}
	case models.RoleStudent:
		if _, err = tx.ExecContext(ctx, `INSERT INTO students (id, user_id) VALUES ($1, $2)`, uuid.NewString(), user.ID); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
	default:
		return fmt.Errorf("unsupported role %q", role)
	}

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO auth_tokens (key, user_id, created_at) VALUES (:key, :user_id, :created_at)`, token); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create account: %w", err)
	}
	return nil
}

// IsTeacher reports whether the user has a teacher row.
func (r *UserRepository) IsTeacher(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM teachers WHERE user_id = $1)`, userID); err != nil {
		return false, fmt.Errorf("check teacher: %w", err)
	}
	return exists, nil
}

// IsStudent reports whether the user has a student row.
func (r *UserRepository) IsStudent(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE user_id = $1)`, userID); err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return exists, nil
}

// GetOrCreateToken stores key for the user unless a token already exists and
// returns the persisted key.
func (r *UserRepository) GetOrCreateToken(ctx context.Context, userID, key string) (string, error) {
	const insert = `INSERT INTO auth_tokens (key, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, key, userID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	var stored string
	if err := r.db.GetContext(ctx, &stored, `SELECT key FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return stored, nil
}

// FindUserByToken resolves the owner of an API key.
func (r *UserRepository) FindUserByToken(ctx context.Context, key string) (*models.User, error) {
	const query = `SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.is_active, u.is_staff, u.date_joined, u.last_login
FROM auth_tokens t JOIN users u ON u.id = t.user_id WHERE t.key = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, key); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// FindStudentByUserID returns the student row of a user.
func (r *UserRepository) FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT id, user_id FROM students WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindTeacherByUserID returns the teacher row of a user.
func (r *UserRepository) FindTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, `SELECT id, user_id, dept, description FROM teachers WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

