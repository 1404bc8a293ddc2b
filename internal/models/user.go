package models

import "time"

// AccountRole is the kind of application account wrapping a user.
type AccountRole string

const (
	RoleStudent AccountRole = "student"
	RoleTeacher AccountRole = "teacher"
)

// AccountRoles lists the roles accepted by account creation.
var AccountRoles = []AccountRole{RoleStudent, RoleTeacher}

// ParseAccountRole returns the role named by raw, or false when unsupported.
func ParseAccountRole(raw string) (AccountRole, bool) {
	for _, role := range AccountRoles {
		if string(role) == raw {
			return role, true
		}
	}
	return "", false
}

// User is the credential record wrapped by Student and Teacher accounts.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	DateJoined   time.Time  `db:"date_joined" json:"date_joined"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// AuthToken is the single opaque API key issued to a user.
type AuthToken struct {
	Key       string    `db:"key" json:"key"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Student wraps a user enrolled in teaching subjects.
type Student struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"user_id"`
}

// Teacher wraps a user teaching subjects.
type Teacher struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"user_id"`
	Dept        *string `db:"dept" json:"dept,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
}

// Member is a student or teacher joined with its user for listings.
type Member struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
