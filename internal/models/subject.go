package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the year of a degree a subject or course belongs to.
type Level struct {
	ID       string `db:"id" json:"id"`
	YearName string `db:"year_name" json:"year_name"`
}

func (l Level) String() string { return l.YearName }

// Subject is a lesson of a degree.
type Subject struct {
	ID          string  `db:"id" json:"id"`
	Code        *int    `db:"code" json:"code,omitempty"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	LevelID     *string `db:"level_id" json:"level_id,omitempty"`
	DegreeID    string  `db:"degree_id" json:"degree_id"`
}

func (s Subject) String() string {
	code := "None"
	if s.Code != nil {
		code = strconv.Itoa(*s.Code)
	}
	return strings.Join([]string{code, s.Title}, " ")
}

// ExtraTitle is an alternative subject title, usually in another language.
type ExtraTitle struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Language  string `db:"language" json:"language"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

func (e ExtraTitle) String() string {
	return fmt.Sprintf("%s in %s", e.Title, e.Language)
}
