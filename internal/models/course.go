package models

import (
	"strings"
	"time"
)

// CourseLabel names a course group such as A, B or Optionals.
type CourseLabel struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SemesterDate marks the start or end of a semester.
type SemesterDate struct {
	ID   string    `db:"id" json:"id"`
	Date time.Time `db:"date" json:"date"`
}

func (s SemesterDate) String() string { return s.Date.Format("02-01-2006") }

// Course is a group of a degree, optionally bounded by two semesters.
type Course struct {
	ID                    string  `db:"id" json:"id"`
	LabelID               string  `db:"label_id" json:"label_id"`
	Language              *string `db:"language" json:"language,omitempty"`
	FirstSemesterStartID  *string `db:"first_semester_start_id" json:"first_semester_start_id,omitempty"`
	FirstSemesterEndID    *string `db:"first_semester_end_id" json:"first_semester_end_id,omitempty"`
	SecondSemesterStartID *string `db:"second_semester_start_id" json:"second_semester_start_id,omitempty"`
	SecondSemesterEndID   *string `db:"second_semester_end_id" json:"second_semester_end_id,omitempty"`
	LevelID               *string `db:"level_id" json:"level_id,omitempty"`
	DegreeID              string  `db:"degree_id" json:"degree_id"`
}

// CourseDetail is a course joined with its label and level names.
type CourseDetail struct {
	Course
	LabelName     string  `db:"label_name" json:"label_name"`
	LevelYearName *string `db:"level_year_name" json:"level_year_name,omitempty"`
}

func (c CourseDetail) String() string {
	level := ""
	if c.LevelYearName != nil {
		level = *c.LevelYearName
	}
	return strings.TrimSpace(level + " " + c.LabelName)
}
