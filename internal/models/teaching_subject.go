package models

import (
	"strings"
	"time"
)

// TeachingSubject is a subject being taught within a course.
type TeachingSubject struct {
	ID        string  `db:"id" json:"id"`
	Address   *string `db:"address" json:"address,omitempty"`
	CourseID  *string `db:"course_id" json:"course_id,omitempty"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
}

// TeachingSubjectDetail adds the display fields of the subject and course.
type TeachingSubjectDetail struct {
	TeachingSubject
	SubjectCode   *int    `db:"subject_code" json:"subject_code,omitempty"`
	SubjectTitle  string  `db:"subject_title" json:"subject_title"`
	CourseLabel   *string `db:"course_label" json:"course_label,omitempty"`
	CourseLevel   *string `db:"course_level" json:"course_level,omitempty"`
	Students      []Member `db:"-" json:"students"`
	Teachers      []Member `db:"-" json:"teachers"`
}

func (t TeachingSubjectDetail) String() string {
	subject := Subject{Code: t.SubjectCode, Title: t.SubjectTitle}.String()
	course := ""
	if t.CourseLabel != nil {
		course = CourseDetail{LabelName: *t.CourseLabel, LevelYearName: t.CourseLevel}.String()
	}
	return strings.TrimSpace(subject + " " + course)
}

// Exam is a dated assessment of a teaching subject.
type Exam struct {
	ID                string     `db:"id" json:"id"`
	Title             *string    `db:"title" json:"title,omitempty"`
	Address           *string    `db:"address" json:"address,omitempty"`
	Duration          *int       `db:"duration" json:"duration,omitempty"`
	Date              *time.Time `db:"date" json:"date,omitempty"`
	TeachingSubjectID string     `db:"teaching_subject_id" json:"teaching_subject_id"`
}

// Timetable is a weekly lesson slot of a teaching subject.
type Timetable struct {
	ID                string  `db:"id" json:"id"`
	StartAt           string  `db:"start_at" json:"start_at"`
	WeekDay           string  `db:"week_day" json:"week_day"`
	Description       *string `db:"description" json:"description,omitempty"`
	Period            string  `db:"period" json:"period"`
	Duration          *int    `db:"duration" json:"duration,omitempty"`
	TeachingSubjectID string  `db:"teaching_subject_id" json:"teaching_subject_id"`
}

// Label renders the slot as "<teaching subject> <start> <week day>".
func (t Timetable) Label(teachingSubject string) string {
	return strings.Join([]string{teachingSubject, t.StartAt, ChoiceLabel(WeekDays, t.WeekDay)}, " ")
}
