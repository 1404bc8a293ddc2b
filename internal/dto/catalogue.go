package dto

// CreateUniversityRequest creates a university.
type CreateUniversityRequest struct {
	Name    string  `json:"name" validate:"required,max=254"`
	Address *string `json:"address" validate:"omitempty,max=254"`
	City    *string `json:"city" validate:"omitempty,max=254"`
}

// CreateSchoolRequest creates a school under a university.
type CreateSchoolRequest struct {
	Name    string  `json:"name" validate:"required,max=254"`
	Address *string `json:"address" validate:"omitempty,max=254"`
}

// CreateDegreeRequest creates a degree under a school.
type CreateDegreeRequest struct {
	Title string `json:"title" validate:"required,max=254"`
}

// CreateLevelRequest creates a level.
type CreateLevelRequest struct {
	YearName string `json:"year_name" validate:"required,max=20"`
}

// CreateSubjectRequest creates a subject under a degree.
type CreateSubjectRequest struct {
	Code        *int    `json:"code" validate:"omitempty,gte=0"`
	Title       string  `json:"title" validate:"required,max=254"`
	Description *string `json:"description"`
	LevelID     *string `json:"level_id" validate:"omitempty,uuid"`
}

// CreateExtraTitleRequest adds an alternative title to a subject.
type CreateExtraTitleRequest struct {
	Title    string `json:"title" validate:"required,max=254"`
	Language string `json:"language" validate:"omitempty,oneof=es en de fr"`
}

// CreateCourseLabelRequest creates a course label.
type CreateCourseLabelRequest struct {
	Name string `json:"name" validate:"required,max=20"`
}

// CreateSemesterDateRequest creates a semester boundary.
type CreateSemesterDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// CreateCourseRequest creates a course under a degree.
type CreateCourseRequest struct {
	LabelID               string  `json:"label_id" validate:"required,uuid"`
	Language              *string `json:"language" validate:"omitempty,oneof=es en de fr"`
	FirstSemesterStartID  *string `json:"first_semester_start_id" validate:"omitempty,uuid"`
	FirstSemesterEndID    *string `json:"first_semester_end_id" validate:"omitempty,uuid"`
	SecondSemesterStartID *string `json:"second_semester_start_id" validate:"omitempty,uuid"`
	SecondSemesterEndID   *string `json:"second_semester_end_id" validate:"omitempty,uuid"`
	LevelID               *string `json:"level_id" validate:"omitempty,uuid"`
}

// CreateTeachingSubjectRequest starts teaching a subject.
type CreateTeachingSubjectRequest struct {
	SubjectID string  `json:"subject_id" validate:"required,uuid"`
	CourseID  *string `json:"course_id" validate:"omitempty,uuid"`
	Address   *string `json:"address" validate:"omitempty,max=254"`
}

// CreateExamRequest schedules an exam.
type CreateExamRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=254"`
	Address  *string `json:"address" validate:"omitempty,max=254"`
	Duration *int    `json:"duration" validate:"omitempty,gte=0"`
	Date     *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateTimetableRequest adds a weekly slot.
type CreateTimetableRequest struct {
	StartAt     string  `json:"start_at" validate:"required,clock"`
	WeekDay     string  `json:"week_day" validate:"omitempty,oneof=1 2 3 4 5 6 7"`
	Description *string `json:"description" validate:"omitempty,max=254"`
	Period      string  `json:"period" validate:"omitempty,oneof=1 2 3"`
	Duration    *int    `json:"duration" validate:"omitempty,gte=0"`
}

// ListQuery holds the common list parameters.
type ListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
