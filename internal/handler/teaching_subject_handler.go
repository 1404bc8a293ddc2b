package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/internal/service"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type teachingSubjectService interface {
	Create(ctx context.Context, req dto.CreateTeachingSubjectRequest) (*models.TeachingSubjectDetail, error)
	Get(ctx context.Context, id string) (*models.TeachingSubjectDetail, error)
	Delete(ctx context.Context, id string) error
	ForUser(ctx context.Context, user *models.User) ([]models.TeachingSubjectDetail, error)
	AddStudent(ctx context.Context, id, studentID string) error
	RemoveStudent(ctx context.Context, id, studentID string) error
	AddTeacher(ctx context.Context, id, teacherID string) error
	RemoveTeacher(ctx context.Context, id, teacherID string) error
	ListExams(ctx context.Context, id string) ([]models.Exam, error)
	CreateExam(ctx context.Context, id string, req dto.CreateExamRequest) (*models.Exam, error)
	ListTimetables(ctx context.Context, id string) ([]models.Timetable, error)
	CreateTimetable(ctx context.Context, id string, req dto.CreateTimetableRequest) (*models.Timetable, error)
	ExportTimetables(ctx context.Context, id, format string) (*service.TimetableExport, error)
}

// TeachingSubjectHandler serves teaching subjects and their memberships, exams
// and timetables.
type TeachingSubjectHandler struct {
	service teachingSubjectService
}

// NewTeachingSubjectHandler constructs a teaching subject handler.
func NewTeachingSubjectHandler(svc teachingSubjectService) *TeachingSubjectHandler {
	return &TeachingSubjectHandler{service: svc}
}

// Create godoc
// @Summary Start teaching a subject
// @Tags TeachingSubjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param payload body dto.CreateTeachingSubjectRequest true "Teaching subject"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teaching-subjects [post]
func (h *TeachingSubjectHandler) Create(c *gin.Context) {
	var req dto.CreateTeachingSubjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ts, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ts)
}

// Get godoc
// @Summary Get teaching subject with its members
// @Tags TeachingSubjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-subjects/{id} [get]
func (h *TeachingSubjectHandler) Get(c *gin.Context) {
	ts, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ts, nil)
}

// Delete godoc
// @Summary Delete teaching subject
// @Tags TeachingSubjects
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Success 204
// @Router /teaching-subjects/{id} [delete]
func (h *TeachingSubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Mine godoc
// @Summary List the teaching subjects of the current user
// @Tags TeachingSubjects
// @Produce json
// @Security TokenAuth
// @Success 200 {object} response.Envelope
// @Router /me/teaching-subjects [get]
func (h *TeachingSubjectHandler) Mine(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ForUser(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AddStudent godoc
// @Summary Enrol a student
// @Tags TeachingSubjects
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param studentID path string true "Student ID"
// @Success 204
// @Router /teaching-subjects/{id}/students/{studentID} [put]
func (h *TeachingSubjectHandler) AddStudent(c *gin.Context) {
	if err := h.service.AddStudent(c.Request.Context(), c.Param("id"), c.Param("studentID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveStudent godoc
// @Summary Remove a student
// @Tags TeachingSubjects
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param studentID path string true "Student ID"
// @Success 204
// @Router /teaching-subjects/{id}/students/{studentID} [delete]
func (h *TeachingSubjectHandler) RemoveStudent(c *gin.Context) {
	if err := h.service.RemoveStudent(c.Request.Context(), c.Param("id"), c.Param("studentID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddTeacher godoc
// @Summary Assign a teacher
// @Tags TeachingSubjects
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param teacherID path string true "Teacher ID"
// @Success 204
// @Router /teaching-subjects/{id}/teachers/{teacherID} [put]
func (h *TeachingSubjectHandler) AddTeacher(c *gin.Context) {
	if err := h.service.AddTeacher(c.Request.Context(), c.Param("id"), c.Param("teacherID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveTeacher godoc
// @Summary Unassign a teacher
// @Tags TeachingSubjects
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param teacherID path string true "Teacher ID"
// @Success 204
// @Router /teaching-subjects/{id}/teachers/{teacherID} [delete]
func (h *TeachingSubjectHandler) RemoveTeacher(c *gin.Context) {
	if err := h.service.RemoveTeacher(c.Request.Context(), c.Param("id"), c.Param("teacherID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExams godoc
// @Summary List exams
// @Tags TeachingSubjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-subjects/{id}/exams [get]
func (h *TeachingSubjectHandler) ListExams(c *gin.Context) {
	exams, err := h.service.ListExams(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(exams), nil)
}

// CreateExam godoc
// @Summary Schedule an exam
// @Tags TeachingSubjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param payload body dto.CreateExamRequest true "Exam"
// @Success 201 {object} response.Envelope
// @Router /teaching-subjects/{id}/exams [post]
func (h *TeachingSubjectHandler) CreateExam(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	exam, err := h.service.CreateExam(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// ListTimetables godoc
// @Summary List timetable slots
// @Tags TeachingSubjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Success 200 {object} response.Envelope
// @Router /teaching-subjects/{id}/timetables [get]
func (h *TeachingSubjectHandler) ListTimetables(c *gin.Context) {
	slots, err := h.service.ListTimetables(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(slots), nil)
}

// CreateTimetable godoc
// @Summary Add a timetable slot
// @Tags TeachingSubjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param payload body dto.CreateTimetableRequest true "Timetable"
// @Success 201 {object} response.Envelope
// @Router /teaching-subjects/{id}/timetables [post]
func (h *TeachingSubjectHandler) CreateTimetable(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	slot, err := h.service.CreateTimetable(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// ExportTimetables godoc
// @Summary Export the timetable
// @Tags TeachingSubjects
// @Produce application/pdf
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security TokenAuth
// @Param id path string true "Teaching subject ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Router /teaching-subjects/{id}/timetables/export [get]
func (h *TeachingSubjectHandler) ExportTimetables(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	file, err := h.service.ExportTimetables(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
