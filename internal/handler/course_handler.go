package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type courseService interface {
	ListLabels(ctx context.Context) ([]models.CourseLabel, error)
	CreateLabel(ctx context.Context, req dto.CreateCourseLabelRequest) (*models.CourseLabel, error)
	ListSemesterDates(ctx context.Context) ([]models.SemesterDate, error)
	CreateSemesterDate(ctx context.Context, req dto.CreateSemesterDateRequest) (*models.SemesterDate, error)
	ListByDegree(ctx context.Context, degreeID string) ([]models.CourseDetail, error)
	Get(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, degreeID string, req dto.CreateCourseRequest) (*models.CourseDetail, error)
	Delete(ctx context.Context, id string) error
}

// CourseHandler exposes course labels, semester dates and courses.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// ListLabels godoc
// @Summary List course labels
// @Tags Courses
// @Produce json
// @Security TokenAuth
// @Success 200 {object} response.Envelope
// @Router /course-labels [get]
func (h *CourseHandler) ListLabels(c *gin.Context) {
	labels, err := h.service.ListLabels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(labels), nil)
}

// CreateLabel godoc
// @Summary Create course label
// @Tags Courses
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param payload body dto.CreateCourseLabelRequest true "Label"
// @Success 201 {object} response.Envelope
// @Router /course-labels [post]
func (h *CourseHandler) CreateLabel(c *gin.Context) {
	var req dto.CreateCourseLabelRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	label, err := h.service.CreateLabel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, label)
}

// ListSemesterDates godoc
// @Summary List semester dates
// @Tags Courses
// @Produce json
// @Security TokenAuth
// @Success 200 {object} response.Envelope
// @Router /semester-dates [get]
func (h *CourseHandler) ListSemesterDates(c *gin.Context) {
	dates, err := h.service.ListSemesterDates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(dates), nil)
}

// CreateSemesterDate godoc
// @Summary Create semester date
// @Tags Courses
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param payload body dto.CreateSemesterDateRequest true "Date"
// @Success 201 {object} response.Envelope
// @Router /semester-dates [post]
func (h *CourseHandler) CreateSemesterDate(c *gin.Context) {
	var req dto.CreateSemesterDateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	date, err := h.service.CreateSemesterDate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, date)
}

// ListByDegree godoc
// @Summary List courses of a degree
// @Tags Courses
// @Produce json
// @Security TokenAuth
// @Param id path string true "Degree ID"
// @Success 200 {object} response.Envelope
// @Router /degrees/{id}/courses [get]
func (h *CourseHandler) ListByDegree(c *gin.Context) {
	courses, err := h.service.ListByDegree(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(courses), nil)
}

// Create godoc
// @Summary Create course in a degree
// @Tags Courses
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Degree ID"
// @Param payload body dto.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /degrees/{id}/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Security TokenAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Security TokenAuth
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
