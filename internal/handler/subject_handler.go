package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type subjectService interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	CreateLevel(ctx context.Context, req dto.CreateLevelRequest) (*models.Level, error)
	ListByDegree(ctx context.Context, degreeID string) ([]models.Subject, error)
	Get(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, degreeID string, req dto.CreateSubjectRequest) (*models.Subject, error)
	Delete(ctx context.Context, id string) error
	ListExtraTitles(ctx context.Context, subjectID string) ([]models.ExtraTitle, error)
	CreateExtraTitle(ctx context.Context, subjectID string, req dto.CreateExtraTitleRequest) (*models.ExtraTitle, error)
}

// SubjectHandler handles level, subject and extra title endpoints.
type SubjectHandler struct {
	service subjectService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// ListLevels godoc
// @Summary List levels
// @Tags Subjects
// @Produce json
// @Security TokenAuth
// @Success 200 {object} response.Envelope
// @Router /levels [get]
func (h *SubjectHandler) ListLevels(c *gin.Context) {
	levels, err := h.service.ListLevels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(levels), nil)
}

// CreateLevel godoc
// @Summary Create level
// @Tags Subjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param payload body dto.CreateLevelRequest true "Level"
// @Success 201 {object} response.Envelope
// @Router /levels [post]
func (h *SubjectHandler) CreateLevel(c *gin.Context) {
	var req dto.CreateLevelRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	level, err := h.service.CreateLevel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// ListByDegree godoc
// @Summary List subjects of a degree
// @Tags Subjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Degree ID"
// @Success 200 {object} response.Envelope
// @Router /degrees/{id}/subjects [get]
func (h *SubjectHandler) ListByDegree(c *gin.Context) {
	subjects, err := h.service.ListByDegree(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(subjects), nil)
}

// Create godoc
// @Summary Create subject in a degree
// @Tags Subjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Degree ID"
// @Param payload body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} response.Envelope
// @Router /degrees/{id}/subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	subject, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Get godoc
// @Summary Get subject by id
// @Tags Subjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Security TokenAuth
// @Param id path string true "Subject ID"
// @Success 204
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExtraTitles godoc
// @Summary List alternative titles of a subject
// @Tags Subjects
// @Produce json
// @Security TokenAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/extra-titles [get]
func (h *SubjectHandler) ListExtraTitles(c *gin.Context) {
	titles, err := h.service.ListExtraTitles(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(titles), nil)
}

// CreateExtraTitle godoc
// @Summary Add an alternative title to a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Subject ID"
// @Param payload body dto.CreateExtraTitleRequest true "Extra title"
// @Success 201 {object} response.Envelope
// @Router /subjects/{id}/extra-titles [post]
func (h *SubjectHandler) CreateExtraTitle(c *gin.Context) {
	var req dto.CreateExtraTitleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	title, err := h.service.CreateExtraTitle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, title)
}
