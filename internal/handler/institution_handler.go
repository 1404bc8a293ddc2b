package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/middleware"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type institutionService interface {
	ListUniversities(ctx context.Context, filter models.UniversityFilter) ([]models.University, *models.Pagination, bool, error)
	GetUniversity(ctx context.Context, id string) (*models.University, error)
	CreateUniversity(ctx context.Context, req dto.CreateUniversityRequest) (*models.University, error)
	DeleteUniversity(ctx context.Context, id string) error
	ListSchools(ctx context.Context, universityID string) ([]models.School, error)
	GetSchool(ctx context.Context, id string) (*models.School, error)
	CreateSchool(ctx context.Context, universityID string, req dto.CreateSchoolRequest) (*models.School, error)
	DeleteSchool(ctx context.Context, id string) error
	ListDegrees(ctx context.Context, schoolID string) ([]models.Degree, error)
	GetDegree(ctx context.Context, id string) (*models.Degree, error)
	CreateDegree(ctx context.Context, schoolID string, req dto.CreateDegreeRequest) (*models.Degree, error)
}

// InstitutionHandler serves universities, schools and degrees.
type InstitutionHandler struct {
	service institutionService
}

// NewInstitutionHandler constructs an institution handler.
func NewInstitutionHandler(svc institutionService) *InstitutionHandler {
	return &InstitutionHandler{service: svc}
}

// ListUniversities godoc
// @Summary List universities
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param search query string false "Search by name or city"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *InstitutionHandler) ListUniversities(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	filter := models.UniversityFilter{
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	universities, pagination, cacheHit, err := h.service.ListUniversities(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, universities, pagination, middleware.ExtractMeta(c))
}

// GetUniversity godoc
// @Summary Get university
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *InstitutionHandler) GetUniversity(c *gin.Context) {
	university, err := h.service.GetUniversity(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, university, nil)
}

// CreateUniversity godoc
// @Summary Create university
// @Tags Institutions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param payload body dto.CreateUniversityRequest true "University"
// @Success 201 {object} response.Envelope
// @Router /universities [post]
func (h *InstitutionHandler) CreateUniversity(c *gin.Context) {
	var req dto.CreateUniversityRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	university, err := h.service.CreateUniversity(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, university)
}

// DeleteUniversity godoc
// @Summary Delete university with its schools and degrees
// @Tags Institutions
// @Security TokenAuth
// @Param id path string true "University ID"
// @Success 204
// @Router /universities/{id} [delete]
func (h *InstitutionHandler) DeleteUniversity(c *gin.Context) {
	if err := h.service.DeleteUniversity(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSchools godoc
// @Summary List schools of a university
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id}/schools [get]
func (h *InstitutionHandler) ListSchools(c *gin.Context) {
	schools, err := h.service.ListSchools(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(schools), nil)
}

// CreateSchool godoc
// @Summary Create school in a university
// @Tags Institutions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "University ID"
// @Param payload body dto.CreateSchoolRequest true "School"
// @Success 201 {object} response.Envelope
// @Router /universities/{id}/schools [post]
func (h *InstitutionHandler) CreateSchool(c *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	school, err := h.service.CreateSchool(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// GetSchool godoc
// @Summary Get school
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [get]
func (h *InstitutionHandler) GetSchool(c *gin.Context) {
	school, err := h.service.GetSchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// DeleteSchool godoc
// @Summary Delete school with its degrees
// @Tags Institutions
// @Security TokenAuth
// @Param id path string true "School ID"
// @Success 204
// @Router /schools/{id} [delete]
func (h *InstitutionHandler) DeleteSchool(c *gin.Context) {
	if err := h.service.DeleteSchool(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDegrees godoc
// @Summary List degrees of a school
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/degrees [get]
func (h *InstitutionHandler) ListDegrees(c *gin.Context) {
	degrees, err := h.service.ListDegrees(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(degrees), nil)
}

// CreateDegree godoc
// @Summary Create degree in a school
// @Tags Institutions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "School ID"
// @Param payload body dto.CreateDegreeRequest true "Degree"
// @Success 201 {object} response.Envelope
// @Router /schools/{id}/degrees [post]
func (h *InstitutionHandler) CreateDegree(c *gin.Context) {
	var req dto.CreateDegreeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	degree, err := h.service.CreateDegree(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, degree)
}

// GetDegree godoc
// @Summary Get degree
// @Tags Institutions
// @Produce json
// @Security TokenAuth
// @Param id path string true "Degree ID"
// @Success 200 {object} response.Envelope
// @Router /degrees/{id} [get]
func (h *InstitutionHandler) GetDegree(c *gin.Context) {
	degree, err := h.service.GetDegree(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, degree, nil)
}

// nonNil keeps empty lists serialised as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
