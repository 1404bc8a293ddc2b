package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/middleware"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/internal/service"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

type institutionServiceMock struct {
	institutionService
	filter       models.UniversityFilter
	universities []models.University
	cacheHit     bool
	created      dto.CreateUniversityRequest
	createCalled bool
}

func (m *institutionServiceMock) ListUniversities(ctx context.Context, filter models.UniversityFilter) ([]models.University, *models.Pagination, bool, error) {
	m.filter = filter
	return m.universities, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.universities)}, m.cacheHit, nil
}

func (m *institutionServiceMock) CreateUniversity(ctx context.Context, req dto.CreateUniversityRequest) (*models.University, error) {
	m.createCalled = true
	m.created = req
	return &models.University{ID: "u-1", Name: req.Name}, nil
}

func (m *institutionServiceMock) ListSchools(ctx context.Context, universityID string) ([]models.School, error) {
	return nil, nil
}

type teachingSubjectServiceMock struct {
	teachingSubjectService
	createErr error
	forUser   *models.User
	export    *service.TimetableExport
	format    string
}

func (m *teachingSubjectServiceMock) Create(ctx context.Context, req dto.CreateTeachingSubjectRequest) (*models.TeachingSubjectDetail, error) {
	return nil, m.createErr
}

func (m *teachingSubjectServiceMock) ForUser(ctx context.Context, user *models.User) ([]models.TeachingSubjectDetail, error) {
	m.forUser = user
	return []models.TeachingSubjectDetail{}, nil
}

func (m *teachingSubjectServiceMock) ExportTimetables(ctx context.Context, id, format string) (*service.TimetableExport, error) {
	m.format = format
	return m.export, nil
}

func newCatalogueContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestListUniversitiesReportsCacheHit(t *testing.T) {
	svc := &institutionServiceMock{universities: []models.University{{ID: "u-1", Name: "Complutense"}}, cacheHit: true}
	handler := NewInstitutionHandler(svc)

	c, w := newCatalogueContext(http.MethodGet, "/api/v1/universities?search=%20comp%20&page=2&page_size=5", "")

	handler.ListUniversities(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "comp", svc.filter.Search)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Equal(t, 5, svc.filter.PageSize)

	var body struct {
		Data       []models.University    `json:"data"`
		Pagination *models.Pagination     `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, true, body.Meta["cache_hit"])
	assert.Equal(t, 1, body.Pagination.TotalCount)
}

func TestListUniversitiesRejectsBadPage(t *testing.T) {
	handler := NewInstitutionHandler(&institutionServiceMock{})

	c, w := newCatalogueContext(http.MethodGet, "/api/v1/universities?page=abc", "")

	handler.ListUniversities(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUniversityMalformedBody(t *testing.T) {
	svc := &institutionServiceMock{}
	handler := NewInstitutionHandler(svc)

	c, w := newCatalogueContext(http.MethodPost, "/api/v1/universities", `{"name":`)

	handler.CreateUniversity(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.createCalled)
	assert.Contains(t, w.Body.String(), "MALFORMED_BODY")
}

func TestCreateUniversity(t *testing.T) {
	svc := &institutionServiceMock{}
	handler := NewInstitutionHandler(svc)

	c, w := newCatalogueContext(http.MethodPost, "/api/v1/universities", `{"name":"Complutense","city":"Madrid"}`)

	handler.CreateUniversity(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Complutense", svc.created.Name)
	require.NotNil(t, svc.created.City)
	assert.Equal(t, "Madrid", *svc.created.City)
}

func TestListSchoolsEmptyIsArray(t *testing.T) {
	handler := NewInstitutionHandler(&institutionServiceMock{})

	c, w := newCatalogueContext(http.MethodGet, "/api/v1/universities/u-1/schools", "")
	c.Params = gin.Params{{Key: "id", Value: "u-1"}}

	handler.ListSchools(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestCreateTeachingSubjectConflict(t *testing.T) {
	svc := &teachingSubjectServiceMock{createErr: appErrors.Clone(appErrors.ErrConflict, "subject is already being taught")}
	handler := NewTeachingSubjectHandler(svc)

	c, w := newCatalogueContext(http.MethodPost, "/api/v1/teaching-subjects", `{"subject_id":"6f1c3b8e-0d7a-4b8e-9a51-0c2b8f7d9e10"}`)

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "subject is already being taught")
}

func TestMineUsesCurrentUser(t *testing.T) {
	svc := &teachingSubjectServiceMock{}
	handler := NewTeachingSubjectHandler(svc)

	c, w := newCatalogueContext(http.MethodGet, "/api/v1/me/teaching-subjects", "")
	user := &models.User{ID: "user-1"}
	c.Set(middleware.ContextUserKey, user)

	handler.Mine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, user, svc.forUser)
}

func TestExportTimetablesStreamsFile(t *testing.T) {
	svc := &teachingSubjectServiceMock{export: &service.TimetableExport{
		Filename:    "timetable-ts-1.csv",
		ContentType: "text/csv",
		Body:        []byte("Week day,Start\n"),
	}}
	handler := NewTeachingSubjectHandler(svc)

	c, w := newCatalogueContext(http.MethodGet, "/api/v1/teaching-subjects/ts-1/timetables/export?format=CSV", "")
	c.Params = gin.Params{{Key: "id", Value: "ts-1"}}

	handler.ExportTimetables(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, `attachment; filename="timetable-ts-1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Week day,Start\n", w.Body.String())
}
