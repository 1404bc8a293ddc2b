package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/handler"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/config"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

type staticAuthenticator map[string]*models.User

func (a staticAuthenticator) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if user, ok := a[key]; ok {
		return user, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid token.")
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	return newRouter(cfg, zap.NewNop(), routes{
		accounts:         handler.NewAccountHandler(nil, nil),
		institutions:     handler.NewInstitutionHandler(nil),
		subjects:         handler.NewSubjectHandler(nil),
		courses:          handler.NewCourseHandler(nil),
		teachingSubjects: handler.NewTeachingSubjectHandler(nil),
		metrics:          handler.NewMetricsHandler(nil, nil),
		authenticator:    staticAuthenticator{"student-key": {ID: "u-1", Username: "ana", IsActive: true}},
	})
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDeviceWithoutTokenIsBareUnauthorized(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register-device", strings.NewReader(`{"registration_id":"reg"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())
}

func TestCatalogueWritesRequireStaff(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/universities", strings.NewReader(`{"name":"UCM"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token student-key")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestCatalogueRejectsUnknownToken(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/levels", nil)
	req.Header.Set("Authorization", "Token nope")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token.")
}

func TestMalformedPathIDIsNotFound(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/universities/abc", nil)
	req.Header.Set("Authorization", "Token student-key")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/devices/abc", nil)
	req.Header.Set("Authorization", "Token student-key")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/devices/abc", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
