package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
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

type accountServiceMock struct {
	createReq  dto.CreateAppUserRequest
	createResp *dto.TokenResponse
	createErr  error
	obtainReq  dto.ObtainTokenRequest
	obtainResp *dto.ObtainTokenResponse
	obtainErr  error
	called     bool
}

func (m *accountServiceMock) CreateAppUser(ctx context.Context, req dto.CreateAppUserRequest) (*dto.TokenResponse, error) {
	m.called = true
	m.createReq = req
	return m.createResp, m.createErr
}

func (m *accountServiceMock) ObtainToken(ctx context.Context, req dto.ObtainTokenRequest) (*dto.ObtainTokenResponse, error) {
	m.called = true
	m.obtainReq = req
	return m.obtainResp, m.obtainErr
}

type deviceServiceMock struct {
	user          *models.User
	req           dto.RegisterDeviceRequest
	resp          *dto.RegisterDeviceResponse
	err           error
	devices       []models.PushDevice
	deactivatedID string
}

func (m *deviceServiceMock) Register(ctx context.Context, user *models.User, req dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error) {
	m.user = user
	m.req = req
	return m.resp, m.err
}

func (m *deviceServiceMock) List(ctx context.Context, user *models.User) ([]models.PushDevice, error) {
	m.user = user
	return m.devices, m.err
}

func (m *deviceServiceMock) Deactivate(ctx context.Context, user *models.User, id string) error {
	m.user = user
	m.deactivatedID = id
	return m.err
}

func newAccountContext(method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	return c, w
}

func TestCreateAppUserAcceptsForm(t *testing.T) {
	svc := &accountServiceMock{createResp: &dto.TokenResponse{Token: "abc"}}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	form := url.Values{"role": {"student"}, "username": {"ana"}, "password": {"pw"}}
	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(form.Encode()), "application/x-www-form-urlencoded")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student", svc.createReq.Role)
	assert.Equal(t, "ana", svc.createReq.Username)
	assert.JSONEq(t, `{"token":"abc"}`, w.Body.String())
}

func TestCreateAppUserAcceptsJSON(t *testing.T) {
	svc := &accountServiceMock{createResp: &dto.TokenResponse{Token: "abc"}}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	body := `{"role":"teacher","username":"prof","password":"pw","dept":"Maths"}`
	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(body), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", svc.createReq.Role)
	assert.Equal(t, "Maths", svc.createReq.Dept)
}

func TestCreateAppUserUnsupportedRoleIsBareString(t *testing.T) {
	svc := &accountServiceMock{createErr: appErrors.ErrUnsupportedRole}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(`{"role":"admin"}`), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"Role not supported"`, strings.TrimSpace(w.Body.String()))
}

func TestCreateAppUserNonStringRoleIsUnsupported(t *testing.T) {
	accounts := service.NewAccountService(nil, nil, nil, nil, nil, service.AccountConfig{})
	handler := NewAccountHandler(accounts, &deviceServiceMock{})

	body := `{"role":5,"username":"ana","password":"pw"}`
	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(body), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"Role not supported"`, strings.TrimSpace(w.Body.String()))
}

func TestCreateAppUserReadsScalarsAsText(t *testing.T) {
	svc := &accountServiceMock{createErr: appErrors.ErrUnsupportedRole}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	body := `{"role":5,"username":42,"password":null}`
	c, _ := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(body), "application/json")

	handler.CreateAppUser(c)

	require.True(t, svc.called)
	assert.Equal(t, "5", svc.createReq.Role)
	assert.Equal(t, "42", svc.createReq.Username)
	assert.Empty(t, svc.createReq.Password)
}

func TestCreateAppUserJSONWithoutContentType(t *testing.T) {
	svc := &accountServiceMock{createResp: &dto.TokenResponse{Token: "abc"}}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	body := `{"role":"student","username":"ana","password":"pw"}`
	for _, contentType := range []string{"", "text/plain"} {
		c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(body), contentType)

		handler.CreateAppUser(c)

		require.Equal(t, http.StatusOK, w.Code, contentType)
		assert.Equal(t, "student", svc.createReq.Role, contentType)
		assert.Equal(t, "ana", svc.createReq.Username, contentType)
	}
}

func TestCreateAppUserRejectsNonObjectJSON(t *testing.T) {
	svc := &accountServiceMock{}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(`["student"]`), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)
}

func TestCreateAppUserFieldErrors(t *testing.T) {
	svc := &accountServiceMock{createErr: appErrors.FieldError("username", "A user with that username already exists.")}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(`{"role":"student","username":"ana","password":"pw"}`), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"A user with that username already exists."}, body["username"])
}

func TestCreateAppUserMalformedJSON(t *testing.T) {
	svc := &accountServiceMock{}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/create-app-user", bytes.NewBufferString(`{"role":`), "application/json")

	handler.CreateAppUser(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)
	assert.JSONEq(t, `{"detail":"malformed request body"}`, w.Body.String())
}

func TestCreateAppUserEmptyBodyReachesValidation(t *testing.T) {
	svc := &accountServiceMock{createErr: appErrors.ErrUnsupportedRole}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/create-app-user", nil, "application/json")

	handler.CreateAppUser(c)

	assert.True(t, svc.called)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObtainToken(t *testing.T) {
	svc := &accountServiceMock{obtainResp: &dto.ObtainTokenResponse{Token: "abc", Role: "teacher"}}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	form := url.Values{"username": {"prof"}, "password": {"pw"}}
	c, w := newAccountContext(http.MethodPost, "/obtain-token", bytes.NewBufferString(form.Encode()), "application/x-www-form-urlencoded")

	handler.ObtainToken(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prof", svc.obtainReq.Username)
	assert.JSONEq(t, `{"token":"abc","role":"teacher"}`, w.Body.String())
}

func TestObtainTokenInvalidCredentials(t *testing.T) {
	svc := &accountServiceMock{obtainErr: appErrors.WithDetails(appErrors.ErrInvalidCredentials, map[string][]string{
		appErrors.NonFieldErrors: {appErrors.ErrInvalidCredentials.Message},
	})}
	handler := NewAccountHandler(svc, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodPost, "/obtain-token", bytes.NewBufferString(`{"username":"x","password":"y"}`), "application/json")

	handler.ObtainToken(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"non_field_errors":["Unable to log in with provided credentials."]}`, w.Body.String())
}

func TestRegisterDevice(t *testing.T) {
	devices := &deviceServiceMock{resp: &dto.RegisterDeviceResponse{Active: true, Created: true}}
	handler := NewAccountHandler(&accountServiceMock{}, devices)

	c, w := newAccountContext(http.MethodPost, "/register-device", bytes.NewBufferString(`{"registration_id":"reg-1"}`), "application/json")
	user := &models.User{ID: "user-1", Username: "ana"}
	c.Set(middleware.ContextUserKey, user)

	handler.RegisterDevice(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, user, devices.user)
	assert.Equal(t, "reg-1", devices.req.RegistrationID)
	assert.JSONEq(t, `{"active":true,"created":true}`, w.Body.String())
}

func TestRegisterDeviceRequiresUser(t *testing.T) {
	devices := &deviceServiceMock{}
	handler := NewAccountHandler(&accountServiceMock{}, devices)

	c, w := newAccountContext(http.MethodPost, "/register-device", bytes.NewBufferString(`{"registration_id":"reg-1"}`), "application/json")

	handler.RegisterDevice(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, devices.user)
}

func TestListDevicesEmpty(t *testing.T) {
	handler := NewAccountHandler(&accountServiceMock{}, &deviceServiceMock{})

	c, w := newAccountContext(http.MethodGet, "/devices", nil, "")
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1"})

	handler.ListDevices(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestDeactivateDeviceNotFound(t *testing.T) {
	devices := &deviceServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "device not found")}
	handler := NewAccountHandler(&accountServiceMock{}, devices)

	c, w := newAccountContext(http.MethodDelete, "/devices/dev-1", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "dev-1"}}
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1"})

	handler.DeactivateDevice(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "dev-1", devices.deactivatedID)
	assert.JSONEq(t, `{"detail":"device not found"}`, w.Body.String())
}
