package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/response"
)

type accountService interface {
	CreateAppUser(ctx context.Context, req dto.CreateAppUserRequest) (*dto.TokenResponse, error)
	ObtainToken(ctx context.Context, req dto.ObtainTokenRequest) (*dto.ObtainTokenResponse, error)
}

type deviceService interface {
	Register(ctx context.Context, user *models.User, req dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error)
	List(ctx context.Context, user *models.User) ([]models.PushDevice, error)
	Deactivate(ctx context.Context, user *models.User, id string) error
}

// AccountHandler serves the mobile account endpoints. Responses are written
// without the envelope.
type AccountHandler struct {
	accounts accountService
	devices  deviceService
}

// NewAccountHandler constructs an account handler.
func NewAccountHandler(accounts accountService, devices deviceService) *AccountHandler {
	return &AccountHandler{accounts: accounts, devices: devices}
}

// CreateAppUser godoc
// @Summary Create a student or teacher account
// @Tags Accounts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body dto.CreateAppUserRequest true "Account payload"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} map[string][]string
// @Router /create-app-user [post]
func (h *AccountHandler) CreateAppUser(c *gin.Context) {
	var req dto.CreateAppUserRequest
	if err := bindBody(c, &req); err != nil {
		response.BareError(c, err)
		return
	}
	resp, err := h.accounts.CreateAppUser(c.Request.Context(), req)
	if err != nil {
		response.BareError(c, err)
		return
	}
	response.Bare(c, http.StatusOK, resp)
}

// ObtainToken godoc
// @Summary Exchange credentials for the API token
// @Tags Accounts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body dto.ObtainTokenRequest true "Credentials"
// @Success 200 {object} dto.ObtainTokenResponse
// @Failure 400 {object} map[string][]string
// @Router /obtain-token [post]
func (h *AccountHandler) ObtainToken(c *gin.Context) {
	var req dto.ObtainTokenRequest
	if err := bindBody(c, &req); err != nil {
		response.BareError(c, err)
		return
	}
	resp, err := h.accounts.ObtainToken(c.Request.Context(), req)
	if err != nil {
		response.BareError(c, err)
		return
	}
	response.Bare(c, http.StatusOK, resp)
}

// RegisterDevice godoc
// @Summary Register a GCM device for the caller
// @Tags Devices
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security TokenAuth
// @Param payload body dto.RegisterDeviceRequest true "Device"
// @Success 200 {object} dto.RegisterDeviceResponse
// @Failure 401 {object} map[string]string
// @Router /register-device [post]
func (h *AccountHandler) RegisterDevice(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.BareError(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RegisterDeviceRequest
	if err := bindBody(c, &req); err != nil {
		response.BareError(c, err)
		return
	}
	resp, err := h.devices.Register(c.Request.Context(), user, req)
	if err != nil {
		response.BareError(c, err)
		return
	}
	response.Bare(c, http.StatusOK, resp)
}

// ListDevices godoc
// @Summary List the caller's devices
// @Tags Devices
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.PushDevice
// @Router /devices [get]
func (h *AccountHandler) ListDevices(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.BareError(c, appErrors.ErrUnauthorized)
		return
	}
	devices, err := h.devices.List(c.Request.Context(), user)
	if err != nil {
		response.BareError(c, err)
		return
	}
	if devices == nil {
		devices = []models.PushDevice{}
	}
	response.Bare(c, http.StatusOK, devices)
}

// DeactivateDevice godoc
// @Summary Stop pushes to one of the caller's devices
// @Tags Devices
// @Security TokenAuth
// @Param id path string true "Device ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /devices/{id} [delete]
func (h *AccountHandler) DeactivateDevice(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.BareError(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.devices.Deactivate(c.Request.Context(), user, c.Param("id")); err != nil {
		response.BareError(c, err)
		return
	}
	response.NoContent(c)
}
