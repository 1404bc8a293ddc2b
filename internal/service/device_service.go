package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	"github.com/noah-isme/caluny-api/pkg/database"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
	"github.com/noah-isme/caluny-api/pkg/validation"
)

type deviceRepository interface {
	GetOrCreate(ctx context.Context, device *models.PushDevice) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.PushDevice, error)
	Deactivate(ctx context.Context, userID, id string) (bool, error)
}

// DeviceService registers push devices for authenticated users.
type DeviceService struct {
	repo      deviceRepository
	validator *validation.Validator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(repo deviceRepository, validate *validation.Validator, metrics *MetricsService, logger *zap.Logger) *DeviceService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// Register returns the device of user with the given registration id,
// creating it on first use. An existing device is returned untouched.
func (s *DeviceService) Register(ctx context.Context, user *models.User, req dto.RegisterDeviceRequest) (*dto.RegisterDeviceResponse, error) {
	if err := s.validator.Check(req); err != nil {
		return nil, err
	}

	device := &models.PushDevice{
		UserID:         user.ID,
		RegistrationID: req.RegistrationID,
		DeviceID:       normalizeDeviceID(req.DeviceID),
		Name:           user.Username + " device",
		Active:         true,
	}
	created, err := s.repo.GetOrCreate(ctx, device)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register device")
	}

	s.metrics.DeviceRegistered(created)
	if created {
		s.logger.Info("device registered", zap.String("user_id", user.ID), zap.String("device_id", device.ID))
	}
	return &dto.RegisterDeviceResponse{Active: device.Active, Created: created}, nil
}

// List returns the devices of user.
func (s *DeviceService) List(ctx context.Context, user *models.User) ([]models.PushDevice, error) {
	devices, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list devices")
	}
	return devices, nil
}

// Deactivate stops pushes to one of user's devices.
func (s *DeviceService) Deactivate(ctx context.Context, user *models.User, id string) error {
	ok, err := s.repo.Deactivate(ctx, user.ID, id)
	if database.IsInvalidText(err) {
		return appErrors.Clone(appErrors.ErrNotFound, "device not found")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate device")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "device not found")
	}
	return nil
}

// normalizeDeviceID stores hexadecimal ids lower case without a 0x prefix.
func normalizeDeviceID(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	raw = strings.ToLower(raw)
	raw = strings.TrimPrefix(raw, "0x")
	return &raw
}
