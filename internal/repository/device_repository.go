package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/caluny-api/internal/models"
)

const deviceColumns = "id, user_id, registration_id, device_id, name, active, created_at"

// DeviceRepository persists GCM push devices.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository creates a new repository instance.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// GetOrCreate inserts device unless the (user, registration id) pair exists,
// then loads the stored row into device. created reports whether the insert won.
func (r *DeviceRepository) GetOrCreate(ctx context.Context, device *models.PushDevice) (created bool, err error) {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	if device.CreatedAt.IsZero() {
		device.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin register device: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO push_devices (id, user_id, registration_id, device_id, name, active, created_at)
VALUES (:id, :user_id, :registration_id, :device_id, :name, :active, :created_at)
ON CONFLICT (user_id, registration_id) DO NOTHING`
	res, err := tx.NamedExecContext(ctx, insert, device)
	if err != nil {
		return false, fmt.Errorf("insert device: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("device rows affected: %w", err)
	}

	query := "SELECT " + deviceColumns + " FROM push_devices WHERE user_id = $1 AND registration_id = $2"
	if err = tx.GetContext(ctx, device, query, device.UserID, device.RegistrationID); err != nil {
		return false, fmt.Errorf("load device: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit register device: %w", err)
	}
	return affected > 0, nil
}

// ListByUser returns the devices of a user, newest first.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]models.PushDevice, error) {
	query := "SELECT " + deviceColumns + " FROM push_devices WHERE user_id = $1 ORDER BY created_at DESC"
	var devices []models.PushDevice
	if err := r.db.SelectContext(ctx, &devices, query, userID); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// Deactivate marks a device of the user inactive. It returns false when no
// such device exists.
func (r *DeviceRepository) Deactivate(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE push_devices SET active = FALSE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deactivate device: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate device rows affected: %w", err)
	}
	return affected > 0, nil
}
