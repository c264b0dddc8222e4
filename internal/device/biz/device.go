package biz

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Device is one registered client device. Duplicate registrations are
// allowed; there is no uniqueness across (user, name, type).
type Device struct {
	DeviceID   string
	UserID     string
	DeviceName string
	DeviceType string
	AddedDate  time.Time
}

// DeviceRepo defines the interface for device data operations
type DeviceRepo interface {
	Create(ctx context.Context, device *Device) error
	ListByUser(ctx context.Context, userID string) ([]*Device, error)
}

// DeviceUseCase contains business logic for the device registry
type DeviceUseCase struct {
	repo DeviceRepo
}

func NewDeviceUseCase(repo DeviceRepo) *DeviceUseCase {
	return &DeviceUseCase{repo: repo}
}

// Register stores a new device under a generated id.
func (uc *DeviceUseCase) Register(ctx context.Context, userID, name, deviceType string) (*Device, error) {
	device := &Device{
		DeviceID:   uuid.New().String(),
		UserID:     userID,
		DeviceName: name,
		DeviceType: deviceType,
		AddedDate:  time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, device); err != nil {
		return nil, err
	}

	return device, nil
}

func (uc *DeviceUseCase) List(ctx context.Context, userID string) ([]*Device, error) {
	return uc.repo.ListByUser(ctx, userID)
}
