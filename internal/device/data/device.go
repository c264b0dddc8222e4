package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/device/biz"
	"gorm.io/gorm"
)

// DevicePO represents the database model
type DevicePO struct {
	DeviceID   string    `gorm:"type:uuid;primarykey;column:device_id"`
	UserID     string    `gorm:"size:255;not null;index:idx_devices_user"`
	DeviceName string    `gorm:"size:255;not null"`
	DeviceType string    `gorm:"size:64;not null"`
	AddedDate  time.Time `gorm:"not null"`
}

func (DevicePO) TableName() string {
	return "devices"
}

// DeviceRepo implements biz.DeviceRepo
type DeviceRepo struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) biz.DeviceRepo {
	return &DeviceRepo{db: db}
}

func (r *DeviceRepo) Create(ctx context.Context, device *biz.Device) error {
	po := &DevicePO{
		DeviceID:   device.DeviceID,
		UserID:     device.UserID,
		DeviceName: device.DeviceName,
		DeviceType: device.DeviceType,
		AddedDate:  device.AddedDate,
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to insert device record: %w", err)
	}
	return nil
}

func (r *DeviceRepo) ListByUser(ctx context.Context, userID string) ([]*biz.Device, error) {
	var pos []DevicePO
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list device records: %w", err)
	}

	devices := make([]*biz.Device, len(pos))
	for i, po := range pos {
		devices[i] = &biz.Device{
			DeviceID:   po.DeviceID,
			UserID:     po.UserID,
			DeviceName: po.DeviceName,
			DeviceType: po.DeviceType,
			AddedDate:  po.AddedDate,
		}
	}
	return devices, nil
}
