package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"gorm.io/gorm"
)

// FolderPO is an existence row keyed by (folder id, user id). There is
// deliberately no unique constraint: concurrent moves into the same new
// folder may insert duplicates, which the lookup tolerates.
type FolderPO struct {
	ID        uint      `gorm:"primarykey"`
	FolderID  string    `gorm:"size:255;not null;index:idx_folders_user_folder"`
	UserID    string    `gorm:"size:255;not null;index:idx_folders_user_folder"`
	CreatedAt time.Time `gorm:"not null"`
}

func (FolderPO) TableName() string {
	return "folders"
}

// FolderRepo implements biz.FolderRepo.
type FolderRepo struct {
	db *gorm.DB
}

func NewFolderRepo(db *gorm.DB) biz.FolderRepo {
	return &FolderRepo{db: db}
}

func (r *FolderRepo) Exists(ctx context.Context, folderID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&FolderPO{}).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query folder record: %w", err)
	}
	return count > 0, nil
}

func (r *FolderRepo) Create(ctx context.Context, folderID, userID string) error {
	po := &FolderPO{
		FolderID:  folderID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to insert folder record: %w", err)
	}
	return nil
}
