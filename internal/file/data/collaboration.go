package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"gorm.io/gorm"
)

// CollaborationPO is one append-only share event. Rows are never updated
// or deleted, and duplicates are expected.
type CollaborationPO struct {
	ID         uint      `gorm:"primarykey"`
	FileID     string    `gorm:"type:uuid;not null;index:idx_collaborations_file"`
	OwnerID    string    `gorm:"size:255;not null"`
	SharedWith string    `gorm:"size:255;not null"`
	SharedDate time.Time `gorm:"not null"`
}

func (CollaborationPO) TableName() string {
	return "collaborations"
}

// CollaborationRepo implements biz.CollaborationRepo.
type CollaborationRepo struct {
	db *gorm.DB
}

func NewCollaborationRepo(db *gorm.DB) biz.CollaborationRepo {
	return &CollaborationRepo{db: db}
}

func (r *CollaborationRepo) Create(ctx context.Context, collab *biz.Collaboration) error {
	po := &CollaborationPO{
		FileID:     collab.FileID,
		OwnerID:    collab.OwnerID,
		SharedWith: collab.SharedWith,
		SharedDate: collab.SharedDate,
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to insert collaboration record: %w", err)
	}
	return nil
}
