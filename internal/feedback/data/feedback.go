package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/feedback/biz"
	"gorm.io/gorm"
)

// FeedbackPO represents the database model
type FeedbackPO struct {
	ID         uint      `gorm:"primarykey"`
	Payload    []byte    `gorm:"type:bytea;not null"`
	ReceivedAt time.Time `gorm:"not null"`
}

func (FeedbackPO) TableName() string {
	return "feedback"
}

// FeedbackRepo implements biz.FeedbackRepo
type FeedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) biz.FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *biz.Feedback) error {
	po := &FeedbackPO{
		Payload:    fb.Payload,
		ReceivedAt: fb.ReceivedAt,
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to insert feedback record: %w", err)
	}
	return nil
}
