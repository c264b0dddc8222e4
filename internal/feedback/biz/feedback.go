package biz

import (
	"context"
	"time"
)

// Feedback is a raw opaque payload; no user association, no schema.
type Feedback struct {
	Payload    []byte
	ReceivedAt time.Time
}

// FeedbackRepo defines the interface for feedback data operations
type FeedbackRepo interface {
	Create(ctx context.Context, fb *Feedback) error
}

// FeedbackUseCase stores submitted feedback verbatim
type FeedbackUseCase struct {
	repo FeedbackRepo
}

func NewFeedbackUseCase(repo FeedbackRepo) *FeedbackUseCase {
	return &FeedbackUseCase{repo: repo}
}

func (uc *FeedbackUseCase) Submit(ctx context.Context, payload []byte) error {
	return uc.repo.Create(ctx, &Feedback{
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	})
}
