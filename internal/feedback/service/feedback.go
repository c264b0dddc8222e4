package service

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/feedback/biz"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type FeedbackService struct {
	uc     *biz.FeedbackUseCase
	logger *zap.Logger
}

func NewFeedbackService(uc *biz.FeedbackUseCase, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		uc:     uc,
		logger: logger,
	}
}

func (s *FeedbackService) Submit(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		response.InternalError(c, "Failed to submit feedback")
		return
	}

	if err := s.uc.Submit(c.Request.Context(), payload); err != nil {
		s.logger.Error("failed to store feedback", zap.Error(err))
		response.InternalError(c, "Failed to submit feedback")
		return
	}

	response.Created(c, "Feedback submitted successfully")
}

func (s *FeedbackService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/feedback", s.Submit)
}
