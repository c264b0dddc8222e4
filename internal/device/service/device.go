package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/device/biz"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type DeviceService struct {
	uc     *biz.DeviceUseCase
	logger *zap.Logger
}

func NewDeviceService(uc *biz.DeviceUseCase, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		uc:     uc,
		logger: logger,
	}
}

type registerDeviceRequest struct {
	UserID     string `json:"user_id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
}

type deviceResponse struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
}

func (s *DeviceService) List(c *gin.Context) {
	userID := c.Query("user_id")

	devices, err := s.uc.List(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list devices", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, "Error listing devices")
		return
	}

	out := make([]deviceResponse, len(devices))
	for i, d := range devices {
		out[i] = deviceResponse{
			DeviceID:   d.DeviceID,
			DeviceName: d.DeviceName,
			DeviceType: d.DeviceType,
		}
	}
	response.JSON(c, out)
}

func (s *DeviceService) Register(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceName == "" || req.DeviceType == "" {
		response.BadRequest(c, "Device name and type are required")
		return
	}

	device, err := s.uc.Register(c.Request.Context(), req.UserID, req.DeviceName, req.DeviceType)
	if err != nil {
		s.logger.Error("failed to register device", zap.String("user_id", req.UserID), zap.Error(err))
		response.InternalError(c, "Failed to add device")
		return
	}

	response.Created(c, "Device added successfully", gin.H{"device_id": device.DeviceID})
}

func (s *DeviceService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/devices", s.List)
	r.POST("/devices", s.Register)
}
