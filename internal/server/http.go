package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/auth"
	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	deviceservice "github.com/lk2023060901/cloud-drive-backend/internal/device/service"
	feedbackservice "github.com/lk2023060901/cloud-drive-backend/internal/feedback/service"
	fileservice "github.com/lk2023060901/cloud-drive-backend/internal/file/service"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *zap.Logger
}

func NewHTTPServer(
	config *conf.Config,
	logger *zap.Logger,
	fileService *fileservice.FileService,
	deviceService *deviceservice.DeviceService,
	feedbackService *feedbackservice.FeedbackService,
	verifier auth.Verifier,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.Default())
	// Buffering threshold only; the upload handler rejects files over
	// the configured cap.
	router.MaxMultipartMemory = config.Upload.MaxSizeBytes()

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// All other routes share the identity gate when auth is enabled.
	api := router.Group("/")
	if config.Auth.Enabled {
		api.Use(auth.Middleware(verifier))
	}
	fileService.RegisterRoutes(api)
	deviceService.RegisterRoutes(api)
	feedbackService.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
