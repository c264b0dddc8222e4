package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/auth"
	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	"github.com/lk2023060901/cloud-drive-backend/internal/data"
	devicebiz "github.com/lk2023060901/cloud-drive-backend/internal/device/biz"
	devicedata "github.com/lk2023060901/cloud-drive-backend/internal/device/data"
	deviceservice "github.com/lk2023060901/cloud-drive-backend/internal/device/service"
	"github.com/lk2023060901/cloud-drive-backend/internal/extract"
	feedbackbiz "github.com/lk2023060901/cloud-drive-backend/internal/feedback/biz"
	feedbackdata "github.com/lk2023060901/cloud-drive-backend/internal/feedback/data"
	feedbackservice "github.com/lk2023060901/cloud-drive-backend/internal/feedback/service"
	filebiz "github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	filedata "github.com/lk2023060901/cloud-drive-backend/internal/file/data"
	fileservice "github.com/lk2023060901/cloud-drive-backend/internal/file/service"
	"github.com/lk2023060901/cloud-drive-backend/internal/notify"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/cloud-drive-backend/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize repositories and store adapters
	fileRepo := filedata.NewFileRepo(d.DB)
	folderRepo := filedata.NewFolderRepo(d.DB)
	collabRepo := filedata.NewCollaborationRepo(d.DB)
	blobStore := filedata.NewMinIOBlobStore(d.MinIOClient, config.MinIO.Bucket)
	deviceRepo := devicedata.NewDeviceRepo(d.DB)
	feedbackRepo := feedbackdata.NewFeedbackRepo(d.DB)

	// Initialize use cases
	extractor := extract.NewService(log)
	mailer := notify.NewMailer(config.SMTP)
	var notifier filebiz.ShareNotifier
	if mailer != nil {
		notifier = mailer
	}
	fileUseCase := filebiz.NewFileUseCase(
		fileRepo,
		folderRepo,
		collabRepo,
		blobStore,
		extractor,
		notifier,
		log.Logger,
	)
	deviceUseCase := devicebiz.NewDeviceUseCase(deviceRepo)
	feedbackUseCase := feedbackbiz.NewFeedbackUseCase(feedbackRepo)

	// Initialize services
	fileService := fileservice.NewFileService(fileUseCase, config.Upload, log.Logger)
	deviceService := deviceservice.NewDeviceService(deviceUseCase, log.Logger)
	feedbackService := feedbackservice.NewFeedbackService(feedbackUseCase, log.Logger)

	// Identity gate
	var verifier auth.Verifier
	switch config.Auth.Mode {
	case "provider":
		verifier = auth.NewProviderVerifier(config.Auth.ProviderURL)
	default:
		verifier = auth.NewJWTVerifier(config.Auth.JWTSecret)
	}

	httpServer := server.NewHTTPServer(config, log.Logger, fileService, deviceService, feedbackService, verifier)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
