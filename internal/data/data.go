package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	devicedata "github.com/lk2023060901/cloud-drive-backend/internal/device/data"
	feedbackdata "github.com/lk2023060901/cloud-drive-backend/internal/feedback/data"
	filedata "github.com/lk2023060901/cloud-drive-backend/internal/file/data"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Data bundles the long-lived store clients. Both are safe for
// concurrent use and are injected into the repositories rather than held
// as process-scope singletons.
type Data struct {
	DB          *gorm.DB
	MinIOClient *minio.Client
}

func NewData(config *conf.Config, log *zap.Logger) (*Data, func(), error) {
	db, err := initDB(config, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	minioClient, err := initMinIO(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	d := &Data{
		DB:          db,
		MinIOClient: minioClient,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return d, cleanup, nil
}

func initDB(config *conf.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&filedata.FilePO{},
		&filedata.FolderPO{},
		&filedata.CollaborationPO{},
		&devicedata.DevicePO{},
		&feedbackdata.FeedbackPO{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	log.Info("database initialized successfully")
	return db, nil
}

func initMinIO(config *conf.Config) (*minio.Client, error) {
	minioClient, err := minio.New(config.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.MinIO.AccessKey, config.MinIO.SecretKey, ""),
		Secure: config.MinIO.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, config.MinIO.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, config.MinIO.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return minioClient, nil
}
