package service

import (
	"context"
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"safety_training_backend/pkg/logger"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageService 把 file 类型幻灯片存储的对象键解析为可访问 URL。
// 上传本身由外围 CRUD 后端负责，这里只做读取端的地址解析。
type StorageService struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewStorageService(cfg *config.Config) *StorageService {
	s := &StorageService{Config: &cfg.Storage}

	if cfg.Storage.Type == util.StorageMinio {
		client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
			Secure: false,
		})
		if err != nil {
			logger.Log.Error("failed to initialize minio client, falling back to local urls", zap.Error(err))
		} else {
			s.Client = client
		}
	}

	return s
}

// SlideContentURL 非 file 类型的幻灯片内容原样返回（文本 / google slides 链接）
func (s *StorageService) SlideContentURL(ctx context.Context, slide *model.Slide) string {
	if slide.Type != model.SlideFile {
		return slide.Content
	}

	if s.Client != nil {
		url, err := s.Client.PresignedGetObject(ctx, s.Config.MinioBucket, slide.Content, time.Hour, nil)
		if err != nil {
			logger.Log.Error("failed to presign slide url",
				zap.String("object", slide.Content),
				zap.Error(err))
			return ""
		}
		return url.String()
	}

	return "/uploads/" + slide.Content
}
