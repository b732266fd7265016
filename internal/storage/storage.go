package storage

import (
	"fmt"
	"mime/multipart"

	"github.com/MHR-RONY/Gramer--Bazar/config"
)

// FileStorage 文件存储接口，path 为存储桶内的完整对象键
type FileStorage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// New 根据配置选择存储驱动
func New(cfg *config.Config) (FileStorage, error) {
	switch cfg.StorageDriver {
	case "local":
		return NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL)
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}
