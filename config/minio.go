package config

import (
	"os"
	"time"
)

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	// 连接配置
	Endpoint        string `json:"endpoint" yaml:"endpoint"`               // MinIO 服务地址，如: localhost:9000
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId"`         // Access Key
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"` // Secret Key
	UseSSL          bool   `json:"useSSL" yaml:"useSSL"`                   // 是否使用 HTTPS

	// Bucket 配置
	BucketName string `json:"bucketName" yaml:"bucketName"` // 默认存储桶名称
	Location   string `json:"location" yaml:"location"`     // Bucket 区域，如: us-east-1

	// 上传配置
	MaxFileSize   int64         `json:"maxFileSize" yaml:"maxFileSize"`     // 最大文件大小（字节）
	AllowedTypes  []string      `json:"allowedTypes" yaml:"allowedTypes"`   // 允许的文件类型
	UploadTimeout time.Duration `json:"uploadTimeout" yaml:"uploadTimeout"` // 上传超时时间

	// 访问配置
	PublicRead bool   `json:"publicRead" yaml:"publicRead"` // 是否公开读取
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"`       // 外部访问的基础 URL

	// 初始化配置
	// 客户端在进程启动时同步完成初始化（含 Bucket 检查），超时即启动失败，
	// 不做 "未初始化时轮询等待" 的延迟逻辑。
	InitTimeout time.Duration `json:"initTimeout" yaml:"initTimeout"`
}

// DefaultMinIOConfig 返回本地开发的默认配置
func DefaultMinIOConfig() MinIOConfig {
	cfg := MinIOConfig{
		Endpoint:        "127.0.0.1:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,

		BucketName: "socialserver",
		Location:   "us-east-1",

		MaxFileSize: 20 * 1024 * 1024, // 20MB，动态允许短视频
		AllowedTypes: []string{
			"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp",
			"video/mp4", "video/webm",
		},
		UploadTimeout: 60 * time.Second,

		PublicRead: true,
		BaseURL:    "http://localhost:9000",

		InitTimeout: 10 * time.Second,
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if ak := os.Getenv("MINIO_ACCESS_KEY"); ak != "" {
		cfg.AccessKeyID = ak
	}
	if sk := os.Getenv("MINIO_SECRET_KEY"); sk != "" {
		cfg.SecretAccessKey = sk
	}
	if base := os.Getenv("MINIO_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	return cfg
}
