package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"SocialServer/config"
	"SocialServer/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var global *MinIOClient

// MinIOClient MinIO 客户端封装
type MinIOClient struct {
	client *minio.Client
	config config.MinIOConfig
}

// Client 返回全局 MinIO 客户端（未初始化时为 nil）
func Client() *MinIOClient {
	return global
}

// ReplaceGlobal 设置全局 MinIO 客户端
func ReplaceGlobal(c *MinIOClient) {
	global = c
}

// Build 基于配置创建 MinIO 客户端。
// 初始化是同步的：校验配置、建连、确保 Bucket 存在，全部在 InitTimeout 内完成，
// 失败直接返回错误由启动流程处理，运行期不存在 "等客户端就绪" 的状态。
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" {
		return nil, errors.New("minio accessKeyId is empty")
	}
	if strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, errors.New("minio secretAccessKey is empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		config: cfg,
	}

	initTimeout := cfg.InitTimeout
	if initTimeout <= 0 {
		initTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}

	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Location,
		}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}

		logger.Info(ctx, "MinIO Bucket 创建成功",
			logger.String("bucket", cfg.BucketName),
		)

		if cfg.PublicRead {
			policy := fmt.Sprintf(`{
				"Version": "2012-10-17",
				"Statement": [
					{
						"Effect": "Allow",
						"Principal": {"AWS": ["*"]},
						"Action": ["s3:GetObject"],
						"Resource": ["arn:aws:s3:::%s/*"]
					}
				]
			}`, cfg.BucketName)

			if err := minioClient.SetBucketPolicy(ctx, cfg.BucketName, policy); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField("error", err),
				)
			}
		}
	}

	return client, nil
}

// StoreOptions 上传选项
type StoreOptions struct {
	// 文件名（用于保留扩展名，最终对象名会加 UUID 前缀避免冲突）
	FileName string
	// 分类目录（如: "posts"、"avatars"），作为对象路径前缀
	Category string
	// 内容类型，为空时按内容自动检测
	ContentType string
}

// Store 上传文件并返回可公开访问的 URL。
// Content-Type 以内容检测结果为准（Magic Bytes），不信任调用方声明，
// 防止伪装成图片的恶意文件进入公开 Bucket。
func (c *MinIOClient) Store(ctx context.Context, reader io.Reader, fileSize int64, opts StoreOptions) (string, error) {
	if c.config.MaxFileSize > 0 && fileSize > c.config.MaxFileSize {
		return "", fmt.Errorf("文件大小超过限制: %d bytes (最大: %d bytes)", fileSize, c.config.MaxFileSize)
	}

	// 读取前 512 字节检测真实类型（http.DetectContentType 的要求）
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("读取文件内容失败: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if opts.ContentType != "" && !strings.EqualFold(opts.ContentType, contentType) {
		logger.Warn(ctx, "声明的文件类型与检测结果不一致，以检测结果为准",
			logger.String("declared", opts.ContentType),
			logger.String("detected", contentType),
		)
	}

	if len(c.config.AllowedTypes) > 0 && !c.isAllowedType(contentType) {
		return "", fmt.Errorf("不支持的文件类型: %s", contentType)
	}

	objectName := c.buildObjectName(opts.Category, opts.FileName)

	// 已读取的头部和剩余内容重新拼成完整流
	full := io.MultiReader(bytes.NewReader(head), reader)

	uploadCtx := ctx
	if c.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.config.UploadTimeout)
		defer cancel()
	}

	_, err = c.client.PutObject(uploadCtx, c.config.BucketName, objectName, full, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", objectName),
			logger.Int64("size", fileSize),
			logger.ErrorField("error", err),
		)
		return "", fmt.Errorf("上传失败: %w", err)
	}

	return c.buildURL(objectName), nil
}

// Delete 按公开 URL 删除对象。
// 幂等：对象不存在不算错误（MinIO RemoveObject 对缺失对象返回成功）。
func (c *MinIOClient) Delete(ctx context.Context, publicURL string) error {
	objectName := c.objectNameFromURL(publicURL)
	if objectName == "" {
		// 不是本存储的 URL，按幂等语义静默忽略
		return nil
	}

	if err := c.client.RemoveObject(ctx, c.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象失败: %w", err)
	}
	return nil
}

// buildObjectName 生成对象名: {category}/{uuid}{ext}
func (c *MinIOClient) buildObjectName(category, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	name := uuid.New().String() + ext
	if category == "" {
		return name
	}
	return strings.Trim(category, "/") + "/" + name
}

// buildURL 生成外部访问 URL: {baseURL}/{bucket}/{object}
func (c *MinIOClient) buildURL(objectName string) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, c.config.BucketName, objectName)
}

// objectNameFromURL 从公开 URL 中还原对象名，不匹配时返回空串。
func (c *MinIOClient) objectNameFromURL(publicURL string) string {
	prefix := strings.TrimRight(c.config.BaseURL, "/") + "/" + c.config.BucketName + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(publicURL, prefix)
}

func (c *MinIOClient) isAllowedType(contentType string) bool {
	for _, allowed := range c.config.AllowedTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
