package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Media kinds accepted by Upload
const (
	MediaVideo     = "videos"
	MediaThumbnail = "thumbnails"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

var allowedExtensions = map[string][]string{
	MediaVideo:     {".mp4", ".webm", ".mov", ".m4v"},
	MediaThumbnail: {".jpg", ".jpeg", ".png", ".webp"},
}

// ObjectPutter is the part of the S3 API the media service uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MediaService stores uploaded video files and thumbnails in S3
type MediaService struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	log     *zap.Logger
}

// NewMediaService creates a media service for bucket. Without a bucket uploads
// are refused with ErrStorageDisabled.
func NewMediaService(ctx context.Context, awsRegion, bucket, baseURL string, log *zap.Logger) (*MediaService, error) {
	log = log.With(zap.String("component", "media"))
	if bucket == "" {
		log.Info("media uploads disabled: S3_BUCKET not configured")
		return &MediaService{log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, awsRegion)
	}
	return NewMediaServiceWithClient(s3.NewFromConfig(cfg), bucket, baseURL, log), nil
}

// NewMediaServiceWithClient creates a media service around client
func NewMediaServiceWithClient(client ObjectPutter, bucket, baseURL string, log *zap.Logger) *MediaService {
	return &MediaService{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// IsEnabled returns whether uploads are configured
func (s *MediaService) IsEnabled() bool {
	return s.client != nil
}

// Upload stores body under a fresh key in the kind's folder and returns its
// public URL.
func (s *MediaService) Upload(ctx context.Context, kind, filename string, body io.Reader, size int64) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageDisabled
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !extensionAllowed(kind, ext) {
		return "", fmt.Errorf("%w: %s %q", ErrUnsupportedMedia, kind, ext)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := kind + "/" + uuid.New().String() + ext
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info("media uploaded", zap.String("key", key), zap.Int64("size", size))
	return s.baseURL + "/" + key, nil
}

func extensionAllowed(kind, ext string) bool {
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			return true
		}
	}
	return false
}
