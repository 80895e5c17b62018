package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/lumiskin/skincare-backend/config"
)

const presignExpiry = 15 * time.Minute

var (
	ErrFolderNotAllowed      = errors.New("upload folder not allowed")
	ErrContentTypeNotAllowed = errors.New("only JPEG, PNG, GIF and WEBP images are allowed")
)

// Folders images may be uploaded into
var allowedFolders = map[string]bool{
	"products": true,
	"ratings":  true,
	"avatars":  true,
	"brands":   true,
}

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type PresignedURLResponse struct {
	UploadURL string `json:"UploadUrl"`
	FileURL   string `json:"FileUrl"`
	Key       string `json:"Key"`
}

// ImageStorage hands out direct-upload URLs for product, rating, avatar and brand images
type ImageStorage interface {
	PresignUpload(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(cfg config.S3Config) *S3Storage {
	var awsCfg aws.Config

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		// environment, shared credentials file or instance role
		loaded, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// ObjectKey validates the upload and returns a fresh key under folder
func ObjectKey(filename, contentType, folder string) (string, error) {
	if !allowedFolders[folder] {
		return "", ErrFolderNotAllowed
	}
	defaultExt, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", ErrContentTypeNotAllowed
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = defaultExt
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext), nil
}

// PresignUpload returns a PUT URL valid for 15 minutes and the public URL
// the object will be served from
func (s *S3Storage) PresignUpload(ctx context.Context, filename, contentType, folder string) (*PresignedURLResponse, error) {
	key, err := ObjectKey(filename, contentType, folder)
	if err != nil {
		return nil, err
	}

	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: presigned.URL,
		FileURL:   s.publicURL(key),
		Key:       key,
	}, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
