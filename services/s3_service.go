package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

const presignExpiry = 5 * time.Minute

// BlobStore stores attachment bytes and returns a URL for them.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, key string, kind ResourceKind) (string, error)
}

// S3Service is the S3-backed BlobStore and presigned URL issuer.
type S3Service struct {
	Client        *s3.Client
	Presigner     *s3.PresignClient
	Bucket        string
	PublicBaseURL string
	Logger        *logger.Logger
}

// NewS3Service creates an S3 service for bucket.
func NewS3Service(cfg aws.Config, bucket, publicBaseURL string, log *logger.Logger) *S3Service {
	client := s3.NewFromConfig(cfg)
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3Service{
		Client:        client,
		Presigner:     s3.NewPresignClient(client),
		Bucket:        bucket,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		Logger:        logger.OrGlobal(log),
	}
}

// Upload puts data under key and returns its public URL.
func (s *S3Service) Upload(ctx context.Context, data []byte, key string, kind ResourceKind) (string, error) {
	contentType := contentTypeFor(key, kind)

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.Logger.Error("attachment upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrUpload, err)
	}

	s.Logger.Debug("attachment uploaded",
		zap.String("key", key),
		zap.String("kind", string(kind)),
		zap.Int("bytes", len(data)))
	return s.PublicBaseURL + "/" + key, nil
}

// GenerateUploadURL generates a presigned URL for uploading a profile picture
func (s *S3Service) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	if _, _, err := ClassifyAttachment(fileName, true); err != nil {
		return "", "", err
	}

	key := models.ProfilePicsPrefix + time.Now().Format("20060102150405") + "-" + fileName
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presignedURL, err := s.Presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}
	return presignedURL.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a file
func (s *S3Service) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presignedURL, err := s.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}

func contentTypeFor(key string, kind ResourceKind) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		if ct := mime.TypeByExtension(key[i:]); ct != "" {
			return ct
		}
	}
	if kind == ResourceRaw {
		return "application/pdf"
	}
	return "application/octet-stream"
}
