package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"evaluation-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient stores archived evaluation report workbooks.
type MinioClient struct {
	client *minio.Client
	region string
}

var Storage = struct {
	EvaluationReports string
}{
	EvaluationReports: "evaluation-reports",
}

var BucketNames = []string{
	Storage.EvaluationReports,
}

// endpoint strips the scheme and trailing slash from a configured URL.
// The scheme decides Secure unless MINIO_SECURE says otherwise.
func endpoint(cfg config.MinioConfig) (host string, secure bool) {
	host = strings.TrimSuffix(cfg.MinioURL, "/")
	if rest, ok := strings.CutPrefix(host, "https://"); ok {
		host, secure = rest, true
	} else {
		host = strings.TrimPrefix(host, "http://")
	}
	if flag, err := strconv.ParseBool(cfg.MinioSecure); err == nil {
		secure = flag
	} else if cfg.MinioSecure != "" {
		slog.Warn("Invalid MINIO_SECURE value, using URL scheme", "value", cfg.MinioSecure, "secure", secure)
	}
	return host, secure
}

func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	host, secure := endpoint(cfg)
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: secure,
		Region: cfg.MinioLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc := &MinioClient{client: client, region: cfg.MinioLocation}
	for _, bucketName := range BucketNames {
		if err := mc.ensureBucket(ctx, bucketName); err != nil {
			return nil, err
		}
	}
	slog.Info("Connected to MinIO", "endpoint", host, "secure", secure, "buckets", BucketNames)
	return mc, nil
}

func (mc *MinioClient) ensureBucket(ctx context.Context, bucketName string) error {
	exists, err := mc.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to reach MinIO bucket %s: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := mc.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: mc.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	slog.Info("Created MinIO bucket", "bucket", bucketName)
	return nil
}

func (mc *MinioClient) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	info, err := mc.client.PutObject(ctx, bucketName, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucketName, objectName, err)
	}
	slog.Info("Object uploaded", "bucket", bucketName, "object", objectName, "size", info.Size, "etag", info.ETag)
	return nil
}

func (mc *MinioClient) GetBytes(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	object, err := mc.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", bucketName, objectName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("not_found: object %s does not exist", objectName)
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", bucketName, objectName, err)
	}
	return data, nil
}

func (mc *MinioClient) DeleteFile(ctx context.Context, bucketName, objectName string) error {
	if err := mc.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", bucketName, objectName, err)
	}
	slog.Info("Object deleted", "bucket", bucketName, "object", objectName)
	return nil
}

// GetPresignedURL returns a temporary download link for an object.
func (mc *MinioClient) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	u, err := mc.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucketName, objectName, err)
	}
	return u.String(), nil
}

func (mc *MinioClient) FileExists(ctx context.Context, bucketName, objectName string) (bool, error) {
	_, err := mc.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s/%s: %w", bucketName, objectName, err)
}

// Healthy checks that the report bucket is reachable.
func (mc *MinioClient) Healthy(ctx context.Context) error {
	_, err := mc.client.BucketExists(ctx, Storage.EvaluationReports)
	return err
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
