package clients

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"payments-register/internal/service"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// S3Client stores receipts in an S3-compatible bucket.
type S3Client struct {
	raw    *minio.Client
	bucket string
	prefix string
}

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	ok, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &S3Client{
		raw:    client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (c *S3Client) exists(ctx context.Context, key string) (bool, error) {
	_, err := c.raw.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q failed: %w", key, err)
}

// Save uploads the receipt and returns the file name used, suffixed like
// the local store when the key is taken. The existence check and the upload
// are not atomic.
func (c *S3Client) Save(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	fileName = path.Base(fileName)
	ext := path.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	final := ""
	for i := 0; i < maxNameAttempts; i++ {
		candidate := fileName
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		taken, err := c.exists(ctx, c.prefix+candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			final = candidate
			break
		}
	}
	if final == "" {
		return "", fmt.Errorf("no free name for %q", fileName)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := c.prefix + final
	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return final, nil
}

func (c *S3Client) Delete(ctx context.Context, fileName string) error {
	if c.raw == nil {
		return fmt.Errorf("s3 client is nil")
	}

	key := c.prefix + path.Base(fileName)
	if err := c.raw.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q failed: %w", key, err)
	}
	return nil
}

// GetTemporaryURL presigns a download link for a stored receipt.
func (c *S3Client) GetTemporaryURL(ctx context.Context, fileName string, ttl time.Duration) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	key := c.prefix + fileName
	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get object %q failed: %w", key, err)
	}

	return u.String(), nil
}

var _ service.ReceiptStore = (*S3Client)(nil)
