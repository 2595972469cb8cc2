// Package imagestore uploads analyzed meal images to S3-compatible object
// storage so history rows reference a stable URL instead of an inline data URL.
package imagestore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	miniocredentials "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/config"
)

var (
	ErrNotDataURL = errors.New("not a base64 data URL")
	ErrNotImage   = errors.New("data URL does not contain an image")
)

// MinIO is the subset of *minio.Client the uploader uses.
type MinIO interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader stores data-URL images under analyses/<user>/<uuid>.<ext>.
type Uploader struct {
	mc        MinIO
	bucket    string
	publicURL string
}

// New wraps an existing client. publicURL is the base the object key is
// appended to when building the returned URL.
func New(mc MinIO, bucket, publicURL string) *Uploader {
	return &Uploader{
		mc:        mc,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// NewFromConfig connects to the configured endpoint. Without S3_PUBLIC_URL,
// objects are addressed path-style on the endpoint itself.
func NewFromConfig(cfg config.S3Config) (*Uploader, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocredentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return New(mc, cfg.Bucket, publicURL), nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.mc.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", u.bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.mc.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", u.bucket, err)
	}
	return nil
}

// Store uploads imageRef when it is a data URL and returns the object URL.
// Any other reference (an https URL) is returned unchanged without an upload.
func (u *Uploader) Store(ctx context.Context, userID, imageRef string) (string, error) {
	if !strings.HasPrefix(imageRef, "data:") {
		return imageRef, nil
	}

	data, err := DecodeDataURL(imageRef)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	key := ObjectKey(userID, mt.Extension())
	_, err = u.mc.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mt.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return u.publicURL + "/" + key, nil
}

// ObjectKey builds analyses/<user>/<uuid><ext>; ext includes the leading dot.
func ObjectKey(userID, ext string) string {
	return fmt.Sprintf("analyses/%s/%s%s", userID, uuid.New().String(), ext)
}

// DecodeDataURL returns the payload of a data:<mime>;base64,<payload> URL.
func DecodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasPrefix(s, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	return data, nil
}
