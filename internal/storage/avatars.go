// Package storage holds the MinIO-backed avatar store.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/projetocarbone/roma-backend/internal/config"
)

// AvatarStore uploads profile pictures to an object bucket and returns the
// public URL stored on the user record.
type AvatarStore struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewAvatarStore creates the client and ensures the bucket exists. Returns
// an error when MinIO is unconfigured; main treats that as "avatar upload
// disabled" rather than fatal.
func NewAvatarStore(cfg config.Config) (*AvatarStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("minio access and secret keys are required")
	}
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	s := &AvatarStore{mc: mc, bucket: cfg.MinioBucket, publicURL: strings.TrimRight(publicURL, "/")}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Printf("minio: created bucket %s", s.bucket)
	}
	return s, nil
}

// Put stores an avatar under a per-user key and returns its public URL.
// The object name carries a timestamp so a re-upload is a new object and
// stale CDN caches cannot serve the old picture.
func (s *AvatarStore) Put(ctx context.Context, userID uint64, filename, contentType string, r io.Reader, size int64) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported avatar format %q", ext)
	}
	object := fmt.Sprintf("avatars/%d/%d%s", userID, time.Now().UTC().UnixMilli(), ext)
	_, err := s.mc.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return s.publicURL + "/" + object, nil
}
