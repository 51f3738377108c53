package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// Config captures the settings for the MinIO-backed artifact store.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MinioStore implements ports.ArtifactStore on top of a MinIO bucket.
// References carry the object key plus a public URL derived from the
// configured base.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to MinIO and ensures the artifact bucket exists.
func NewMinioStore(ctx context.Context, cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Store persists the image bytes under a fresh key derived from nameHint
// (e.g. "nobg" → nobg-<uuid>.png) and returns its reference.
func (s *MinioStore) Store(ctx context.Context, nameHint string, data []byte, contentType string) (domain.ArtifactRef, error) {
	key := objectKey(nameHint)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return domain.ArtifactRef{}, fmt.Errorf("store artifact: %w", err)
	}

	return domain.ArtifactRef{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Read returns the raw bytes of a stored artifact.
func (s *MinioStore) Read(ctx context.Context, ref domain.ArtifactRef) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", ref.Key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", ref.Key, err)
	}
	return data, nil
}

// Delete removes a stored artifact. Callers treat failures as non-fatal.
func (s *MinioStore) Delete(ctx context.Context, ref domain.ArtifactRef) error {
	if err := s.client.RemoveObject(ctx, s.bucket, ref.Key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete artifact %s: %w", ref.Key, err)
	}
	return nil
}

// objectKey builds a unique object name like nobg-3f2a….png. The extension
// in the hint wins; bare hints default to png, the pipeline's only format.
func objectKey(nameHint string) string {
	ext := path.Ext(nameHint)
	if ext == "" {
		return fmt.Sprintf("%s-%s.png", nameHint, uuid.NewString())
	}
	base := strings.TrimSuffix(nameHint, ext)
	return fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
}
