package service

import (
	"context"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// BlobStore 对象存储接口，key 使用 / 分隔
type BlobStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// cleanKey 去掉 .. 和前导 /，防止写出存储根目录
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// LocalBlobStore 本地磁盘，URL 指向 /uploads 静态目录
type LocalBlobStore struct {
	Root string
}

func (p *LocalBlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key = cleanKey(key)
	dst := filepath.Join(p.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *LocalBlobStore) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(p.Root, filepath.FromSlash(cleanKey(key))))
}

func (p *LocalBlobStore) URL(key string) string {
	return "/uploads/" + cleanKey(key)
}

type MinioBlobStore struct {
	Bucket   string
	Endpoint string
	UseSSL   bool
	Client   *minio.Client
}

func NewMinioBlobStore(cfg *config.StorageConfig) (*MinioBlobStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioBlobStore{Bucket: cfg.MinioBucket, Endpoint: cfg.MinioEndpoint, UseSSL: cfg.MinioUseSSL, Client: client}, nil
}

func (p *MinioBlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key = cleanKey(key)
	_, err := p.Client.PutObject(ctx, p.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *MinioBlobStore) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, cleanKey(key), minio.RemoveObjectOptions{})
}

func (p *MinioBlobStore) URL(key string) string {
	scheme := "http"
	if p.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Endpoint, p.Bucket, cleanKey(key))
}

// OSSBlobStore 阿里云 OSS
type OSSBlobStore struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSBlobStore(cfg *config.StorageConfig) (*OSSBlobStore, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSBlobStore{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (p *OSSBlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	key = cleanKey(key)
	if err := p.Bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *OSSBlobStore) Delete(ctx context.Context, key string) error {
	return p.Bucket.DeleteObject(cleanKey(key))
}

func (p *OSSBlobStore) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Bucket.BucketName, p.Endpoint, cleanKey(key))
}

// NewBlobStore 按 storage.type 选择实现，远端初始化失败时退回本地磁盘
func NewBlobStore(cfg *config.StorageConfig) BlobStore {
	var (
		store BlobStore
		err   error
	)
	switch cfg.Type {
	case util.StorageMinio:
		store, err = NewMinioBlobStore(cfg)
	case util.StorageOSS:
		store, err = NewOSSBlobStore(cfg)
	}
	if err != nil {
		logger.Log.Warn("blob store init failed, falling back to local disk", zap.String("type", cfg.Type), zap.Error(err))
		store = nil
	}
	if store == nil {
		store = &LocalBlobStore{Root: cfg.LocalPath}
	}
	return store
}
