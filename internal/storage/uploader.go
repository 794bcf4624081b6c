// Package storage 封装对象存储上传与受限域名的媒体代理改写
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"k8s.io/klog/v2"
)

var (
	// ErrContentType 不支持的媒体类型，属校验错误不重试
	ErrContentType = errors.New("unsupported content type")
	// ErrTooLarge 超出该媒体类型的大小上限
	ErrTooLarge = errors.New("file exceeds size limit")
)

const (
	maxImageBytes = 10 << 20
	maxVideoBytes = 50 << 20
)

// 类型 -> 是否视频。不在表内的类型一律拒绝
var acceptedTypes = map[string]bool{
	"image/jpeg": false,
	"image/png":  false,
	"image/webp": false,
	"image/gif":  false,
	"video/mp4":  true,
	"video/webm": true,
	"video/ogg":  true,
}

// objectStore 是 storage-go 客户端中本包用到的子集，便于测试替换
type objectStore interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// Uploader 媒体上传器
type Uploader struct {
	store  objectStore
	bucket string
}

// NewUploader 基于 supabase storage 端点创建上传器
func NewUploader(endpoint, apiKey, bucket string) *Uploader {
	client := storage_go.NewClient(endpoint, apiKey, nil)
	return &Uploader{store: client, bucket: bucket}
}

// Upload 校验类型与大小后上传，返回公开访问 URL
// 校验失败是终态，调用方不应重试
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader, contentType string, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	isVideo, ok := acceptedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrContentType, contentType)
	}
	limit := int64(maxImageBytes)
	if isVideo {
		limit = maxVideoBytes
	}
	if size > limit {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, limit)
	}

	name = objectName(name)
	ct := contentType
	if _, err := u.store.UploadFile(u.bucket, name, r, storage_go.FileOptions{ContentType: &ct}); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	resp := u.store.GetPublicUrl(u.bucket, name)
	klog.V(6).Infof("已上传 %s (%s, %d 字节)", name, contentType, size)
	return resp.SignedURL, nil
}

// objectName 规范化对象名，避免路径穿越
func objectName(name string) string {
	name = strings.TrimLeft(name, "/")
	return strings.ReplaceAll(name, "..", "")
}
