package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// MemoryUploader keeps objects in process memory. Used by tests and local runs
// without a bucket.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	sum := md5.Sum(buf.Bytes())

	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	u.types[key] = contentType
	return &UploadResult{Key: key, ETag: hex.EncodeToString(sum[:])}, nil
}

func (u *MemoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	delete(u.types, key)
	return nil
}

func (u *MemoryUploader) GetPublicURL(string) string { return "" }

// Object returns a stored object and its content type.
func (u *MemoryUploader) Object(key string) ([]byte, string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.objects[key]
	return b, u.types[key], ok
}

// Keys lists stored object keys in no particular order.
func (u *MemoryUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	keys := make([]string, 0, len(u.objects))
	for k := range u.objects {
		keys = append(keys, k)
	}
	return keys
}
