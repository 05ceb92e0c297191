package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStore 进程内对象存储，blob_backend=memory 时使用
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	ContentType string
	Data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Put(ctx context.Context, objectName string, contentType string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}
	if size >= 0 && int64(len(data)) != size {
		return "", fmt.Errorf("short write for %s: got %d of %d bytes", objectName, len(data), size)
	}
	s.mu.Lock()
	s.objects[objectName] = memoryObject{ContentType: contentType, Data: data}
	s.mu.Unlock()
	return s.PublicURL(objectName), nil
}

func (s *MemoryStore) PublicURL(objectName string) string {
	return s.baseURL + "/" + objectName
}

// Object 读取已写入的对象
func (s *MemoryStore) Object(objectName string) (contentType string, data []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectName]
	return obj.ContentType, obj.Data, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
