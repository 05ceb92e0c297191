package blob

import (
	"context"
	"io"
)

// Store 对象存储，只负责写入与生成公开地址
type Store interface {
	// Put 写入对象并返回公开访问地址
	Put(ctx context.Context, objectName string, contentType string, r io.Reader, size int64) (string, error)
	PublicURL(objectName string) string
}
